package utils

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
)

func TestGenerateEmployeeIDFromChineseName(t *testing.T) {
	id := GenerateEmployeeIDFromChineseName("张伟")
	assert.Regexp(t, regexp.MustCompile(`^ZW[0-9]{4}$`), id)
}

func TestGenerateRandomAsset(t *testing.T) {
	for i := 0; i < 50; i++ {
		asset := GenerateRandomAsset()
		require.Empty(t, MissingRequiredAssetFields(asset))
		assert.True(t, IsValidAssetType(asset.Type))
		assert.True(t, IsValidAssetStatus(asset.Status))
		assert.NotEmpty(t, asset.Name)

		if asset.Status == domain.StatusAssigned {
			assert.NotEmpty(t, asset.AssignedTo)
		} else {
			assert.Empty(t, asset.AssignedTo)
		}
	}
}

func TestGenerateRandomUser(t *testing.T) {
	user, err := GenerateRandomUser("password123", "example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, user.Name)
	assert.True(t, strings.HasSuffix(user.Email, "@example.com"))
	assert.NotEqual(t, "password123", user.PasswordHash)
}

func TestMissingRequiredAssetFields(t *testing.T) {
	assert.Equal(t, []string{"serialNumber", "type", "employeeId"}, MissingRequiredAssetFields(&domain.Asset{}))
	assert.Equal(t, []string{"employeeId"}, MissingRequiredAssetFields(&domain.Asset{Type: domain.AssetTypeMouse, SerialNumber: "M1"}))
	assert.False(t, IsValidAssetType("Toaster"))
	assert.False(t, IsValidAssetStatus("Lost"))
}
