package inventory

import (
	"strings"

	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
)

// Lookup 用扫码得到的字符串在列表中查找资产，序列号不区分大小写，也接受资产 ID
func Lookup(assets []domain.Asset, code string) (domain.Asset, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Asset{}, false
	}

	for i := range assets {
		if assets[i].ID == code || strings.EqualFold(assets[i].SerialNumber, code) {
			return assets[i], true
		}
	}
	return domain.Asset{}, false
}
