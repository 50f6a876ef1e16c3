package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/config"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/repository"
)

type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	err     error
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{revoked: make(map[string]time.Time)}
}

func (f *fakeRevoker) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.revoked[jti] = expiresAt
	return nil
}

func (f *fakeRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.revoked[jti]
	return ok, nil
}

type fakeMailer struct {
	mu       sync.Mutex
	messages []domain.MailMessage
	err      error
}

func (f *fakeMailer) Publish(ctx context.Context, msg domain.MailMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msg)
	return nil
}

// failingStore 让所有资产操作返回存储错误
type failingStore struct {
	*repository.MemoryStore
}

var errStoreDown = errors.New("store down")

func (failingStore) GetAllAssets(ctx context.Context) ([]*domain.Asset, error) {
	return nil, errStoreDown
}

func (failingStore) GetAssetStats(ctx context.Context) (*domain.AssetStats, error) {
	return nil, errStoreDown
}

func (failingStore) CreateAsset(ctx context.Context, asset *domain.Asset) error {
	return errStoreDown
}

type testEnv struct {
	h       *Handler
	store   repository.Store
	revoker *fakeRevoker
	mailer  *fakeMailer
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Expiration = 1
	cfg.Report.FileName = "Asset_Inventory.xlsx"
	cfg.Report.SheetName = "Assets"
	return cfg
}

func newTestEnvWithStore(t *testing.T, store repository.Store) *testEnv {
	t.Helper()

	env := &testEnv{
		store:   store,
		revoker: newFakeRevoker(),
		mailer:  &fakeMailer{},
	}

	h, err := NewHandler(newTestConfig(), store, env.revoker, env.mailer)
	require.NoError(t, err)
	h.RegisterRoutes()
	env.h = h
	return env
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithStore(t, repository.NewMemoryStore())
}

func (env *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.h.Mux.ServeHTTP(rec, req)
	return rec
}

// signIn 注册一个用户并返回登录令牌
func (env *testEnv) signIn(t *testing.T) string {
	t.Helper()

	body := map[string]string{"name": "测试用户", "email": "tester@example.com", "password": "secret123"}
	rec := env.do(t, http.MethodPost, "/auth/signup", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/auth/signin", body, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
