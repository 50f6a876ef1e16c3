package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
)

type userEnvelope struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
	Token   string       `json:"token"`
}

func (c *Client) SignUp(ctx context.Context, name, email, password string) (*domain.User, error) {
	body := map[string]string{"name": name, "email": email, "password": password}

	var resp userEnvelope
	if err := c.do(ctx, http.MethodPost, "/auth/signup", body, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil || resp.User.ID == "" {
		return nil, fmt.Errorf("%w: 缺少 user 字段", ErrMalformedResponse)
	}
	return resp.User, nil
}

// SignIn 登录成功后会把令牌保存在 Client 中，后续请求自动携带
func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.User, error) {
	body := map[string]string{"email": email, "password": password}

	var resp userEnvelope
	if err := c.do(ctx, http.MethodPost, "/auth/signin", body, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil || resp.Token == "" {
		return nil, fmt.Errorf("%w: 缺少 user 或 token 字段", ErrMalformedResponse)
	}

	c.token = resp.Token
	return resp.User, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth/signout", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var resp userEnvelope
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("%w: 缺少 user 字段", ErrMalformedResponse)
	}
	return resp.User, nil
}
