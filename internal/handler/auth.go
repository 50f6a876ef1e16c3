package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const TokenCookieName = "__asset_tracker_token"

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 对密码进行哈希
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err, "服务器内部错误")
		return
	}

	user := &domain.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
	}

	// 邮箱唯一性由存储层保证
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			h.badRequest(w, r, errors.New("用户已存在"))
		default:
			h.internalServerError(w, r, err, "服务器内部错误")
		}
		return
	}

	h.successResponse(w, r, http.StatusCreated, envelope{
		"message": "注册成功",
		"user":    user,
	})
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 验证邮箱和密码
	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			h.notFound(w, r, "用户不存在")
		default:
			h.internalServerError(w, r, err, "服务器内部错误")
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			h.unauthorized(w, r, "密码错误")
		default:
			h.internalServerError(w, r, err, "服务器内部错误")
		}
		return
	}

	// 生成 JWT
	now := time.Now()
	expiration := now.Add(time.Duration(h.config.JWT.Expiration) * time.Hour)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(expiration),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Subject:   user.ID,
	})
	ss, err := token.SignedString([]byte(h.config.JWT.Secret))
	if err != nil {
		h.internalServerError(w, r, err, "服务器内部错误")
		return
	}

	// 移动端从响应体中读取 token，Web 端使用 http-only 的 cookie
	cookie := &http.Cookie{
		Name:     TokenCookieName,
		Value:    ss,
		Expires:  expiration,
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
	}

	if h.config.Environment == "production" {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteStrictMode
	}

	http.SetCookie(w, cookie)

	h.successResponse(w, r, http.StatusOK, envelope{
		"message": "登录成功",
		"user":    user,
		"token":   ss,
	})
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(ClaimsCtxKey).(*jwt.RegisteredClaims)

	expiresAt := time.Now().Add(time.Duration(h.config.JWT.Expiration) * time.Hour)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := h.revoker.Revoke(r.Context(), claims.ID, expiresAt); err != nil {
		h.internalServerError(w, r, err, "服务器内部错误")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:    TokenCookieName,
		Value:   "",
		Expires: time.Now().Add(-time.Hour),
		Path:    "/",
	})

	h.successResponse(w, r, http.StatusOK, envelope{"message": "登出成功"})
}
