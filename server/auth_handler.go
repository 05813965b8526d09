package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"simpleink/core/auth"
	"simpleink/logger"
)

type ctxKey int

const (
	ctxKeyUsername ctxKey = iota
	ctxKeyRequestID
)

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse 登录成功后返回的令牌
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginHandler 校验管理员凭据并签发令牌
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, r, err, "")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeFailure(w, r, err, "")
		return
	}

	token, expiresAt, err := h.auth.Login(req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrLoginDisabled):
		logger.Warn("[Login] 登录失败", logger.String("username", req.Username), logger.ErrorField(err))
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	case err != nil:
		writeFailure(w, r, err, "")
		return
	}

	logger.Info("[Login] 管理员登录成功", logger.String("username", req.Username))
	writeData(w, LoginResponse{Token: token, ExpiresAt: expiresAt})
}

// AuthMiddleware 在 AUTH_REQUIRED=true 时要求 Bearer 令牌，否则直接放行
func (h *APIHandler) AuthMiddleware(next http.Handler) http.Handler {
	if !h.cfg.AuthRequired {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			writeError(w, http.StatusUnauthorized, "Autenticação necessária")
			return
		}

		claims, err := h.auth.Validate(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUsername, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UsernameFromContext returns the authenticated admin, if any.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(ctxKeyUsername).(string)
	return username, ok
}
