package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "register_error", "invalid body", err)
	}

	user, err := h.Svc.Register(ctx, service.RegisterInput{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, "register_failed", err)
	}

	l.Info("register_successful", "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "login_error", "invalid body", err)
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return respondError(c, "login_failed", err)
	}

	l.Info("login_successful", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, transport.TokenResponse{
		AccessToken:      res.AccessToken,
		RefreshToken:     res.RefreshToken,
		TokenType:        res.TokenType,
		ExpiresAt:        res.AccessExp,
		RefreshExpiresAt: &res.RefreshExp,
	})
}

// Refresh takes the refresh token from the JSON body or the refresh_token
// query parameter.
func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "refresh_error", "invalid body", err)
	}
	token := strings.TrimSpace(req.RefreshToken)
	if token == "" {
		token = strings.TrimSpace(c.QueryParam("refresh_token"))
	}
	if token == "" {
		return badRequest(c, "refresh_error", "refresh_token is required", nil)
	}

	res, err := h.Svc.Refresh(ctx, token)
	if err != nil {
		return respondError(c, "refresh_failed", err)
	}
	return c.JSON(http.StatusOK, transport.TokenResponse{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		ExpiresAt:   res.AccessExp,
	})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	user, ok := authmw.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) GetUser(c echo.Context) error {
	user, err := h.Svc.GetUser(c.Request().Context(), c.Param("username"))
	if err != nil {
		return respondError(c, "get_user_failed", err)
	}
	return c.JSON(http.StatusOK, user)
}
