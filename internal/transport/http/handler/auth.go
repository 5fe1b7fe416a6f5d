package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/admin-console/internal/domain"
	"github.com/ErlanBelekov/admin-console/internal/session"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Login(ctx context.Context, identifier, secret string) (*domain.Session, string, error)
	RequestReset(ctx context.Context, identifier string) error
	ConfirmReset(ctx context.Context, token, newSecret, confirmationSecret string) error
	Logout(ctx context.Context, token string) error
}

type AuthHandler struct {
	authUsecase authUsecaser
	cookies     session.CookiePolicy
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, cookies session.CookiePolicy, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		cookies:     cookies,
		logger:      logger.With("component", "auth_handler"),
	}
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
}

// POST /authentication/login
// Unknown identifier and wrong secret produce the same response.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fail(msgInvalidRequest))
		return
	}

	_, token, err := h.authUsecase.Login(c.Request.Context(), req.Identifier, req.Secret)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrSecretMismatch) {
			c.JSON(http.StatusOK, fail(msgLoginFailed))
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "login", "error", err)
		c.JSON(http.StatusInternalServerError, fail(msgInternalServer))
		return
	}

	http.SetCookie(c.Writer, h.cookies.Cookie(token))
	c.JSON(http.StatusOK, ok(msgLoginOK))
}

type resetLinkRequest struct {
	Identifier string `json:"identifier"`
}

// POST /authentication/get-reset-link
func (h *AuthHandler) GetResetLink(c *gin.Context) {
	var req resetLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fail(msgInvalidRequest))
		return
	}

	err := h.authUsecase.RequestReset(c.Request.Context(), req.Identifier)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, ok(msgResetLinkSent))
	case errors.Is(err, domain.ErrMissingIdentifier):
		c.JSON(http.StatusOK, fail(msgMissingID))
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusOK, fail(msgNotFound))
	default:
		h.logger.ErrorContext(c.Request.Context(), "request reset link", "error", err)
		c.JSON(http.StatusInternalServerError, fail(msgInternalServer))
	}
}

type resetPasswordRequest struct {
	Token              string `json:"token"`
	NewSecret          string `json:"newSecret"`
	ConfirmationSecret string `json:"confirmationSecret"`
}

// POST /authentication/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fail(msgInvalidRequest))
		return
	}

	err := h.authUsecase.ConfirmReset(c.Request.Context(), req.Token, req.NewSecret, req.ConfirmationSecret)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, ok(msgSecretUpdated))
	case errors.Is(err, domain.ErrMissingSecret):
		c.JSON(http.StatusOK, fail(msgMissingSecret))
	case errors.Is(err, domain.ErrSecretConfirmMismatch):
		c.JSON(http.StatusOK, fail(msgMismatch))
	case errors.Is(err, domain.ErrWeakSecret):
		c.JSON(http.StatusOK, fail(msgWeakSecret))
	case errors.Is(err, domain.ErrTokenInvalid):
		c.JSON(http.StatusOK, fail(msgTokenInvalid))
	default:
		h.logger.ErrorContext(c.Request.Context(), "reset password", "error", err)
		c.JSON(http.StatusInternalServerError, fail(msgInternalServer))
	}
}

// POST /authentication/logout
// Always succeeds and always clears the cookie; a failed server-side revoke
// is only logged.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(session.CookieName)
	if err := h.authUsecase.Logout(c.Request.Context(), token); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "logout", "error", err)
	}

	http.SetCookie(c.Writer, h.cookies.Clear())
	c.JSON(http.StatusOK, ok(msgLogoutOK))
}
