package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Messages returned in the {status, message} envelope. Clients match on these
// strings, so they are part of the API.
const (
	msgLoginOK       = "authentication successful"
	msgLoginFailed   = "authentication failed"
	msgResetLinkSent = "reset link sent"
	msgMissingID     = "missing identifier"
	msgNotFound      = "not found"
	msgSecretUpdated = "password updated"
	msgMissingSecret = "missing"
	msgMismatch      = "mismatch"
	msgWeakSecret    = "invalid secret"
	msgTokenInvalid  = "invalid or expired token"
	msgLogoutOK      = "logout successful"

	msgTooManyRequests = "too many requests"
	msgInvalidRequest  = "invalid request"
	msgInternalServer  = "internal server error"
	msgUnauthorized    = "unauthorized"
)

// result is the response body of every /authentication endpoint.
type result struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

func ok(msg string) result   { return result{Status: true, Message: msg} }
func fail(msg string) result { return result{Status: false, Message: msg} }

// TooManyRequests answers a throttled call in the auth envelope.
func TooManyRequests(c *gin.Context) {
	c.JSON(http.StatusTooManyRequests, fail(msgTooManyRequests))
}
