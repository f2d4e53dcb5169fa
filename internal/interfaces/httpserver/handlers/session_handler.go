package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"socialplus/services/auth-api/internal/infrastructure/metrics"
	"socialplus/services/auth-api/internal/infrastructure/sessiontoken"
	"socialplus/services/auth-api/internal/interfaces/httpserver/middlewares"
	"socialplus/services/auth-api/internal/interfaces/httpserver/responses"
)

// SessionHandler exchanges a provider-verified identity for an internal
// session token.
type SessionHandler struct {
	sessions *sessiontoken.Service
	log      zerolog.Logger
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(sessions *sessiontoken.Service, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, log: log}
}

// CreateSession issues a session token for the authenticated user. The
// caller must have presented a provider credential that maps onto a
// registered user handle.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	result := middlewares.GetAuthResult(c)
	if result == nil || result.User == nil {
		responses.HandleErrorWithStatus(c, http.StatusUnauthorized, "a verified user identity is required")
		return
	}
	if !result.User.Registered() {
		responses.HandleErrorWithStatus(c, http.StatusNotFound, "no registered user for this identity")
		return
	}

	token, err := h.sessions.Issue(result.App.AppHandle, result.User.UserHandle)
	if err != nil {
		responses.HandleError(c, err, "failed to issue session token")
		return
	}
	metrics.RecordSessionTokenIssued()

	c.JSON(http.StatusCreated, responses.SessionResponse{
		SessionToken: token,
		UserHandle:   result.User.UserHandle,
		AppHandle:    result.App.AppHandle,
		ExpiresIn:    int64(h.sessions.TTL().Seconds()),
	})
}
