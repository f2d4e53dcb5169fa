package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"socialplus/services/auth-api/internal/domain"
	"socialplus/services/auth-api/internal/domain/account"
	"socialplus/services/auth-api/internal/infrastructure/identity"
	"socialplus/services/auth-api/internal/infrastructure/metrics"
	"socialplus/services/auth-api/internal/infrastructure/sessiontoken"
	"socialplus/services/auth-api/internal/interfaces/httpserver/middlewares"
	"socialplus/services/auth-api/internal/interfaces/httpserver/responses"
)

// UserHandler serves user registration and identity echo endpoints.
type UserHandler struct {
	accounts account.Repository
	sessions *sessiontoken.Service
	facebook *identity.FacebookVerifier
	log      zerolog.Logger
}

// NewUserHandler creates a user handler.
func NewUserHandler(accounts account.Repository, sessions *sessiontoken.Service, facebook *identity.FacebookVerifier, log zerolog.Logger) *UserHandler {
	return &UserHandler{accounts: accounts, sessions: sessions, facebook: facebook, log: log}
}

// Me echoes the principals the gatekeeper attached to this request.
func (h *UserHandler) Me(c *gin.Context) {
	result := middlewares.GetAuthResult(c)
	if result == nil || result.App == nil {
		responses.HandleErrorWithStatus(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	out := responses.PrincipalResponse{AppHandle: result.App.AppHandle}
	if result.User != nil {
		out.UserHandle = result.User.UserHandle
		out.IdentityProvider = string(result.User.IdentityProvider)
		out.AccountID = result.User.AccountID
		out.Registered = result.User.Registered()
	}
	c.JSON(http.StatusOK, out)
}

// Register creates an internal user handle for a provider-verified
// identity that has none yet, links the external account to it, and
// issues a first session token.
func (h *UserHandler) Register(c *gin.Context) {
	result := middlewares.GetAuthResult(c)
	if result == nil || result.User == nil {
		responses.HandleErrorWithStatus(c, http.StatusUnauthorized, "a verified user identity is required")
		return
	}
	if result.User.IdentityProvider == domain.IdentityProviderInternal {
		responses.HandleErrorWithStatus(c, http.StatusBadRequest, "registration requires an external provider credential")
		return
	}
	if result.User.Registered() {
		responses.HandleErrorWithStatus(c, http.StatusConflict, "identity is already registered")
		return
	}

	userHandle := uuid.NewString()
	linked := &account.LinkedAccount{
		IdentityProvider: result.User.IdentityProvider,
		AccountID:        result.User.AccountID,
		UserHandle:       userHandle,
	}
	if err := h.accounts.CreateLinkedAccount(c.Request.Context(), linked); err != nil {
		responses.HandleError(c, err, "failed to link account")
		return
	}

	token, err := h.sessions.Issue(result.App.AppHandle, userHandle)
	if err != nil {
		responses.HandleError(c, err, "failed to issue session token")
		return
	}
	metrics.RecordSessionTokenIssued()

	c.JSON(http.StatusCreated, responses.SessionResponse{
		SessionToken: token,
		UserHandle:   userHandle,
		AppHandle:    result.App.AppHandle,
		ExpiresIn:    int64(h.sessions.TTL().Seconds()),
	})
}

// Friends lists the caller's provider-side friends who also use this
// app. Only Facebook exposes such a listing.
func (h *UserHandler) Friends(c *gin.Context) {
	result := middlewares.GetAuthResult(c)
	if result == nil || result.User == nil {
		responses.HandleErrorWithStatus(c, http.StatusUnauthorized, "a verified user identity is required")
		return
	}
	if result.User.IdentityProvider != domain.IdentityProviderFacebook {
		responses.HandleErrorWithStatus(c, http.StatusBadRequest, "friends listing requires a facebook credential")
		return
	}

	friends, total, err := h.facebook.Friends(c.Request.Context(), result.ProviderToken())
	if err != nil {
		h.log.Warn().Err(err).Str("request_id", middlewares.GetRequestID(c)).Msg("friends lookup failed")
		responses.HandleErrorWithStatus(c, http.StatusBadGateway, "friends lookup failed")
		return
	}

	out := responses.FriendsResponse{
		Friends:    make([]responses.FriendEntry, 0, len(friends)),
		TotalCount: total,
	}
	for _, f := range friends {
		out.Friends = append(out.Friends, responses.FriendEntry{AccountID: f.ID, Name: f.Name})
	}
	c.JSON(http.StatusOK, out)
}
