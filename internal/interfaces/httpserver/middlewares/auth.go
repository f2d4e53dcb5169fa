package middlewares

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"socialplus/services/auth-api/internal/infrastructure/identity"
	"socialplus/services/auth-api/internal/infrastructure/metrics"
	"socialplus/services/auth-api/internal/interfaces/httpserver/responses"
)

// Authenticator dispatches a parsed Authorization header to the verifier
// for its scheme. Satisfied by *identity.Registry.
type Authenticator interface {
	Authenticate(ctx context.Context, schemeName, credentialList string) (*identity.Result, error)
	AuthenticateAnonymous(ctx context.Context, credentialList string) (*identity.Result, error)
}

// Context keys installed by the authentication middleware.
const (
	AuthResultKey = "auth_result"
)

// API versions look like v1.0. Anything else in the version path segment
// is rejected before authentication runs.
var versionPattern = regexp.MustCompile(`^v\d+\.\d+$`)

// Authentication gatekeeps every request behind it. It validates the
// version path segment, parses the Authorization header into a scheme
// token and credential list, and dispatches to the matching verifier.
// All authentication failures collapse into one uniform 401 so callers
// cannot probe which check failed; the real cause is logged server side.
func Authentication(auth Authenticator, allowAnonymous bool, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if version := c.Param("version"); version != "" && !versionPattern.MatchString(version) {
			responses.HandleErrorWithStatus(c, http.StatusBadRequest, "unsupported api version")
			c.Abort()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			unauthorized(c)
			return
		}

		schemeName, credentialList, _ := strings.Cut(header, " ")
		scheme, err := identity.ParseScheme(schemeName)
		if err != nil {
			log.Warn().Err(err).Str("request_id", GetRequestID(c)).Msg("authentication rejected")
			metrics.RecordAuthAttempt(schemeName, "rejected")
			unauthorized(c)
			return
		}

		var result *identity.Result
		if scheme == identity.SchemeAnonymous {
			if !allowAnonymous {
				log.Warn().Str("request_id", GetRequestID(c)).Msg("anonymous access not allowed on this route")
				metrics.RecordAuthAttempt(string(scheme), "rejected")
				unauthorized(c)
				return
			}
			result, err = auth.AuthenticateAnonymous(c.Request.Context(), credentialList)
		} else {
			result, err = auth.Authenticate(c.Request.Context(), string(scheme), credentialList)
		}
		if err != nil {
			log.Warn().
				Err(err).
				Str("scheme", string(scheme)).
				Str("request_id", GetRequestID(c)).
				Msg("authentication rejected")
			metrics.RecordAuthAttempt(string(scheme), "rejected")
			unauthorized(c)
			return
		}

		metrics.RecordAuthAttempt(string(scheme), "accepted")
		c.Set(AuthResultKey, result)
		c.Next()
	}
}

// unauthorized writes the uniform failure response and stops the chain.
func unauthorized(c *gin.Context) {
	responses.HandleErrorWithStatus(c, http.StatusUnauthorized, "unauthorized")
	c.Abort()
}

// GetAuthResult retrieves the authentication outcome installed by the
// Authentication middleware, or nil on anonymous or unauthenticated
// requests that never passed through it.
func GetAuthResult(c *gin.Context) *identity.Result {
	if v, exists := c.Get(AuthResultKey); exists {
		if result, ok := v.(*identity.Result); ok {
			return result
		}
	}
	return nil
}
