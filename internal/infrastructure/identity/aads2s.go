package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// AADVerifier validates Azure AD server-to-server tokens against the
// tenant's JWKS. The subject of a valid token is the calling
// application, not a user.
type AADVerifier struct {
	issuer   string
	audience string
	jwksURL  string
	jwks     *keyfunc.JWKS
	log      zerolog.Logger
}

// NewAADVerifier initialises JWKS fetching and returns a verifier.
func NewAADVerifier(ctx context.Context, jwksURL, issuer, audience string, refreshEvery time.Duration, log zerolog.Logger) (*AADVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("jwks url is required")
	}

	options := keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   refreshEvery,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Error().Err(err).Msg("aad jwks refresh failed")
		},
	}
	jwks, err := keyfunc.Get(jwksURL, options)
	if err != nil {
		return nil, fmt.Errorf("fetch aad jwks: %w", err)
	}

	return &AADVerifier{
		issuer:   issuer,
		audience: audience,
		jwksURL:  jwksURL,
		jwks:     jwks,
		log:      log,
	}, nil
}

// VerifyToken parses and validates the S2S token, returning the calling
// application's id (the appid claim).
func (v *AADVerifier) VerifyToken(_ context.Context, rawToken string) (string, error) {
	if v.jwks == nil {
		return "", NewOAuthError(CodeAADUnavailable, errors.New("jwks not initialised"))
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}))
	token, err := parser.ParseWithClaims(rawToken, jwt.MapClaims{}, v.jwks.Keyfunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", NewOAuthError(CodeTokenExpired, err)
		}
		return "", NewOAuthError(CodeTokenInvalid, fmt.Errorf("parse token: %w", err))
	}
	if !token.Valid {
		return "", NewOAuthError(CodeTokenInvalid, errors.New("invalid token"))
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", NewOAuthError(CodeTokenInvalid, errors.New("invalid claims"))
	}

	iss, _ := mapClaims["iss"].(string)
	if iss != v.issuer {
		return "", NewOAuthError(CodeTokenInvalid, fmt.Errorf("issuer mismatch %s", iss))
	}

	aud, _ := mapClaims["aud"].(string)
	if aud != v.audience {
		return "", NewOAuthError(CodeWrongApp, fmt.Errorf("audience mismatch %s", aud))
	}

	appID, _ := mapClaims["appid"].(string)
	if appID == "" {
		return "", NewOAuthError(CodeMissingAccountID, errors.New("appid claim missing"))
	}
	return appID, nil
}
