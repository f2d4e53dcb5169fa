package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"resty.dev/v3"

	"socialplus/services/auth-api/internal/domain"
)

const discoveryFetchTimeout = 15 * time.Second

// DiscoveryDocument is Google's published OpenID endpoint descriptor,
// fetched once per process and cached for its lifetime.
type DiscoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
}

// GoogleProfile mirrors the wire shape of the userinfo endpoint.
type GoogleProfile struct {
	Subject    string `json:"sub"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Email      string `json:"email"`
}

// GenericProfile derives the normalized profile shape.
func (p *GoogleProfile) GenericProfile() *domain.GenericUserProfile {
	profile := &domain.GenericUserProfile{
		AccountID: p.Subject,
		FirstName: p.GivenName,
		LastName:  p.FamilyName,
	}
	if p.Email != "" {
		profile.Emails = []string{p.Email}
	}
	return profile
}

type googleTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// GoogleVerifier verifies Google access tokens and authorization codes.
// Endpoint URLs come from the discovery document, which is fetched
// lazily on the first verification and shared by all callers.
type GoogleVerifier struct {
	client       *resty.Client
	discoveryURL string
	clientID     string
	clientSecret string
	redirectURI  string
	log          zerolog.Logger

	group singleflight.Group
	mu    sync.RWMutex
	doc   *DiscoveryDocument
}

// NewGoogleVerifier constructs a verifier. No discovery fetch happens
// until the first verification call.
func NewGoogleVerifier(discoveryURL, clientID, clientSecret, redirectURI string, client *resty.Client, log zerolog.Logger) *GoogleVerifier {
	return &GoogleVerifier{
		client:       client,
		discoveryURL: discoveryURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		log:          log,
	}
}

// discovery returns the cached document, fetching it at most once per
// process under concurrency. A failed fetch is propagated to every
// waiter and the next caller retries; cancelling one request must not
// poison the shared document, so the fetch runs under its own deadline
// detached from the caller's context.
func (v *GoogleVerifier) discovery(ctx context.Context) (*DiscoveryDocument, error) {
	v.mu.RLock()
	doc := v.doc
	v.mu.RUnlock()
	if doc != nil {
		return doc, nil
	}

	result, err, _ := v.group.Do("discovery", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.Background(), discoveryFetchTimeout)
		defer cancel()

		var fetched DiscoveryDocument
		resp, err := v.client.R().
			SetContext(fetchCtx).
			SetResult(&fetched).
			Get(v.discoveryURL)
		if err != nil {
			return nil, fmt.Errorf("fetch discovery document: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("discovery document returned status %d", resp.StatusCode())
		}
		if fetched.UserinfoEndpoint == "" || fetched.TokenEndpoint == "" {
			return nil, fmt.Errorf("discovery document missing endpoints")
		}

		v.mu.Lock()
		v.doc = &fetched
		v.mu.Unlock()

		v.log.Info().Str("issuer", fetched.Issuer).Msg("google discovery document cached")
		return &fetched, nil
	})
	if err != nil {
		return nil, NewOAuthError(CodeGoogleUnavailable, err)
	}

	// Honor the caller's cancellation even though the shared fetch ran on.
	if ctx.Err() != nil {
		return nil, NewOAuthError(CodeGoogleUnavailable, ctx.Err())
	}
	return result.(*DiscoveryDocument), nil
}

// VerifyToken validates an access token by presenting it to the
// userinfo endpoint as a bearer credential (implicit flow).
func (v *GoogleVerifier) VerifyToken(ctx context.Context, accessToken string) (*domain.GenericUserProfile, error) {
	doc, err := v.discovery(ctx)
	if err != nil {
		return nil, err
	}

	var profile GoogleProfile
	resp, err := v.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&profile).
		Get(doc.UserinfoEndpoint)
	if err != nil {
		return nil, NewOAuthError(CodeGoogleUnavailable, err)
	}
	if resp.IsError() {
		return nil, NewOAuthError(CodeGoogleUnavailable, fmt.Errorf("userinfo returned status %d", resp.StatusCode()))
	}
	if profile.Subject == "" {
		return nil, NewOAuthError(CodeMissingAccountID, nil)
	}
	return profile.GenericProfile(), nil
}

// ExchangeCode redeems an authorization code at the token endpoint, then
// delegates to the implicit flow with the returned access token.
func (v *GoogleVerifier) ExchangeCode(ctx context.Context, code string) (*domain.GenericUserProfile, error) {
	doc, err := v.discovery(ctx)
	if err != nil {
		return nil, err
	}

	var token googleTokenResponse
	resp, err := v.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"code":          code,
			"client_id":     v.clientID,
			"client_secret": v.clientSecret,
			"redirect_uri":  v.redirectURI,
			"grant_type":    "authorization_code",
		}).
		SetResult(&token).
		Post(doc.TokenEndpoint)
	if err != nil {
		return nil, NewOAuthError(CodeGoogleUnavailable, err)
	}
	if resp.IsError() {
		return nil, NewOAuthError(CodeGoogleUnavailable, fmt.Errorf("token endpoint returned status %d", resp.StatusCode()))
	}
	if token.AccessToken == "" {
		return nil, NewOAuthError(CodeGoogleUnavailable, fmt.Errorf("token endpoint returned empty access token"))
	}

	return v.VerifyToken(ctx, token.AccessToken)
}
