package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"resty.dev/v3"

	"socialplus/services/auth-api/internal/domain"
)

// FacebookVerifier verifies Facebook user access tokens by introspecting
// them with app-level credentials, and fetches profiles and app-friends
// on behalf of a verified token.
type FacebookVerifier struct {
	client    *resty.Client
	graphURL  string
	appID     string
	appSecret string
	log       zerolog.Logger
	now       func() time.Time
}

// NewFacebookVerifier constructs a verifier bound to one app registration.
func NewFacebookVerifier(graphURL, appID, appSecret string, client *resty.Client, log zerolog.Logger) *FacebookVerifier {
	return &FacebookVerifier{
		client:    client,
		graphURL:  graphURL,
		appID:     appID,
		appSecret: appSecret,
		log:       log,
		now:       time.Now,
	}
}

type facebookDebugTokenResponse struct {
	Data []facebookTokenInfo `json:"data"`
}

type facebookTokenInfo struct {
	IsValid   bool   `json:"is_valid"`
	AppID     string `json:"app_id"`
	ExpiresAt int64  `json:"expires_at"`
	UserID    string `json:"user_id"`
}

// FacebookProfile mirrors the wire shape of the Graph "me" endpoint.
type FacebookProfile struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// GenericProfile derives the normalized profile shape.
func (p *FacebookProfile) GenericProfile() *domain.GenericUserProfile {
	profile := &domain.GenericUserProfile{
		AccountID: p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
	}
	if p.Email != "" {
		profile.Emails = []string{p.Email}
	}
	return profile
}

// FacebookFriend is one entry of the app-friends listing.
type FacebookFriend struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type facebookFriendsResponse struct {
	Data    []FacebookFriend `json:"data"`
	Summary struct {
		TotalCount int `json:"total_count"`
	} `json:"summary"`
}

// VerifyToken introspects a user access token through the debug_token
// endpoint using app credentials, never the user token itself. Checks
// run in order and short-circuit: provider validity, owning app, expiry,
// subject presence. Later checks assume earlier ones passed.
func (v *FacebookVerifier) VerifyToken(ctx context.Context, userToken string) (*domain.GenericUserProfile, error) {
	var result facebookDebugTokenResponse
	resp, err := v.client.R().
		SetContext(ctx).
		SetQueryParam("input_token", userToken).
		SetQueryParam("access_token", v.appID+"|"+v.appSecret).
		SetResult(&result).
		Get(v.graphURL + "/debug_token")
	if err != nil {
		return nil, NewOAuthError(CodeFacebookUnavailable, err)
	}
	if resp.IsError() {
		return nil, NewOAuthError(CodeFacebookUnavailable, fmt.Errorf("debug_token returned status %d", resp.StatusCode()))
	}

	// Exactly one token-info entry is expected; anything else means the
	// provider answered with something we do not understand.
	if len(result.Data) != 1 {
		return nil, NewOAuthError(CodeFacebookUnavailable, fmt.Errorf("debug_token returned %d token entries, want 1", len(result.Data)))
	}
	info := result.Data[0]

	if !info.IsValid {
		return nil, NewOAuthError(CodeTokenInvalid, nil)
	}
	if info.AppID != v.appID {
		// Token was issued to a different app: a stolen-token defense.
		return nil, NewOAuthError(CodeWrongApp, fmt.Errorf("token app id %q does not match caller app id %q", info.AppID, v.appID))
	}
	if time.Unix(info.ExpiresAt, 0).Before(v.now()) {
		return nil, NewOAuthError(CodeTokenExpired, nil)
	}
	if info.UserID == "" {
		return nil, NewOAuthError(CodeMissingAccountID, nil)
	}

	return &domain.GenericUserProfile{AccountID: info.UserID}, nil
}

// Profile fetches the caller's profile with the user token as bearer
// credential (implicit flow). Any failure collapses into the provider's
// service-unavailable code.
func (v *FacebookVerifier) Profile(ctx context.Context, userToken string) (*domain.GenericUserProfile, error) {
	var profile FacebookProfile
	resp, err := v.client.R().
		SetContext(ctx).
		SetAuthToken(userToken).
		SetQueryParam("fields", "id,first_name,last_name,email").
		SetResult(&profile).
		Get(v.graphURL + "/me")
	if err != nil {
		return nil, NewOAuthError(CodeFacebookUnavailable, err)
	}
	if resp.IsError() {
		return nil, NewOAuthError(CodeFacebookUnavailable, fmt.Errorf("me returned status %d", resp.StatusCode()))
	}
	if profile.ID == "" {
		return nil, NewOAuthError(CodeFacebookUnavailable, fmt.Errorf("me returned empty profile"))
	}
	return profile.GenericProfile(), nil
}

// Friends returns the first page of the caller's friends who also use
// this app. Pagination is deliberately not followed.
func (v *FacebookVerifier) Friends(ctx context.Context, userToken string) ([]FacebookFriend, int, error) {
	var result facebookFriendsResponse
	resp, err := v.client.R().
		SetContext(ctx).
		SetAuthToken(userToken).
		SetQueryParam("summary", "total_count").
		SetResult(&result).
		Get(v.graphURL + "/me/friends")
	if err != nil {
		return nil, 0, NewOAuthError(CodeFacebookUnavailable, err)
	}
	if resp.IsError() {
		return nil, 0, NewOAuthError(CodeFacebookUnavailable, fmt.Errorf("me/friends returned status %d", resp.StatusCode()))
	}
	return result.Data, result.Summary.TotalCount, nil
}
