package identity

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"socialplus/services/auth-api/internal/domain"
)

// TwitterAccessToken is the outcome of the access-token exchange leg.
type TwitterAccessToken struct {
	Token  string
	Secret string
}

// TwitterProfile mirrors the wire shape of the verify_credentials
// endpoint.
type TwitterProfile struct {
	ID         string `json:"id_str"`
	Name       string `json:"name"`
	ScreenName string `json:"screen_name"`
	Email      string `json:"email"`
}

// GenericProfile derives the normalized profile shape. Twitter exposes a
// single display name; the first word becomes the first name and the
// remainder the last name.
func (p *TwitterProfile) GenericProfile() *domain.GenericUserProfile {
	first, last, _ := strings.Cut(p.Name, " ")
	profile := &domain.GenericUserProfile{
		AccountID: p.ID,
		FirstName: first,
		LastName:  last,
	}
	if p.Email != "" {
		profile.Emails = []string{p.Email}
	}
	return profile
}

// TwitterVerifier runs the 3-legged OAuth1.0a flow: request token,
// access-token exchange, profile fetch. Every leg carries an app-signed
// Authorization header; each leg fails with its own service code so
// operators can tell which leg broke.
type TwitterVerifier struct {
	client               *resty.Client
	consumerKey          string
	consumerSecret       string
	callbackURL          string
	requestTokenURL      string
	accessTokenURL       string
	verifyCredentialsURL string
	log                  zerolog.Logger

	// Injectable for byte-exact signature tests.
	nonce     func() string
	timestamp func() string
}

// NewTwitterVerifier constructs a verifier bound to one consumer-key
// registration.
func NewTwitterVerifier(consumerKey, consumerSecret, callbackURL, requestTokenURL, accessTokenURL, verifyCredentialsURL string, client *resty.Client, log zerolog.Logger) *TwitterVerifier {
	return &TwitterVerifier{
		client:               client,
		consumerKey:          consumerKey,
		consumerSecret:       consumerSecret,
		callbackURL:          callbackURL,
		requestTokenURL:      requestTokenURL,
		accessTokenURL:       accessTokenURL,
		verifyCredentialsURL: verifyCredentialsURL,
		log:                  log,
		nonce: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")
		},
		timestamp: func() string {
			return strconv.FormatInt(time.Now().Unix(), 10)
		},
	}
}

// signedHeader builds the signed Authorization header for one request.
// extraParams are request parameters (query or form) that participate in
// the signature but are not oauth_* header parameters.
func (v *TwitterVerifier) signedHeader(method, baseURL string, oauthExtras, extraParams map[string]string, tokenSecret string) string {
	oauthParams := map[string]string{
		"oauth_consumer_key":     v.consumerKey,
		"oauth_nonce":            v.nonce(),
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        v.timestamp(),
		"oauth_version":          "1.0",
	}
	for key, value := range oauthExtras {
		oauthParams[key] = value
	}

	signedParams := make(map[string]string, len(oauthParams)+len(extraParams))
	for key, value := range oauthParams {
		signedParams[key] = value
	}
	for key, value := range extraParams {
		signedParams[key] = value
	}

	base := oauthSignatureBase(method, baseURL, signedParams)
	oauthParams["oauth_signature"] = oauthSignature(base, v.consumerSecret, tokenSecret)
	return oauthAuthorizationHeader(oauthParams)
}

// RequestToken performs the first leg: an app-signed POST to the
// request-token endpoint, signed with the consumer secret alone.
func (v *TwitterVerifier) RequestToken(ctx context.Context) (string, error) {
	header := v.signedHeader("POST", v.requestTokenURL,
		map[string]string{"oauth_callback": v.callbackURL}, nil, "")

	resp, err := v.client.R().
		SetContext(ctx).
		SetHeader("Authorization", header).
		Post(v.requestTokenURL)
	if err != nil {
		return "", NewOAuthError(CodeTwitterRequestTokenUnavailable, err)
	}
	if resp.IsError() {
		return "", NewOAuthError(CodeTwitterRequestTokenUnavailable, fmt.Errorf("request_token returned status %d", resp.StatusCode()))
	}

	values, err := url.ParseQuery(resp.String())
	if err != nil {
		return "", NewOAuthError(CodeTwitterRequestTokenUnavailable, fmt.Errorf("parse request_token response: %w", err))
	}
	token := values.Get("oauth_token")
	if token == "" {
		return "", NewOAuthError(CodeTwitterRequestTokenUnavailable, fmt.Errorf("request_token response missing oauth_token"))
	}
	return token, nil
}

// ExchangeAccessToken performs the second leg: redeems a request token
// plus the out-of-band verifier string for an access token. Per the
// provider contract this leg signs with the request token as the token
// part of the key.
func (v *TwitterVerifier) ExchangeAccessToken(ctx context.Context, requestToken, verifier string) (*TwitterAccessToken, error) {
	header := v.signedHeader("POST", v.accessTokenURL,
		map[string]string{"oauth_token": requestToken},
		map[string]string{"oauth_verifier": verifier},
		requestToken)

	resp, err := v.client.R().
		SetContext(ctx).
		SetHeader("Authorization", header).
		SetFormData(map[string]string{"oauth_verifier": verifier}).
		Post(v.accessTokenURL)
	if err != nil {
		return nil, NewOAuthError(CodeTwitterAccessTokenUnavailable, err)
	}
	if resp.IsError() {
		return nil, NewOAuthError(CodeTwitterAccessTokenUnavailable, fmt.Errorf("access_token returned status %d", resp.StatusCode()))
	}

	values, err := url.ParseQuery(resp.String())
	if err != nil {
		return nil, NewOAuthError(CodeTwitterAccessTokenUnavailable, fmt.Errorf("parse access_token response: %w", err))
	}
	token := values.Get("oauth_token")
	secret := values.Get("oauth_token_secret")
	if token == "" || secret == "" {
		return nil, NewOAuthError(CodeTwitterAccessTokenUnavailable, fmt.Errorf("access_token response missing token or secret"))
	}
	return &TwitterAccessToken{Token: token, Secret: secret}, nil
}

// VerifyCredentials performs the third leg: fetches the caller's profile
// with a signature keyed by the access-token secret.
func (v *TwitterVerifier) VerifyCredentials(ctx context.Context, access *TwitterAccessToken) (*domain.GenericUserProfile, error) {
	header := v.signedHeader("GET", v.verifyCredentialsURL,
		map[string]string{"oauth_token": access.Token}, nil, access.Secret)

	var profile TwitterProfile
	resp, err := v.client.R().
		SetContext(ctx).
		SetHeader("Authorization", header).
		SetResult(&profile).
		Get(v.verifyCredentialsURL)
	if err != nil {
		return nil, NewOAuthError(CodeTwitterProfileUnavailable, err)
	}
	if resp.IsError() {
		return nil, NewOAuthError(CodeTwitterProfileUnavailable, fmt.Errorf("verify_credentials returned status %d", resp.StatusCode()))
	}
	if profile.ID == "" {
		return nil, NewOAuthError(CodeMissingAccountID, nil)
	}
	return profile.GenericProfile(), nil
}

// Verify runs legs two and three for a caller that already completed the
// authorization step out-of-band and holds a request token plus verifier.
func (v *TwitterVerifier) Verify(ctx context.Context, requestToken, verifier string) (*domain.GenericUserProfile, error) {
	access, err := v.ExchangeAccessToken(ctx, requestToken, verifier)
	if err != nil {
		return nil, err
	}
	return v.VerifyCredentials(ctx, access)
}
