package identity

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"resty.dev/v3"

	"socialplus/services/auth-api/internal/domain"
)

// MicrosoftVerifier verifies Microsoft account credentials: Live profile
// fetches for the implicit flow, and the legacy signed authentication
// token used by single-sign-on integrations.
type MicrosoftVerifier struct {
	client       *resty.Client
	profileURL   string
	clientID     string
	clientSecret string
	log          zerolog.Logger
	now          func() time.Time
}

// NewMicrosoftVerifier constructs a verifier bound to one app registration.
func NewMicrosoftVerifier(profileURL, clientID, clientSecret string, client *resty.Client, log zerolog.Logger) *MicrosoftVerifier {
	return &MicrosoftVerifier{
		client:       client,
		profileURL:   profileURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		log:          log,
		now:          time.Now,
	}
}

// MicrosoftProfileEmails is the nested email collection of the Live
// profile. Preferred duplicates one of the other slots and is never
// copied into the generic profile.
type MicrosoftProfileEmails struct {
	Preferred string `json:"preferred"`
	Account   string `json:"account"`
	Personal  string `json:"personal"`
	Business  string `json:"business"`
	Other     string `json:"other"`
}

// MicrosoftProfile mirrors the wire shape of the Live profile endpoint.
type MicrosoftProfile struct {
	ID        string                  `json:"id"`
	FirstName string                  `json:"first_name"`
	LastName  string                  `json:"last_name"`
	Emails    *MicrosoftProfileEmails `json:"emails"`
}

// GenericProfile derives the normalized profile shape. Emails are copied
// in the fixed order Account, Personal, Business, Other.
func (p *MicrosoftProfile) GenericProfile() *domain.GenericUserProfile {
	profile := &domain.GenericUserProfile{
		AccountID: p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
	}
	if p.Emails != nil {
		for _, email := range []string{p.Emails.Account, p.Emails.Personal, p.Emails.Business, p.Emails.Other} {
			if email != "" {
				profile.Emails = append(profile.Emails, email)
			}
		}
	}
	return profile
}

// VerifyToken fetches the caller's Live profile with the access token as
// a query parameter (implicit flow).
func (v *MicrosoftVerifier) VerifyToken(ctx context.Context, accessToken string) (*domain.GenericUserProfile, error) {
	var profile MicrosoftProfile
	resp, err := v.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", accessToken).
		SetResult(&profile).
		Get(v.profileURL)
	if err != nil {
		return nil, NewOAuthError(CodeMicrosoftUnavailable, err)
	}
	if resp.IsError() {
		return nil, NewOAuthError(CodeMicrosoftUnavailable, fmt.Errorf("profile endpoint returned status %d", resp.StatusCode()))
	}
	if profile.ID == "" {
		return nil, NewOAuthError(CodeMissingAccountID, nil)
	}
	return profile.GenericProfile(), nil
}

type microsoftTokenEnvelope struct {
	AppID     string `json:"appid"`
	UserID    string `json:"uid"`
	ExpiresAt int64  `json:"exp"`
}

// VerifyAuthenticationToken decodes the legacy signed authentication
// token with keys derived from the app's client secret. Intended only
// for single-sign-on integrations; the implicit flow is the production
// path. The decoded user id is app-scoped by the provider and differs
// from the account id the other flows return for the same user, which
// prevents cross-publisher correlation.
func (v *MicrosoftVerifier) VerifyAuthenticationToken(token string) (*domain.GenericUserProfile, error) {
	payload, signature, found := strings.Cut(token, ".")
	if !found {
		return nil, NewOAuthError(CodeTokenInvalid, fmt.Errorf("authentication token is not two dot-separated parts"))
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, NewOAuthError(CodeTokenInvalid, fmt.Errorf("decode token payload: %w", err))
	}
	signatureBytes, err := base64.RawURLEncoding.DecodeString(signature)
	if err != nil {
		return nil, NewOAuthError(CodeTokenInvalid, fmt.Errorf("decode token signature: %w", err))
	}

	key := sha256.Sum256([]byte(v.clientSecret))
	mac := hmac.New(sha256.New, key[:])
	mac.Write([]byte(payload))
	if !hmac.Equal(signatureBytes, mac.Sum(nil)) {
		return nil, NewOAuthError(CodeTokenInvalid, fmt.Errorf("authentication token signature mismatch"))
	}

	var envelope microsoftTokenEnvelope
	if err := json.Unmarshal(payloadBytes, &envelope); err != nil {
		return nil, NewOAuthError(CodeTokenInvalid, fmt.Errorf("parse token envelope: %w", err))
	}

	if time.Unix(envelope.ExpiresAt, 0).Before(v.now()) {
		return nil, NewOAuthError(CodeTokenExpired, nil)
	}
	if envelope.AppID != v.clientID {
		return nil, NewOAuthError(CodeWrongApp, fmt.Errorf("token app id %q does not match caller app id %q", envelope.AppID, v.clientID))
	}
	if envelope.UserID == "" {
		return nil, NewOAuthError(CodeMissingAccountID, nil)
	}

	return &domain.GenericUserProfile{AccountID: envelope.UserID}, nil
}
