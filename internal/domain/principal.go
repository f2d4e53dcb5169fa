package domain

import (
	"errors"
	"fmt"
	"strings"
)

// IdentityProvider names the identity provider a user principal was
// verified against.
type IdentityProvider string

const (
	IdentityProviderFacebook  IdentityProvider = "Facebook"
	IdentityProviderMicrosoft IdentityProvider = "Microsoft"
	IdentityProviderGoogle    IdentityProvider = "Google"
	IdentityProviderTwitter   IdentityProvider = "Twitter"
	IdentityProviderAADS2S    IdentityProvider = "AADS2S"
	IdentityProviderInternal  IdentityProvider = "Internal"
)

// ErrMalformedPrincipal indicates a serialized principal that does not
// match the expected newline-delimited shape.
var ErrMalformedPrincipal = errors.New("malformed serialized principal")

// ParseIdentityProvider parses the serialized enum token.
func ParseIdentityProvider(s string) (IdentityProvider, error) {
	switch IdentityProvider(s) {
	case IdentityProviderFacebook,
		IdentityProviderMicrosoft,
		IdentityProviderGoogle,
		IdentityProviderTwitter,
		IdentityProviderAADS2S,
		IdentityProviderInternal:
		return IdentityProvider(s), nil
	}
	return "", fmt.Errorf("unknown identity provider %q", s)
}

// AppPrincipal identifies a verified application. Comparable by value;
// construct once and treat as immutable.
type AppPrincipal struct {
	AppHandle string
	AppKey    string
}

// Serialize renders the principal in its newline-delimited wire form.
// The format crosses process boundaries and must round-trip exactly.
func (p AppPrincipal) Serialize() string {
	return p.AppHandle + "\n" + p.AppKey
}

// DeserializeAppPrincipal parses the newline-delimited app principal form.
// The first two tokens win; content after a second newline is ignored.
func DeserializeAppPrincipal(s string) (AppPrincipal, error) {
	if !strings.Contains(s, "\n") {
		return AppPrincipal{}, fmt.Errorf("%w: app principal needs two newline-delimited fields", ErrMalformedPrincipal)
	}
	parts := strings.SplitN(s, "\n", 3)
	return AppPrincipal{AppHandle: parts[0], AppKey: parts[1]}, nil
}

// UserPrincipal identifies a verified user. UserHandle is empty while the
// caller is mid-registration: the external account has been verified but
// not yet mapped to an internal handle.
type UserPrincipal struct {
	UserHandle       string
	IdentityProvider IdentityProvider
	AccountID        string
}

// Registered reports whether the principal is bound to an internal user.
func (p UserPrincipal) Registered() bool {
	return p.UserHandle != ""
}

// Serialize renders the principal in its newline-delimited wire form.
func (p UserPrincipal) Serialize() string {
	return p.UserHandle + "\n" + string(p.IdentityProvider) + "\n" + p.AccountID
}

// DeserializeUserPrincipal parses the newline-delimited user principal
// form. Exactly three fields are required and the middle token must name
// a known identity provider; anything else fails the whole operation.
func DeserializeUserPrincipal(s string) (UserPrincipal, error) {
	parts := strings.Split(s, "\n")
	if len(parts) != 3 {
		return UserPrincipal{}, fmt.Errorf("%w: user principal needs exactly three newline-delimited fields, got %d", ErrMalformedPrincipal, len(parts))
	}
	provider, err := ParseIdentityProvider(parts[1])
	if err != nil {
		return UserPrincipal{}, fmt.Errorf("%w: %v", ErrMalformedPrincipal, err)
	}
	return UserPrincipal{
		UserHandle:       parts[0],
		IdentityProvider: provider,
		AccountID:        parts[2],
	}, nil
}
