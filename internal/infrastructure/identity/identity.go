// Package identity verifies inbound credentials against external
// identity providers (Facebook, Google, Microsoft, Twitter, AAD
// server-to-server) and the internal session-token service, producing
// normalized principals the rest of the service can trust.
package identity

import (
	"fmt"
	"strings"

	"socialplus/services/auth-api/internal/domain"
)

// Scheme is the named credential format carried in the Authorization
// header. The set is closed: dispatch is an exhaustive switch, never
// reflection.
type Scheme string

const (
	SchemeAnonymous  Scheme = "Anon"
	SchemeSocialPlus Scheme = "SocialPlus"
	SchemeFacebook   Scheme = "Facebook"
	SchemeGoogle     Scheme = "Google"
	SchemeMicrosoft  Scheme = "Microsoft"
	SchemeTwitter    Scheme = "Twitter"
	SchemeAADS2S     Scheme = "AADS2S"
)

// ParseScheme matches the header scheme token case-insensitively
// against the closed scheme set.
func ParseScheme(s string) (Scheme, error) {
	for _, scheme := range []Scheme{
		SchemeAnonymous,
		SchemeSocialPlus,
		SchemeFacebook,
		SchemeGoogle,
		SchemeMicrosoft,
		SchemeTwitter,
		SchemeAADS2S,
	} {
		if strings.EqualFold(s, string(scheme)) {
			return scheme, nil
		}
	}
	return "", fmt.Errorf("unknown authorization scheme %q", s)
}

// Credential parameter keys accepted in the Authorization header's
// credentials list.
const (
	credentialKeyAppKey       = "AK"
	credentialKeyToken        = "TK"
	credentialKeyUserHandle   = "UH"
	credentialKeyRequestToken = "RT"
)

// ParseCredentialList splits a pipe- or comma-delimited list of
// Key=Value tokens. Values may themselves contain '=', so only the
// first '=' per token delimits.
func ParseCredentialList(s string) (map[string]string, error) {
	out := make(map[string]string)
	if strings.TrimSpace(s) == "" {
		return out, nil
	}

	delimiter := "|"
	if !strings.Contains(s, "|") && strings.Contains(s, ",") {
		delimiter = ","
	}

	for _, token := range strings.Split(s, delimiter) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		key, value, found := strings.Cut(token, "=")
		if !found {
			return nil, fmt.Errorf("malformed credential token %q", token)
		}
		out[strings.ToUpper(strings.TrimSpace(key))] = value
	}
	return out, nil
}

// Result carries the principals produced by a successful dispatch. A
// request yields at most one principal of each kind. Credentials holds
// the parsed credential parameters for handlers that need the raw
// provider token (e.g. the Facebook friends passthrough).
type Result struct {
	App         *domain.AppPrincipal
	User        *domain.UserPrincipal
	Profile     *domain.GenericUserProfile
	Credentials map[string]string
}

// ProviderToken returns the raw provider token presented in the
// credential list, if any.
func (r *Result) ProviderToken() string {
	return r.Credentials[credentialKeyToken]
}
