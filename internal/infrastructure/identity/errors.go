package identity

import "fmt"

// OAuthErrorCode is the coarse internal failure code attached to every
// verifier error. Codes are logged server-side only; callers see a
// uniform unauthorized response regardless of code.
type OAuthErrorCode string

const (
	// Credential rejected by provider-embedded checks.
	CodeTokenExpired     OAuthErrorCode = "unauthorized_token_expired"
	CodeTokenInvalid     OAuthErrorCode = "unauthorized_token_invalid"
	CodeWrongApp         OAuthErrorCode = "unauthorized_wrong_app"
	CodeMissingAccountID OAuthErrorCode = "unauthorized_missing_account_id"

	// Provider or transport failure. Network errors, empty bodies and
	// unparseable responses all collapse into the per-provider code;
	// Twitter gets one code per leg so operators can tell which leg
	// failed.
	CodeFacebookUnavailable            OAuthErrorCode = "service_unavailable_facebook"
	CodeGoogleUnavailable              OAuthErrorCode = "service_unavailable_google"
	CodeMicrosoftUnavailable           OAuthErrorCode = "service_unavailable_microsoft"
	CodeTwitterRequestTokenUnavailable OAuthErrorCode = "service_unavailable_twitter_request_token"
	CodeTwitterAccessTokenUnavailable  OAuthErrorCode = "service_unavailable_twitter_access_token"
	CodeTwitterProfileUnavailable      OAuthErrorCode = "service_unavailable_twitter_profile"
	CodeAADUnavailable                 OAuthErrorCode = "service_unavailable_aad"
)

// OAuthError is the structured failure every verifier produces. The
// inner cause is preserved for diagnostics and never echoed to clients.
type OAuthError struct {
	Code OAuthErrorCode
	Err  error
}

func (e *OAuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return string(e.Code)
}

func (e *OAuthError) Unwrap() error {
	return e.Err
}

// NewOAuthError wraps cause under the given code. cause may be nil for
// validation failures that carry no underlying error.
func NewOAuthError(code OAuthErrorCode, cause error) *OAuthError {
	return &OAuthError{Code: code, Err: cause}
}
