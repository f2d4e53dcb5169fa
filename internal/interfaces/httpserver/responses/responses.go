// Package responses contains HTTP response DTOs and error writers for
// the auth-api.
package responses

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error *ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

// SessionResponse is returned when a session token is issued.
type SessionResponse struct {
	SessionToken string `json:"session_token"`
	UserHandle   string `json:"user_handle"`
	AppHandle    string `json:"app_handle"`
	ExpiresIn    int64  `json:"expires_in"`
}

// PrincipalResponse echoes the authenticated principals of a request.
type PrincipalResponse struct {
	AppHandle        string `json:"app_handle"`
	UserHandle       string `json:"user_handle,omitempty"`
	IdentityProvider string `json:"identity_provider,omitempty"`
	AccountID        string `json:"account_id,omitempty"`
	Registered       bool   `json:"registered"`
}

// FriendsResponse lists the caller's provider-side friends.
type FriendsResponse struct {
	Friends    []FriendEntry `json:"friends"`
	TotalCount int           `json:"total_count"`
}

// FriendEntry is one friend in a FriendsResponse.
type FriendEntry struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
}
