package domain

// GenericUserProfile is the normalized identity shape produced by every
// provider verifier, independent of which provider vouched for it. It is
// consumed immediately to resolve or create an internal user record and
// is never persisted.
type GenericUserProfile struct {
	AccountID string
	FirstName string
	LastName  string
	Emails    []string
}
