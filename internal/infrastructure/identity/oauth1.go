package identity

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
)

// OAuth1.0a request signing (RFC 5849). The canonicalization below is
// byte-exact: any deviation in encoding or parameter ordering breaks
// interoperability with the provider.

// percentEncode applies the RFC 3986 strict encoding OAuth1.0a demands:
// only ALPHA, DIGIT, '-', '.', '_' and '~' pass through, everything else
// becomes an uppercase-hex escape.
func percentEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '-', c == '.', c == '_', c == '~':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

// oauthParameterString canonicalizes request parameters: each key and
// value is percent-encoded first, then the encoded pairs are sorted and
// joined with '&'.
func oauthParameterString(params map[string]string) string {
	pairs := make([]string, 0, len(params))
	for key, value := range params {
		pairs = append(pairs, percentEncode(key)+"="+percentEncode(value))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "&")
}

// oauthSignatureBase builds the signature base string over the request
// method, the base URL (no query), and the canonical parameter string.
func oauthSignatureBase(method, baseURL string, params map[string]string) string {
	return strings.ToUpper(method) + "&" + percentEncode(baseURL) + "&" + percentEncode(oauthParameterString(params))
}

// oauthSignature computes the base64 HMAC-SHA1 signature. The signing
// key is the encoded consumer secret and token secret joined by '&';
// legs that have no token secret yet sign with a trailing '&' alone.
func oauthSignature(baseString, consumerSecret, tokenSecret string) string {
	key := percentEncode(consumerSecret) + "&" + percentEncode(tokenSecret)
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(baseString))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// oauthAuthorizationHeader renders the signed oauth_* parameters as an
// Authorization header value, keys sorted, values percent-encoded.
func oauthAuthorizationHeader(oauthParams map[string]string) string {
	keys := make([]string, 0, len(oauthParams))
	for key := range oauthParams {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", percentEncode(key), percentEncode(oauthParams[key])))
	}
	return "OAuth " + strings.Join(parts, ", ")
}
