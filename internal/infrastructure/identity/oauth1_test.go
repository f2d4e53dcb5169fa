package identity

import (
	"testing"
)

// Signing vector published in Twitter's "Creating a signature" guide.
const (
	vectorConsumerKey    = "xvz1evFS4wEEPTGEFPHBog"
	vectorConsumerSecret = "kAcSOqF21Fu85e7zjz7ZN2U4ZRhfV3WpwPAoE3Z7kBw"
	vectorToken          = "370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb"
	vectorTokenSecret    = "LswwdoUaIvS8ltyTt5jkRh4J50vUPVVHtR2YPi5kE"
	vectorNonce          = "kYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg"
	vectorTimestamp      = "1318622958"
	vectorSignature      = "tnnArxj06cWHq44gCs1OSKk/jLY="
)

func TestPercentEncode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abcABC123", "abcABC123"},
		{"-._~", "-._~"},
		{"Ladies + Gentlemen", "Ladies%20%2B%20Gentlemen"},
		{"An encoded string!", "An%20encoded%20string%21"},
		{"Dogs, Cats & Mice", "Dogs%2C%20Cats%20%26%20Mice"},
		{"☃", "%E2%98%83"},
	}
	for _, tc := range cases {
		if got := percentEncode(tc.in); got != tc.want {
			t.Errorf("percentEncode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func vectorParams() map[string]string {
	return map[string]string{
		"status":                 "Hello Ladies + Gentlemen, a signed OAuth request!",
		"include_entities":       "true",
		"oauth_consumer_key":     vectorConsumerKey,
		"oauth_nonce":            vectorNonce,
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        vectorTimestamp,
		"oauth_token":            vectorToken,
		"oauth_version":          "1.0",
	}
}

func TestOAuthSignatureBase(t *testing.T) {
	base := oauthSignatureBase("post", "https://api.twitter.com/1.1/statuses/update.json", vectorParams())

	want := "POST&https%3A%2F%2Fapi.twitter.com%2F1.1%2Fstatuses%2Fupdate.json&" +
		"include_entities%3Dtrue%26" +
		"oauth_consumer_key%3Dxvz1evFS4wEEPTGEFPHBog%26" +
		"oauth_nonce%3DkYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg%26" +
		"oauth_signature_method%3DHMAC-SHA1%26" +
		"oauth_timestamp%3D1318622958%26" +
		"oauth_token%3D370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb%26" +
		"oauth_version%3D1.0%26" +
		"status%3DHello%2520Ladies%2520%252B%2520Gentlemen%252C%2520a%2520signed%2520OAuth%2520request%2521"

	if base != want {
		t.Errorf("signature base mismatch:\n got %s\nwant %s", base, want)
	}
}

func TestOAuthSignatureVector(t *testing.T) {
	base := oauthSignatureBase("POST", "https://api.twitter.com/1.1/statuses/update.json", vectorParams())
	sig := oauthSignature(base, vectorConsumerSecret, vectorTokenSecret)
	if sig != vectorSignature {
		t.Errorf("signature = %q, want %q", sig, vectorSignature)
	}
}

func TestOAuthSignatureNoTokenSecret(t *testing.T) {
	// The first leg signs with the consumer secret alone; the key must
	// still end in '&'.
	sigEmpty := oauthSignature("base", "secret", "")
	sigToken := oauthSignature("base", "secret", "other")
	if sigEmpty == sigToken {
		t.Error("token secret did not participate in the signing key")
	}
}

func TestSignedHeaderVector(t *testing.T) {
	v := &TwitterVerifier{
		consumerKey:    vectorConsumerKey,
		consumerSecret: vectorConsumerSecret,
		nonce:          func() string { return vectorNonce },
		timestamp:      func() string { return vectorTimestamp },
	}

	header := v.signedHeader("POST", "https://api.twitter.com/1.1/statuses/update.json",
		map[string]string{"oauth_token": vectorToken},
		map[string]string{
			"status":           "Hello Ladies + Gentlemen, a signed OAuth request!",
			"include_entities": "true",
		},
		vectorTokenSecret)

	want := `OAuth oauth_consumer_key="xvz1evFS4wEEPTGEFPHBog", ` +
		`oauth_nonce="kYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg", ` +
		`oauth_signature="tnnArxj06cWHq44gCs1OSKk%2FjLY%3D", ` +
		`oauth_signature_method="HMAC-SHA1", ` +
		`oauth_timestamp="1318622958", ` +
		`oauth_token="370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb", ` +
		`oauth_version="1.0"`

	if header != want {
		t.Errorf("authorization header mismatch:\n got %s\nwant %s", header, want)
	}
}
