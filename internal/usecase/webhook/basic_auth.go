package webhook

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"
)

// ParseBasic decodes an "Authorization: Basic base64(identity:secret)" header value.
func ParseBasic(header string) (identity, secret string, ok bool) {
	const prefix = "basic "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return "", "", false
	}
	identity, secret, ok = strings.Cut(string(raw), ":")
	return identity, secret, ok
}

// VerifyBasic checks the header against the expected credential in constant time.
// Both parts are always compared so the outcome does not tell which one was wrong.
func VerifyBasic(header, identity, secret string) bool {
	gotIdentity, gotSecret, ok := ParseBasic(header)
	identityOK := subtle.ConstantTimeCompare([]byte(gotIdentity), []byte(identity))
	secretOK := subtle.ConstantTimeCompare([]byte(gotSecret), []byte(secret))
	return ok && identityOK&secretOK == 1
}
