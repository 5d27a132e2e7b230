package click

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// sign builds the hex MD5 of the ordered Click fields. The prepare id only
// takes part in complete requests.
func sign(req request, serviceID, secret string) string {
	var b strings.Builder
	b.WriteString(req.ClickTransID.String())
	b.WriteString(serviceID)
	b.WriteString(secret)
	b.WriteString(req.MerchantTransID.String())
	if req.action == ActionComplete {
		b.WriteString(req.MerchantPrepareID.String())
	}
	b.WriteString(req.Amount.String())
	b.WriteString(req.Action.String())
	b.WriteString(req.SignTime)

	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func verifySignature(req request, serviceID, secret string) bool {
	want := sign(req, serviceID, secret)
	got := strings.ToLower(strings.TrimSpace(req.SignString))
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
