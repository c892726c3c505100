package report

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// HashToQR renders a SHA-256 hex digest as a QR code PNG. The digest is
// upper-cased so the denser alphanumeric QR encoding applies.
func HashToQR(hash string, size int) ([]byte, error) {
	digest, ok := normalizeDigest(hash)
	if !ok {
		return nil, fmt.Errorf("not a SHA-256 hex digest: %q", hash)
	}
	if size <= 0 {
		size = 128
	}
	return qrcode.Encode(digest, qrcode.Medium, size)
}

// normalizeDigest upper-cases a 64-character hex digest and rejects anything
// else.
func normalizeDigest(hash string) (string, bool) {
	digest := strings.ToUpper(strings.TrimSpace(hash))
	if len(digest) != 64 {
		return "", false
	}
	for _, r := range digest {
		if (r < '0' || r > '9') && (r < 'A' || r > 'F') {
			return "", false
		}
	}
	return digest, true
}
