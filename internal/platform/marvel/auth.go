package marvel

import (
	"crypto/md5"
	"encoding/hex"
	"net/http"
)

// Timestamp is the fixed ts value sent with every request. The gateway
// accepts any ts as long as hash is computed over the same value.
const Timestamp = "1"

const (
	paramTimestamp = "ts"
	paramHash      = "hash"
	paramAPIKey    = "apikey"
)

// Hash returns md5(ts + privateKey + publicKey) as lowercase hex.
func Hash(ts, privateKey, publicKey string) string {
	sum := md5.Sum([]byte(ts + privateKey + publicKey))
	return hex.EncodeToString(sum[:])
}

// authTransport appends the gateway's auth parameters to every outbound request.
type authTransport struct {
	base       http.RoundTripper
	publicKey  string
	privateKey string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not mutate the caller's request.
	out := req.Clone(req.Context())
	q := out.URL.Query()
	q.Set(paramTimestamp, Timestamp)
	q.Set(paramHash, Hash(Timestamp, t.privateKey, t.publicKey))
	q.Set(paramAPIKey, t.publicKey)
	out.URL.RawQuery = q.Encode()

	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(out)
}
