package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// LocalSigner issues HMAC-signed URLs served by this process. Used in
// dev and single-node deployments where no object store is available.
type LocalSigner struct {
	baseURL string
	secret  []byte
	ttl     time.Duration
}

func NewLocalSigner(baseURL, secret string, ttl time.Duration) (*LocalSigner, error) {
	if secret == "" {
		return nil, fmt.Errorf("LOCAL_SIGN_SECRET is not set")
	}
	return &LocalSigner{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  []byte(secret),
		ttl:     ttl,
	}, nil
}

// Sign builds /media/{key}?expires=...&signature=... under the base URL
func (l *LocalSigner) Sign(key string) (string, time.Time, error) {
	expiresAt := time.Now().Add(l.ttl)
	expires := strconv.FormatInt(expiresAt.Unix(), 10)
	sig := l.signature(key, expires)

	// EscapedPath keeps the key's slashes while escaping everything else
	path := (&url.URL{Path: "/media/" + key}).EscapedPath()
	signed := fmt.Sprintf("%s%s?expires=%s&signature=%s", l.baseURL, path, expires, sig)
	return signed, expiresAt, nil
}

// Verify checks a signature produced by Sign and that it has not expired
func (l *LocalSigner) Verify(key, expires, signature string) bool {
	unix, err := strconv.ParseInt(expires, 10, 64)
	if err != nil || time.Now().Unix() > unix {
		return false
	}
	expected := l.signature(key, expires)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (l *LocalSigner) signature(key, expires string) string {
	mac := hmac.New(sha256.New, l.secret)
	mac.Write([]byte(key))
	mac.Write([]byte("\n"))
	mac.Write([]byte(expires))
	return hex.EncodeToString(mac.Sum(nil))
}
