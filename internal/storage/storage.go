// Package storage mints short-lived signed URLs for stored media.
// Originals and previews never get stable public URLs; every link a
// client sees expires.
package storage

import (
	"fmt"
	"time"

	"galeria/internal/config"
)

// Signer mints a time-limited URL for a media object. The key is the
// storage path recorded on the asset.
type Signer interface {
	Sign(key string) (url string, expiresAt time.Time, err error)
}

// NewSigner builds the signer selected by the configuration
func NewSigner(cfg *config.Config) (Signer, error) {
	switch cfg.StorageProvider {
	case "s3":
		return NewS3Signer(cfg)
	case "local", "":
		return NewLocalSigner(cfg.PublicBaseURL, cfg.LocalSignSecret, cfg.SignedURLTTL)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.StorageProvider)
	}
}
