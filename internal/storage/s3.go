package storage

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"galeria/internal/config"
)

// S3Signer presigns GET URLs against S3 or any S3-compatible store.
// Credentials come from the default AWS chain.
type S3Signer struct {
	client *s3.S3
	bucket string
	ttl    time.Duration
}

// NewS3Signer creates a signer for the configured bucket
func NewS3Signer(cfg *config.Config) (*S3Signer, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is not set")
	}

	awsConfig := &aws.Config{
		Region: aws.String(cfg.S3Region),
	}
	// Custom endpoint for S3-compatible services (MinIO, R2, Wasabi)
	if cfg.S3Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.S3Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Signer{
		client: s3.New(sess),
		bucket: cfg.S3Bucket,
		ttl:    cfg.SignedURLTTL,
	}, nil
}

// Sign presigns a GET for the object at key
func (s *S3Signer) Sign(key string) (string, time.Time, error) {
	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})

	expiresAt := time.Now().Add(s.ttl)
	url, err := req.Presign(s.ttl)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to presign %s: %w", key, err)
	}

	return url, expiresAt, nil
}
