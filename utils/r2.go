// utils/r2.go
package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	appconfig "liquidity-marketplace/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrStorageDisabled = errors.New("object storage is not configured")

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// SnapshotPublisher writes JSON snapshots to a Cloudflare R2 bucket through
// the S3 API.
type SnapshotPublisher struct {
	client     objectPutter
	bucket     string
	cdnBaseURL string
}

func r2Endpoint(accountID string) string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
}

// NewSnapshotPublisher returns ErrStorageDisabled when no bucket is configured.
func NewSnapshotPublisher(ctx context.Context, cfg appconfig.StorageConfig) (*SnapshotPublisher, error) {
	if cfg.Bucket == "" {
		return nil, ErrStorageDisabled
	}
	if cfg.AccountID == "" {
		return nil, fmt.Errorf("storage: CLOUDFLARE_ACCOUNT_ID is required when R2_BUCKET_NAME is set")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.AccessKeySecret, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(r2Endpoint(cfg.AccountID))
	})

	cdn := cfg.CDNBaseURL
	if cdn == "" {
		cdn = r2Endpoint(cfg.AccountID)
	}
	return newSnapshotPublisher(client, cfg.Bucket, cdn), nil
}

func newSnapshotPublisher(client objectPutter, bucket, cdnBaseURL string) *SnapshotPublisher {
	return &SnapshotPublisher{
		client:     client,
		bucket:     bucket,
		cdnBaseURL: strings.TrimRight(cdnBaseURL, "/"),
	}
}

// Publish uploads body under key and returns its public URL.
func (p *SnapshotPublisher) Publish(ctx context.Context, key string, body []byte) (string, error) {
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String("application/json"),
		CacheControl: aws.String("public, max-age=60"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}
	return fmt.Sprintf("%s/%s", p.cdnBaseURL, strings.TrimLeft(key, "/")), nil
}
