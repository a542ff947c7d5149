// Package publish uploads rendered clip artifacts to object storage.
package publish

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/smartclips/clipper/internal/stage"
)

const (
	// ContentTypeVideo is the content type set on uploaded clips.
	ContentTypeVideo = "video/mp4"
	// ContentTypeImage is the content type set on uploaded thumbnails.
	ContentTypeImage = "image/jpeg"
)

// ObjectStoreConfig is the caller-supplied object storage configuration,
// carried on each clip request.
type ObjectStoreConfig struct {
	Region          string `json:"region"`
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
	Endpoint        string `json:"endpoint,omitempty"` // S3-compatible stores
}

// Publisher uploads artifacts to one bucket with public-read visibility.
// A Publisher is built per invocation because credentials arrive with the
// request rather than from the environment.
type Publisher struct {
	uploader *manager.Uploader
	bucket   string
	logger   *zap.Logger
}

// NewPublisher creates an S3 client from the request-scoped config. Static
// credentials from the request win; otherwise the default chain applies.
func NewPublisher(ctx context.Context, cfg ObjectStoreConfig, bucket string, logger *zap.Logger) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &Publisher{
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		logger:   logger,
	}, nil
}

// Upload puts one artifact under key with public-read ACL and reports the
// outcome as a stage result; it never returns an error directly because the
// orchestrator decides which uploads are fatal.
func (p *Publisher) Upload(ctx context.Context, key, contentType string, artifact stage.Artifact, body io.Reader) stage.Result {
	_, err := p.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		p.logger.Warn("upload failed", zap.String("key", key), zap.Error(err))
		return stage.Fail(artifact, stage.CodeUploadFailed, fmt.Sprintf("upload %s: %v", key, err))
	}
	return stage.OK(artifact)
}

// VideoKey returns the object key for a rendered clip: {accountId}/{clipId}.mp4.
func VideoKey(accountID, clipID string) string {
	return path.Join(accountID, clipID+".mp4")
}

// ImageKey returns the object key for a clip thumbnail: {accountId}/{clipId}.jpg.
func ImageKey(accountID, clipID string) string {
	return path.Join(accountID, clipID+".jpg")
}

// ConcatKey returns the blob store key for the concatenated transport stream.
func ConcatKey(accountID, clipID string) string {
	return path.Join(accountID, clipID+".ts")
}
