package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"

	"marketplace-server/services/moderation-api/internal/config"
	"marketplace-server/services/moderation-api/internal/infrastructure/metrics"
)

var (
	// ErrNotFound is returned by FetchBytes for a missing key.
	ErrNotFound = errors.New("object not found")
	// ErrSigningUnavailable marks a failed signed URL request. It is
	// expected in non-production execution and only triggers the
	// fallback URL shape, never a pipeline error.
	ErrSigningUnavailable = errors.New("signed url unavailable")
)

// S3Storage is the blob store adapter over S3-compatible storage.
type S3Storage struct {
	bucket           string
	emulatorEndpoint string
	signedURLTTL     time.Duration
	production       bool
	client           *s3.Client
	presigner        *s3.PresignClient
	log              zerolog.Logger
}

func NewS3Storage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*S3Storage, error) {
	logger := log.With().Str("component", "s3-storage").Logger()

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.S3Endpoint != "" {
			return aws.Endpoint{
				URL:           cfg.S3Endpoint,
				PartitionID:   "aws",
				SigningRegion: cfg.S3Region,
			}, nil
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretKey, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
	})

	return &S3Storage{
		bucket:           cfg.S3Bucket,
		emulatorEndpoint: strings.TrimSuffix(cfg.S3EmulatorEndpoint, "/"),
		signedURLTTL:     cfg.SignedURLTTL,
		production:       cfg.IsProduction(),
		client:           client,
		presigner:        s3.NewPresignClient(client),
		log:              logger,
	}, nil
}

// Upload stores a blob with its content type and custom metadata.
func (s *S3Storage) Upload(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		Metadata:    metadata,
	})
	if err != nil {
		metrics.RecordStorageOperation("upload", "error")
		return fmt.Errorf("upload %s: %w", key, err)
	}
	metrics.RecordStorageOperation("upload", "success")
	return nil
}

// FetchBytes reads the whole object into memory.
func (s *S3Storage) FetchBytes(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		metrics.RecordStorageOperation("fetch", "error")
		var notFound *types.NoSuchKey
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("fetch %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		metrics.RecordStorageOperation("fetch", "error")
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	metrics.RecordStorageOperation("fetch", "success")
	return data, nil
}

// Delete removes the object. Deleting a missing key is a success; the
// pipeline may legitimately repeat a delete on event redelivery.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NoSuchKey
		if errors.As(err, &notFound) {
			s.log.Debug().Str("key", key).Msg("object already deleted")
			metrics.RecordStorageOperation("delete", "success")
			return nil
		}
		metrics.RecordStorageOperation("delete", "error")
		return fmt.Errorf("delete %s: %w", key, err)
	}
	metrics.RecordStorageOperation("delete", "success")
	return nil
}

// ResolvePublicURL returns a viewable URL for the object. In production it
// requests a long-lived signed URL; when signing fails, or outside
// production, it falls back transparently to the direct media URL shape
// served by the storage emulator.
func (s *S3Storage) ResolvePublicURL(ctx context.Context, key string) (string, error) {
	if s.production {
		signed, err := s.signedURL(ctx, key)
		if err == nil {
			return signed, nil
		}
		s.log.Warn().Err(err).Str("key", key).Msg("falling back to direct media url")
	}
	metrics.RecordURLFallback()
	return FallbackURL(s.emulatorEndpoint, s.bucket, key), nil
}

func (s *S3Storage) signedURL(ctx context.Context, key string) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.signedURLTTL))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigningUnavailable, err)
	}
	return req.URL, nil
}

// FallbackURL builds the direct media access URL:
// <endpoint>/v0/b/<bucket>/o/<url-encoded-key>?alt=media
func FallbackURL(endpoint, bucket, key string) string {
	return fmt.Sprintf("%s/v0/b/%s/o/%s?alt=media",
		strings.TrimSuffix(endpoint, "/"), bucket, url.PathEscape(key))
}
