package media

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"

	"rewear/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Store implements Store against an S3-compatible bucket.
type S3Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL *url.URL
}

// NewS3Store builds the S3 client from application config. A custom endpoint
// (MinIO, R2, etc.) switches the client to path-style addressing.
func NewS3Store(ctx context.Context, cfg *config.Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.MediaRegion),
	}
	if cfg.MediaAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.MediaAccessKey, cfg.MediaSecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load media store credentials: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.MediaEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.MediaEndpoint)
			o.UsePathStyle = true
		}
	})

	base := cfg.MediaPublicBaseURL
	if base == "" {
		base = defaultPublicBaseURL(cfg)
	}
	publicBaseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid media public base URL %q: %w", base, err)
	}

	return &S3Store{
		client:        client,
		bucket:        cfg.MediaBucket,
		publicBaseURL: publicBaseURL,
	}, nil
}

func defaultPublicBaseURL(cfg *config.Config) string {
	if cfg.MediaEndpoint != "" {
		return cfg.MediaEndpoint + "/" + cfg.MediaBucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.MediaBucket, cfg.MediaRegion)
}

// Upload stores content under a fresh object key inside folder and returns
// the public URL together with the key. No retry on failure.
func (s *S3Store) Upload(ctx context.Context, folder, filename, contentType string, content []byte) (Object, error) {
	key := objectKey(folder, filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return Object{}, fmt.Errorf("failed to upload %q to media store: %w", key, err)
	}

	return Object{URL: s.publicURL(key), Key: key}, nil
}

// Delete removes the object by key. Callers treat failures as best-effort
// where the surrounding operation allows it.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %q from media store: %w", key, err)
	}
	return nil
}

func (s *S3Store) publicURL(key string) string {
	uri := *s.publicBaseURL
	uri.Path = path.Join(uri.Path, key)
	return uri.String()
}

// objectKey builds "folder/uuid.ext", keeping only the original extension so
// user-supplied filenames never reach the bucket.
func objectKey(folder, filename string) string {
	ext := path.Ext(filename)
	return path.Join(folder, uuid.NewString()+ext)
}
