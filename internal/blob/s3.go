package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
)

// Options configures an S3Store.
type Options struct {
	Endpoint  string // e.g. "http://localhost:9000"
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// PublicURL is the origin objects are served from. When empty, object
	// URLs are built from Endpoint and Bucket.
	PublicURL string
}

// S3Store keeps product images and QR codes in an S3-compatible bucket.
type S3Store struct {
	logger    zerolog.Logger
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewS3Store creates an S3Store using path-style addressing against the
// configured endpoint.
func NewS3Store(logger zerolog.Logger, opts Options) *S3Store {
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}

	publicURL := strings.TrimRight(opts.PublicURL, "/")
	if publicURL == "" {
		publicURL = strings.TrimRight(opts.Endpoint, "/") + "/" + opts.Bucket
	}

	return &S3Store{
		logger: logger.With().Str("component", "s3-store").Str("bucket", opts.Bucket).Logger(),
		client: s3.New(s3.Options{
			BaseEndpoint: aws.String(opts.Endpoint),
			Region:       region,
			Credentials:  credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
			UsePathStyle: true,
		}),
		bucket:    opts.Bucket,
		publicURL: publicURL,
	}
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	_, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		// Our own bucket from an earlier start. A bucket owned by someone else
		// (BucketAlreadyExists) cannot be written to and stays an error.
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info().Msg("created bucket")
	return nil
}

// Put uploads data under key and returns its public URL.
func (s *S3Store) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	s.logger.Debug().Str("key", key).Int("bytes", len(data)).Msg("stored object")
	return s.URL(key), nil
}

// Delete removes the object stored under key. Missing objects are not an error.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// isNotFound reports whether err is an S3 error for a missing object.
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

// URL returns the public URL of key.
func (s *S3Store) URL(key string) string {
	return s.publicURL + "/" + key
}
