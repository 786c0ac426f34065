// Package storage publishes finished montage archives to S3-compatible
// object storage (AWS S3, Cloudflare R2, MinIO).
//
// Publishing is optional. The CLI enables it with --publish s3://bucket/prefix
// and the server enables it when GANGSHEET_S3_BUCKET is set. Credentials come
// from GANGSHEET_S3_ACCESS_KEY_ID / GANGSHEET_S3_SECRET_ACCESS_KEY when set
// and from the default AWS credential chain otherwise.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/matzehuels/gangsheet/pkg/errors"
)

// Config describes an S3 destination.
type Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string // custom endpoint for R2/MinIO; empty for AWS
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string // base URL objects are served from, if any
}

// ConfigFromEnv reads GANGSHEET_S3_* variables.
func ConfigFromEnv() Config {
	return Config{
		Bucket:          os.Getenv("GANGSHEET_S3_BUCKET"),
		Prefix:          os.Getenv("GANGSHEET_S3_PREFIX"),
		Region:          envOr("GANGSHEET_S3_REGION", "auto"),
		Endpoint:        os.Getenv("GANGSHEET_S3_ENDPOINT"),
		AccessKeyID:     os.Getenv("GANGSHEET_S3_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("GANGSHEET_S3_SECRET_ACCESS_KEY"),
		PublicURL:       os.Getenv("GANGSHEET_S3_PUBLIC_URL"),
	}
}

// Configured reports whether a bucket is set.
func (c Config) Configured() bool { return c.Bucket != "" }

// WithURL returns a copy of c pointing at an s3://bucket/prefix URL.
func (c Config) WithURL(raw string) (Config, error) {
	if err := errors.ValidatePublishURL(raw); err != nil {
		return c, err
	}
	rest := strings.TrimPrefix(raw, "s3://")
	bucket, prefix, _ := strings.Cut(rest, "/")
	c.Bucket = bucket
	c.Prefix = strings.Trim(prefix, "/")
	return c, nil
}

// Object describes an uploaded archive.
type Object struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Size   int64  `json:"size"`
	URL    string `json:"url,omitempty"`
}

// putter is the subset of *s3.Client used here.
type putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 uploads archives to one bucket.
type S3 struct {
	client putter
	cfg    Config
}

// NewS3 builds an S3 client from cfg.
func NewS3(ctx context.Context, cfg Config) (*S3, error) {
	if !cfg.Configured() {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "s3 bucket not configured")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3{client: client, cfg: cfg}, nil
}

// Key returns the object key for an archive name under the configured prefix.
func (s *S3) Key(name string) string {
	if s.cfg.Prefix == "" {
		return name
	}
	return path.Join(s.cfg.Prefix, name)
}

// Publish uploads size bytes from r as name (e.g. "montage-<run>.zip").
func (s *S3) Publish(ctx context.Context, name string, r io.Reader, size int64) (*Object, error) {
	key := s.Key(name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentType:   aws.String(contentType(name)),
		ContentLength: aws.Int64(size),
		Metadata: map[string]string{
			"generated-at": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload s3://%s/%s: %w", s.cfg.Bucket, key, err)
	}
	return &Object{Bucket: s.cfg.Bucket, Key: key, Size: size, URL: s.publicURL(key)}, nil
}

func (s *S3) publicURL(key string) string {
	if s.cfg.PublicURL == "" {
		return ""
	}
	return strings.TrimSuffix(s.cfg.PublicURL, "/") + "/" + key
}

func contentType(name string) string {
	switch path.Ext(name) {
	case ".zip":
		return "application/zip"
	case ".png":
		return "image/png"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
