package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dmitrijs2005/ledgervault/internal/common"
	"github.com/dmitrijs2005/ledgervault/internal/cryptox"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	// Seams for testing without a live backend.
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		return c.GetObject(ctx, in)
	}
)

// S3Config holds the settings needed to reach an S3-compatible backend
// (AWS S3, MinIO, etc.).
type S3Config struct {
	RootUser     string
	RootPassword string
	Bucket       string
	Region       string
	BaseEndpoint string
}

// S3Store implements Store on top of an S3-compatible backend. Object
// keys are derived from the SHA-256 of the stored bytes, so the returned
// locator is a function of the content itself.
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store builds an S3-backed Store from the given settings.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.RootUser,
			cfg.RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

// storageKey derives the object key for the given bytes. The digest of
// the content is the address.
func storageKey(data []byte) string {
	return fmt.Sprintf("blobs/%s", cryptox.Digest(data))
}

// Put writes data under its content-derived key and returns the key as
// the locator.
func (s *S3Store) Put(ctx context.Context, data []byte) (string, error) {
	key := storageKey(data)

	_, err := putObject(s.client, ctx, &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("%w: put %s: %v", common.ErrStoreUnavailable, key, err)
	}

	return key, nil
}

// Get opens a stream over the blob stored under locator.
func (s *S3Store) Get(ctx context.Context, locator string) (io.ReadCloser, error) {
	out, err := getObject(s.client, ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &locator,
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("%w: blob %s", common.ErrNotFound, locator)
		}
		return nil, fmt.Errorf("%w: get %s: %v", common.ErrStoreUnavailable, locator, err)
	}

	return out.Body, nil
}

func isNoSuchKey(err error) bool {
	var noSuchKey *types.NoSuchKey
	return errors.As(err, &noSuchKey)
}
