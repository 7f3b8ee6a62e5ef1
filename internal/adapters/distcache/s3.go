package distcache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/zerr"
)

// defaultS3Region is used when none is configured, as MinIO expects.
const defaultS3Region = "us-east-1"

// S3Blobs stores archives in an S3 compatible bucket.
type S3Blobs struct {
	client *s3.Client
	bucket string
}

// NewS3Blobs creates a client for the bucket of cfg. A custom endpoint uses path style addressing.
func NewS3Blobs(ctx context.Context, cfg domain.S3Config) (*S3Blobs, error) {
	if cfg.Bucket == "" {
		return nil, zerr.Wrap(errors.New("s3 bucket is required"), domain.ErrConfigInvalid.Error())
	}

	region := cfg.Region
	if region == "" {
		region = defaultS3Region
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load aws config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
		if cfg.Endpoint != "" {
			scheme := "http"
			if cfg.UseSSL {
				scheme = "https"
			}
			o.BaseEndpoint = aws.String(fmt.Sprintf("%s://%s", scheme, cfg.Endpoint))
			o.UsePathStyle = true
		}
	})
	return &S3Blobs{client: client, bucket: cfg.Bucket}, nil
}

// Exists reports whether key is stored.
func (b *S3Blobs) Exists(ctx context.Context, key string) (bool, error) {
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	switch {
	case err == nil:
		return true, nil
	case isNotFound(err):
		return false, nil
	default:
		return false, zerr.Wrap(err, "head object")
	}
}

// Get returns the content stored under key.
func (b *S3Blobs) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if isNotFound(err) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, zerr.Wrap(err, "get object")
	}
	return out.Body, nil
}

// Put stores data under key.
func (b *S3Blobs) Put(ctx context.Context, key string, data []byte) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("application/zstd"),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return zerr.Wrap(err, "put object")
	}
	return nil
}

// Close implements Blobs.
func (b *S3Blobs) Close() error {
	return nil
}

func isNotFound(err error) bool {
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}
