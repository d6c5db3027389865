package export

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const defaultS3Region = "us-east-1"

// S3Options configures an S3Sink.
type S3Options struct {
	Bucket   string
	Prefix   string
	Endpoint string
	Region   string
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads reports to an S3-compatible bucket.
type S3Sink struct {
	client objectPutter
	bucket string
	prefix string
}

// NewS3Sink builds a client from the default AWS chain. S3_ACCESS_KEY and
// S3_SECRET_KEY override the chain for S3-compatible endpoints.
func NewS3Sink(ctx context.Context, opts S3Options) (*S3Sink, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is empty")
	}
	region := opts.Region
	if region == "" {
		region = defaultS3Region
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	accessKey := os.Getenv("S3_ACCESS_KEY")
	secretKey := os.Getenv("S3_SECRET_KEY")
	if accessKey != "" && secretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     accessKey,
				SecretAccessKey: secretKey,
			}, nil
		})))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Sink{client: client, bucket: opts.Bucket, prefix: opts.Prefix}, nil
}

// Key returns the object key for name.
func (s *S3Sink) Key(name string) string {
	prefix := strings.Trim(s.prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// Write uploads content and returns its s3:// location.
func (s *S3Sink) Write(ctx context.Context, name string, content string) (string, error) {
	key := s.Key(name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(content),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload export: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
