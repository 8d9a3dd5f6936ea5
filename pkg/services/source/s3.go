package source

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/de-tools/resp-atlas/pkg/models/domain"
	"github.com/de-tools/resp-atlas/pkg/services/normalize"
)

const DefaultRegion = "us-east-1"

// ObjectGetter is the part of *s3.Client the source uses.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type s3Source struct {
	client ObjectGetter
	bucket string
	key    string
	format string
}

func NewS3(client ObjectGetter, bucket, key, format string) Source {
	return &s3Source{
		client: client,
		bucket: bucket,
		key:    key,
		format: DetectFormat(format, key),
	}
}

// LoadS3Client builds a client from the shared AWS config, optionally
// pinned to a named profile.
func LoadS3Client(ctx context.Context, profile, region string) (*s3.Client, error) {
	if region == "" {
		region = DefaultRegion
	}

	opts := []func(*config.LoadOptions) error{config.WithDefaultRegion(region)}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return s3.NewFromConfig(awsCfg), nil
}

func (s *s3Source) Fetch(ctx context.Context) ([]domain.Row, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	data, err := readLimited(out.Body, maxBodyBytes)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return normalize.Parse(s.format, data)
}
