package resources

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"zazasite/internal/domain/config"
)

// Publisher uploads a generated artifact under a site-relative key.
type Publisher interface {
	Publish(ctx context.Context, key string, body []byte, contentType string) error
}

// S3Publisher writes to an S3 compatible bucket such as Cloudflare R2.
type S3Publisher struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3Publisher(ctx context.Context, cfg config.PublishConfig, secrets config.Secrets) (*S3Publisher, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("publish: missing bucket")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if secrets.R2AccessKey != "" && secrets.R2SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(secrets.R2AccessKey, secrets.R2SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("publish: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Publisher{client: client, bucket: cfg.Bucket, prefix: strings.Trim(cfg.Prefix, "/")}, nil
}

func (p *S3Publisher) Publish(ctx context.Context, key string, body []byte, contentType string) error {
	full := path.Join(p.prefix, strings.TrimPrefix(key, "/"))
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(full),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", full, err)
	}
	return nil
}
