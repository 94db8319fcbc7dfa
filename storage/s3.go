package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ReportUploader pushes finished reports to an S3-compatible bucket.
type ReportUploader struct {
	client *s3.Client
	bucket string
}

// NewReportUploader creates an uploader for bucket. A non-empty endpoint
// targets an S3-compatible store (e.g. Cloudflare R2) with static
// credentials taken from LLM_BENCH_S3_ACCESS_KEY_ID and
// LLM_BENCH_S3_SECRET_ACCESS_KEY.
func NewReportUploader(ctx context.Context, bucket, region, endpoint string) (*ReportUploader, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}

	if endpoint != "" {
		accessKeyID := os.Getenv("LLM_BENCH_S3_ACCESS_KEY_ID")
		secretAccessKey := os.Getenv("LLM_BENCH_S3_SECRET_ACCESS_KEY")
		if accessKeyID == "" || secretAccessKey == "" {
			return nil, fmt.Errorf("S3 credentials not found in environment variables")
		}

		customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{URL: endpoint}, nil
		})
		opts = append(opts,
			config.WithEndpointResolverWithOptions(customResolver),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
		)
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &ReportUploader{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

// UploadReport uploads the JSON report bytes under key.
func (u *ReportUploader) UploadReport(ctx context.Context, key string, data []byte) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	}

	_, err := u.client.PutObject(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to upload report: %w", err)
	}

	return nil
}
