// utils/s3.go
package utils

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

var s3Client *s3.Client
var exportBucket string

// InitObjectStore configures the S3-compatible client used for standings
// exports (works against AWS S3 or Cloudflare R2). Returns false when no
// bucket is configured, in which case exports stay disabled.
func InitObjectStore() (bool, error) {
	exportBucket = os.Getenv("EXPORT_BUCKET_NAME")
	if exportBucket == "" {
		return false, nil
	}

	accessKeyID := os.Getenv("EXPORT_ACCESS_KEY_ID")
	accessKeySecret := os.Getenv("EXPORT_ACCESS_KEY_SECRET")
	endpoint := os.Getenv("EXPORT_S3_ENDPOINT") // empty → plain AWS
	region := os.Getenv("EXPORT_S3_REGION")
	if region == "" {
		region = "auto"
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if accessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, accessKeySecret, "",
		)))
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return false, fmt.Errorf("failed to load object store config: %w", err)
	}

	s3Client = s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return true, nil
}

// UploadObject puts a blob under key and returns the object URL.
func UploadObject(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if s3Client == nil {
		return "", fmt.Errorf("object store not initialized")
	}

	_, err := s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(exportBucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return fmt.Sprintf("s3://%s/%s", exportBucket, key), nil
}
