// Package media implements the image uploader against S3-compatible object
// storage (AWS S3, MinIO).
package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/momocakes/commerce-api/internal/core/ports"
)

// Config captures the object-storage settings.
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// PublicBaseURL is the prefix of publicly served object URLs. When empty,
	// <endpoint>/<bucket> is used.
	PublicBaseURL string
}

// S3Uploader stores images in a bucket and serves them by public URL.
type S3Uploader struct {
	client *s3.Client
	cfg    Config
}

var _ ports.ImageUploader = (*S3Uploader)(nil)

// NewS3Uploader builds the S3 client with static credentials and an optional
// custom endpoint.
func NewS3Uploader(ctx context.Context, cfg Config) (*S3Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{client: client, cfg: cfg}, nil
}

// Upload stores data under <folder>/<uuid>.<ext> and returns the public URL
// plus the key needed to delete the object later.
func (u *S3Uploader) Upload(ctx context.Context, data []byte, contentType, folder string) (*ports.UploadResult, error) {
	key := objectKey(folder, contentType)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}

	return &ports.UploadResult{URL: u.publicURL(key), Key: key}, nil
}

// Delete removes a previously uploaded object.
func (u *S3Uploader) Delete(ctx context.Context, key string) error {
	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (u *S3Uploader) publicURL(key string) string {
	if u.cfg.PublicBaseURL != "" {
		return strings.TrimSuffix(u.cfg.PublicBaseURL, "/") + "/" + key
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(u.cfg.Endpoint, "/"), u.cfg.Bucket, key)
}

func objectKey(folder, contentType string) string {
	ext := "bin"
	switch contentType {
	case "image/jpeg", "image/jpg":
		ext = "jpg"
	case "image/png":
		ext = "png"
	case "image/webp":
		ext = "webp"
	}
	return fmt.Sprintf("%s/%s.%s", strings.Trim(folder, "/"), uuid.New(), ext)
}
