package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/townbook-za/townbook/internal/config"
)

// Uploader stores media objects (business logos) in S3-compatible storage.
type Uploader struct {
	client *s3.Client
	cfg    config.S3Config
}

func NewUploader(cfg config.S3Config) *Uploader {
	client := s3.New(s3.Options{
		Region: cfg.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
		BaseEndpoint: endpointOrNil(cfg.Endpoint),
		UsePathStyle: cfg.Endpoint != "",
	})

	return &Uploader{client: client, cfg: cfg}
}

func endpointOrNil(endpoint string) *string {
	if endpoint == "" {
		return nil
	}
	return aws.String(endpoint)
}

// UploadLogo stores a webp-encoded logo and returns its public URL.
func (u *Uploader) UploadLogo(ctx context.Context, businessID uint, data []byte) (string, error) {
	key := fmt.Sprintf("logos/%d/%s.webp", businessID, uuid.NewString())

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/webp"),
	})
	if err != nil {
		return "", err
	}

	return u.PublicURL(key), nil
}

func (u *Uploader) PublicURL(key string) string {
	if u.cfg.PublicURL != "" {
		return u.cfg.PublicURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.cfg.Bucket, u.cfg.Region, key)
}
