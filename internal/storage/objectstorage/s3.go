package objectstorage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"elite_blog/internal/domain/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	PathStyle       bool
}

type S3Storage struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

var (
	_ Storage       = (*S3Storage)(nil)
	_ HealthChecker = (*S3Storage)(nil)
)

func NewS3(cfg S3Config) (*S3Storage, error) {
	const op = "storage.objectstorage.NewS3"

	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%s: bucket is required", op)
	}

	awsCfg := aws.Config{
		Region: cfg.Region,
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	} else {
		awsCfg.Credentials = aws.AnonymousCredentials{}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
		// S3-compatible providers reject the default streaming checksums.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	return &S3Storage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicBaseURL(cfg),
	}, nil
}

func publicBaseURL(cfg S3Config) string {
	switch {
	case cfg.PublicBaseURL != "":
		return cfg.PublicBaseURL
	case cfg.Endpoint != "":
		return JoinURL(cfg.Endpoint, cfg.Bucket)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

func (s *S3Storage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	const op = "storage.objectstorage.S3Storage.Put"

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, describe(err))
	}

	return nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	const op = "storage.objectstorage.S3Storage.Delete"

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, describe(err))
	}

	return nil
}

func (s *S3Storage) List(ctx context.Context, prefix string) ([]models.StoredObject, error) {
	const op = "storage.objectstorage.S3Storage.List"

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	var objects []models.StoredObject
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, describe(err))
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			objects = append(objects, models.StoredObject{
				Key:          key,
				URL:          s.PublicURL(key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}

	return objects, nil
}

func (s *S3Storage) PublicURL(key string) string {
	return JoinURL(s.publicURL, key)
}

// HealthCheck verifies the bucket is reachable with the configured credentials.
func (s *S3Storage) HealthCheck(ctx context.Context) error {
	const op = "storage.objectstorage.S3Storage.HealthCheck"

	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("%s: %w", op, describe(err))
	}

	return nil
}

// describe prefixes API errors with their service error code.
func describe(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", apiErr.ErrorCode(), err)
	}

	return err
}
