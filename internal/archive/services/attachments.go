package services

import (
	"context"
	"fmt"
	"time"

	sc "github.com/ticketvault/ticketvault/internal/archive/config"
	"github.com/ticketvault/ticketvault/internal/archive/event"
	"github.com/ticketvault/ticketvault/internal/netx"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// AttachmentStore mirrors attachment payloads into S3-compatible object
// storage and issues presigned URLs for export tooling. The archive core
// never depends on it; the encrypted payload keeps the original attachment
// descriptors either way.
type AttachmentStore struct {
	config *sc.Config
}

func NewAttachmentStore(config *sc.Config) *AttachmentStore {
	return &AttachmentStore{config: config}
}

// StorageKey builds a fresh object key under the ticket's prefix.
func StorageKey(ticketID string) string {
	return fmt.Sprintf("tickets/%s/%v", ticketID, uuid.New())
}

func (s *AttachmentStore) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// PresignPut returns a fresh storage key and a presigned PUT URL for it.
func (s *AttachmentStore) PresignPut(ctx context.Context, ticketID string) (string, string, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := StorageKey(ticketID)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.expiry()))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// PresignGet returns a presigned GET URL for an existing storage key.
func (s *AttachmentStore) PresignGet(ctx context.Context, key string) (string, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.expiry()))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

// Mirror pulls the attachment body off the platform CDN and uploads it under
// a new storage key, which it returns.
func (s *AttachmentStore) Mirror(ctx context.Context, ticketID string, att event.Attachment) (string, error) {
	body, err := netx.FetchBody(ctx, att.URL)
	if err != nil {
		return "", fmt.Errorf("fetch attachment %s: %w", att.ID, err)
	}

	key, url, err := s.PresignPut(ctx, ticketID)
	if err != nil {
		return "", fmt.Errorf("presign put: %w", err)
	}

	if err := netx.UploadPresigned(ctx, url, body); err != nil {
		return "", fmt.Errorf("upload attachment %s: %w", att.ID, err)
	}

	return key, nil
}

func (s *AttachmentStore) expiry() time.Duration {
	if s.config.PresignExpiry > 0 {
		return s.config.PresignExpiry
	}
	return 15 * time.Minute
}
