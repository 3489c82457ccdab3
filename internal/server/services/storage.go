package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/spacestar/internal/server/config"
	"github.com/dmitrijs2005/spacestar/internal/server/models"
	"github.com/google/uuid"
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
)

// ImageStorage hands out direct-upload targets for profile images.
type ImageStorage interface {
	PresignUpload(ctx context.Context, uuid string) (*models.UploadTarget, error)
}

// S3ImageStorage presigns PUT requests against an S3 compatible bucket.
type S3ImageStorage struct {
	config *sc.Config
}

func NewS3ImageStorage(cfg *sc.Config) *S3ImageStorage {
	return &S3ImageStorage{config: cfg}
}

// imageStorageKey places uploads under the owner identity and upload date.
func imageStorageKey(owner string, now time.Time) string {
	return fmt.Sprintf("profiles/%s/%d/%02d/%02d/%v", owner, now.Year(), now.Month(), now.Day(), uuid.New())
}

func (s *S3ImageStorage) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
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
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

func (s *S3ImageStorage) PresignUpload(ctx context.Context, owner string) (*models.UploadTarget, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating presign client: %w", err)
	}

	now := time.Now()
	bucket := s.config.S3Bucket
	key := imageStorageKey(owner, now)
	ttl := s.config.UploadURLValidityDuration

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return nil, fmt.Errorf("error presigning upload: %w", err)
	}

	return &models.UploadTarget{
		Key:       key,
		UploadURL: req.URL,
		ImageURL:  strings.TrimRight(s.config.S3PublicURL, "/") + "/" + key,
		ExpiresAt: now.Add(ttl),
	}, nil
}
