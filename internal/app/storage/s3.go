package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"beacon/internal/configs"
	"beacon/internal/pkg/logx"
)

// s3Store implements AvatarStore against S3-compatible object storage.
type s3Store struct {
	bucket   string
	baseURL  string
	client   *s3.Client
	uploader *manager.Uploader
}

// newS3Store initializes the S3 client using a custom configuration that
// supports S3-compatible endpoints.
func newS3Store(cfg *configs.AppConfig) (*s3Store, error) {
	sdkCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		)),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		logx.Error(err, "Failed to load AWS SDK config")
		return nil, errors.New("failed to initialize S3 client configuration")
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		o.UsePathStyle = true
	})

	return &s3Store{
		bucket:   cfg.S3BucketName,
		baseURL:  cfg.AvatarBaseURL,
		client:   client,
		uploader: manager.NewUploader(client),
	}, nil
}

// Save uploads the avatar under avatars/<username><ext>, overwriting any
// previous object for the same user.
func (s *s3Store) Save(ctx context.Context, username string, data []byte, mimeType string) (string, error) {
	ext, ok := MIMEToExt[mimeType]
	if !ok {
		return "", fmt.Errorf("unsupported avatar MIME type %q", mimeType)
	}

	key := "avatars/" + username + ext

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mimeType),
	})

	if err != nil {
		logx.Error(err, "S3 avatar upload failed", "key", key)
		return "", errors.New("failed to upload avatar to S3")
	}

	return s.baseURL + "/" + username + ext, nil
}
