package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"recipe-api/internal/utils"
)

type (
	// AwsS3 is the single object-storage operation the mutation pipeline
	// needs: put an object with metadata under a caller-chosen key.
	AwsS3 interface {
		UploadFile(ctx context.Context, objectKey string, file []byte, contentType string, metadata map[string]string) (string, error)
		GetPublicLinkKey(objectKey string) string
		GetObjectKeyFromLink(link string) string
	}

	awsS3 struct {
		client           *s3.Client
		bucket           string
		cloudfrontDomain string
	}
)

func NewAwsS3(ctx context.Context, cfg *utils.Config) (AwsS3, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKey, cfg.AWSSecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return &awsS3{
		client:           s3.NewFromConfig(awsCfg),
		bucket:           cfg.AWSS3Bucket,
		cloudfrontDomain: strings.TrimSuffix(cfg.AWSCloudfrontDomain, "/"),
	}, nil
}

func (s *awsS3) UploadFile(ctx context.Context, objectKey string, file []byte, contentType string, metadata map[string]string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(contentType),
		Metadata:    metadata,
	})
	if err != nil {
		return "", fmt.Errorf("putting object %s: %w", objectKey, err)
	}
	return objectKey, nil
}

func (s *awsS3) GetPublicLinkKey(objectKey string) string {
	return s.cloudfrontDomain + "/" + objectKey
}

func (s *awsS3) GetObjectKeyFromLink(link string) string {
	return strings.TrimPrefix(link, s.cloudfrontDomain+"/")
}
