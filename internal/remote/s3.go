package remote

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dkarpov/studysync/internal/common"
)

// S3Source fetches material blobs straight from an S3-compatible bucket,
// for deployments where the client has read access to the content bucket.
// Only the blob-fetching half of the remote surface; pair it with an
// HTTPSource via WithBlobFetcher.
type S3Source struct {
	client *s3.Client
	bucket string
}

// S3Config configures direct bucket access. Endpoint is optional and enables
// path-style addressing for MinIO-like services.
type S3Config struct {
	Bucket          string `json:"bucket"`
	Region          string `json:"region"`
	Endpoint        string `json:"endpoint"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
}

func NewS3Source(ctx context.Context, cfg S3Config) (*S3Source, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Source{client: client, bucket: cfg.Bucket}, nil
}

// FetchBlob treats ref as the object key inside the configured bucket.
func (s *S3Source) FetchBlob(ctx context.Context, ref string) ([]byte, string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, "", fmt.Errorf("object %s: %w", ref, common.ErrNotFound)
		}
		return nil, "", fmt.Errorf("failed to get object %s: %w", ref, errors.Join(common.ErrNetwork, err))
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read object %s: %w", ref, errors.Join(common.ErrNetwork, err))
	}
	return data, aws.ToString(out.ContentType), nil
}
