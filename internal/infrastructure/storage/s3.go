package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store uploads pictures to Amazon S3 or an S3-compatible endpoint.
type S3Store struct {
	uploader  *manager.Uploader
	Bucket    string
	Prefix    string
	PublicURL string // e.g. https://cdn.example.com; defaults to the upload location
}

func NewS3Store(client *s3.Client, bucket, prefix, publicURL string) *S3Store {
	return &S3Store{
		uploader:  manager.NewUploader(client),
		Bucket:    bucket,
		Prefix:    prefix,
		PublicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

func (s *S3Store) Save(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	if s.Bucket == "" {
		return "", errors.New("s3 bucket is required")
	}
	objectKey := path.Join(s.Prefix, key)
	out, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(objectKey),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectKey, err)
	}
	if s.PublicURL != "" {
		return s.PublicURL + "/" + objectKey, nil
	}
	return out.Location, nil
}
