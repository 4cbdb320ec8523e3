package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

// S3Store uploads images to a bucket that serves them publicly through a
// bucket policy. Credentials come from the default AWS chain.
type S3Store struct {
	bucket   string
	region   string
	uploader s3manageriface.UploaderAPI
	maxBytes int64
}

func NewS3Store(region, bucket string, maxBytes int64) (*S3Store, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return NewS3StoreWithUploader(s3manager.NewUploader(sess), region, bucket, maxBytes), nil
}

func NewS3StoreWithUploader(uploader s3manageriface.UploaderAPI, region, bucket string, maxBytes int64) *S3Store {
	return &S3Store{bucket: bucket, region: region, uploader: uploader, maxBytes: maxBytes}
}

func (s *S3Store) Save(ctx context.Context, kind Kind, file *multipart.FileHeader) (string, error) {
	up, err := readImage(kind, file, s.maxBytes)
	if err != nil {
		return "", err
	}
	key := string(kind) + "/" + up.name
	_, err = s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(up.body),
		ContentType: aws.String(up.contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}
