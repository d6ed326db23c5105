package cloud

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DocumentTTL is how long a presigned quotation document link stays valid.
const DocumentTTL = time.Hour

// S3API is the subset of the S3 client used to store documents.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archive keeps rendered quotation documents in a bucket.
type S3Archive struct {
	svc     S3API
	presign *s3.PresignClient
	bucket  string
}

func NewS3Client(cfg aws.Config) *s3.Client {
	return s3.NewFromConfig(cfg)
}

func NewS3Archive(cfg aws.Config, bucket string) *S3Archive {
	client := NewS3Client(cfg)
	return &S3Archive{
		svc:     client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
	}
}

// QuotationKey is the object key for a partner's quotation document.
func QuotationKey(partnerID, quotationID string) string {
	return fmt.Sprintf("quotations/%s/%s.json", partnerID, quotationID)
}

// Put uploads a document under key.
func (c *S3Archive) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := c.svc.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"uploaded-at": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

// URL returns a presigned GET link for key.
func (c *S3Archive) URL(ctx context.Context, key string) (string, error) {
	res, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = DocumentTTL
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return res.URL, nil
}
