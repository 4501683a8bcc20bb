package main

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-faster/errors"
)

// bucketTarget is an S3 compatible destination such as AWS S3 or
// Cloudflare R2.
type bucketTarget struct {
	bucket    string
	key       string
	endpoint  string
	region    string
	accessKey string
	secretKey string
}

func newS3Client(ctx context.Context, t bucketTarget) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(t.region)}
	if t.accessKey != "" && t.secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(t.accessKey, t.secretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if t.endpoint != "" {
			o.BaseEndpoint = aws.String(t.endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// upload puts data under the target key.
func upload(ctx context.Context, t bucketTarget, data []byte, contentType string) error {
	client, err := newS3Client(ctx, t)
	if err != nil {
		return err
	}
	if _, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(t.bucket),
		Key:         aws.String(t.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}); err != nil {
		return errors.Wrapf(err, "put s3://%s/%s", t.bucket, t.key)
	}
	return nil
}
