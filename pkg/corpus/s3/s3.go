// Package s3 resolves node text from an S3-compatible object store. Bulk
// ingest archives land in S3 before being normalized into PostgreSQL, so a
// deployment can serve chunk text straight from the bucket instead of the
// document_chunks table.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/geoffsee/proseva-sub005/internal/util"
	"github.com/geoffsee/proseva-sub005/pkg/common"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func NewS3Client(ctx context.Context) *s3.Client {
	region := util.GetEnv("AWS_REGION")
	endpoint := util.GetEnv("AWS_ENDPOINT")
	accessKey := util.GetEnv("AWS_ACCESS_KEY")
	secretKey := util.GetEnv("AWS_SECRET_KEY")
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(region),
		config.WithBaseEndpoint(endpoint),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey,
			secretKey,
			"",
		)),
	)
	if err != nil {
		return nil
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return client
}

// TextResolver resolves node text from objects laid out as
// <prefix>/<source>/<source_id>.txt. Fetches are retried because object
// stores fronting ingest archives are routinely eventually consistent.
type TextResolver struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewTextResolver creates a resolver reading from the given bucket. prefix
// may be empty.
func NewTextResolver(client *s3.Client, bucket, prefix string) *TextResolver {
	return &TextResolver{client: client, bucket: bucket, prefix: prefix}
}

// ResolveText fetches the object for the node and returns its contents. A
// missing object resolves to an empty string with a nil error.
func (r *TextResolver) ResolveText(ctx context.Context, node common.Node) (string, error) {
	key := r.objectKey(node)

	data, err := util.RetryWithContext(ctx, 3, func(ctx context.Context) ([]byte, error) {
		return r.getObject(ctx, key)
	})
	if err != nil {
		if isNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to fetch %s: %w", key, err)
	}
	return string(data), nil
}

func (r *TextResolver) objectKey(node common.Node) string {
	if r.prefix == "" {
		return fmt.Sprintf("%s/%s.txt", node.Source, node.SourceID)
	}
	return fmt.Sprintf("%s/%s/%s.txt", r.prefix, node.Source, node.SourceID)
}

func (r *TextResolver) getObject(ctx context.Context, key string) ([]byte, error) {
	result, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer result.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, result.Body); err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return buf.Bytes(), nil
}

func isNotFound(err error) bool {
	var apiErr interface{ ErrorCode() string }
	if !errors.As(err, &apiErr) {
		return false
	}
	code := apiErr.ErrorCode()
	return code == "NoSuchKey" || code == "NotFound"
}
