package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dmitrijs2005/filevault/internal/common"
)

// s3API is the subset of the S3 client used by the blob store. The concrete
// *s3.Client satisfies it; tests substitute a fake.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// BlobStore keeps ciphertext bodies in an S3-compatible bucket, one object
// per blob under the "blobs/" prefix. The store never sees plaintext.
type BlobStore struct {
	client s3API
	bucket string
}

// NewBlobStore builds an S3 client for the configured endpoint. Static
// credentials and a forced path-style address keep it compatible with MinIO
// and other self-hosted S3 implementations.
func NewBlobStore(ctx context.Context, cfg Config) (*BlobStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,     // MINIO_ROOT_USER
			cfg.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &BlobStore{client: client, bucket: cfg.S3Bucket}, nil
}

func objectKey(id string) string {
	return path.Join("blobs", id)
}

func (b *BlobStore) Put(ctx context.Context, id string, data []byte) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(objectKey(id)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to put object: %v", common.ErrorBackend, err)
	}
	return nil
}

func (b *BlobStore) Get(ctx context.Context, id string) ([]byte, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey(id)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: failed to get object: %v", common.ErrorBackend, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read object body: %v", common.ErrorBackend, err)
	}
	return data, nil
}

// Delete removes the listed blobs with a single batch call. Keys that do
// not exist are deleted successfully as far as S3 is concerned, which keeps
// the operation retryable.
func (b *BlobStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	objects := make([]types.ObjectIdentifier, 0, len(ids))
	for _, id := range ids {
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(objectKey(id))})
	}

	out, err := b.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(b.bucket),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return fmt.Errorf("%w: failed to delete objects: %v", common.ErrorBackend, err)
	}
	if len(out.Errors) > 0 {
		first := out.Errors[0]
		return fmt.Errorf("%w: failed to delete object %s: %s",
			common.ErrorBackend, aws.ToString(first.Key), aws.ToString(first.Message))
	}
	return nil
}
