// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/pdiddy/docgraph/pkg/types"
)

// ObjectGetter is the part of the S3 client the loader uses.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewS3Client builds an S3 client from the default AWS configuration
// (environment, shared config, instance role). A custom endpoint switches to
// path-style addressing for S3-compatible stores such as MinIO.
func NewS3Client(ctx context.Context, cfg types.SourceConfig) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, config.WithRegion(cfg.S3Region))
	}
	if cfg.S3Endpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(cfg.S3Endpoint))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3Endpoint != ""
	}), nil
}

func getObject(ctx context.Context, client ObjectGetter, bucket, key string) (io.ReadCloser, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		var noBucket *s3types.NoSuchBucket
		if errors.As(err, &noKey) || errors.As(err, &noBucket) {
			return nil, sourceFailure("s3://%s/%s: %w", bucket, key, err)
		}
		return nil, &types.ExtractionFailure{
			Kind:      types.FailureNetwork,
			Retryable: true,
			Err:       fmt.Errorf("fetching s3://%s/%s: %w", bucket, key, err),
		}
	}
	return out.Body, nil
}
