package blob

import (
	"context"

	infras3 "cuecore/internal/infra/blob/s3"
)

// S3Config re-exports the infra S3 configuration for wiring within the
// internal tree.
type S3Config = infras3.Config

// NewS3 constructs an S3-backed Store from explicit configuration.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) {
	return infras3.New(ctx, cfg)
}

// OpenS3FromEnv constructs an S3-backed Store from process environment.
func OpenS3FromEnv(ctx context.Context) (Store, error) {
	return infras3.OpenFromEnv(ctx)
}
