package blob

import (
	"context"

	infraS3 "partpulse/internal/infra/blob/s3"
)

// S3Config configures the S3 driver.
type S3Config = infraS3.Config

// NewS3 constructs an S3-backed Store.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) {
	return infraS3.New(ctx, cfg)
}

// NewFakeS3 returns an S3 store talking to an in-process fake endpoint.
func NewFakeS3() Store { return infraS3.NewFake() }
