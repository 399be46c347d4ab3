package config

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Storage backend constants
const (
	StorageBackendLocal = "local"
	StorageBackendS3    = "s3"
)

// StorageConfig holds storage/persistence configuration
type StorageConfig struct {
	Backend   string `env:"STORAGE_BACKEND" yaml:"backend" default:"local"`      // "local" or "s3"
	LocalDir  string `env:"STORAGE_LOCAL_DIR" yaml:"local_dir" default:"./data"` // Base directory for local storage
	S3Bucket  string `env:"STORAGE_S3_BUCKET" yaml:"s3_bucket"`                  // S3 bucket name
	S3Prefix  string `env:"STORAGE_S3_PREFIX" yaml:"s3_prefix"`                  // S3 object key prefix (optional)
	S3Region  string `env:"STORAGE_S3_REGION" yaml:"s3_region"`                  // AWS region
	S3Profile string `env:"STORAGE_S3_PROFILE" yaml:"s3_profile"`                // AWS profile name (optional)
}

// Validate checks StorageConfig consistency
func (s StorageConfig) Validate() error {
	var result error
	switch s.Backend {
	case StorageBackendLocal:
		if s.LocalDir == "" {
			result = multierror.Append(result, fmt.Errorf("storage local_dir is required for local backend"))
		}
	case StorageBackendS3:
		if s.S3Bucket == "" {
			result = multierror.Append(result, fmt.Errorf("storage s3_bucket is required for s3 backend"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("storage backend must be %q or %q, got %q", StorageBackendLocal, StorageBackendS3, s.Backend))
	}
	return result
}
