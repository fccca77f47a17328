package blob

import (
	"context"
	"fmt"
	"os"
)

// Open selects a Store implementation using environment variables.
//
//	CUECORE_BLOB_DRIVER:  fs|s3|memory (default fs)
//	CUECORE_BLOB_FS_ROOT: directory root when driver=fs (default ./journaldata)
//	(S3 variables documented in the infra s3 package)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("CUECORE_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(os.Getenv("CUECORE_BLOB_FS_ROOT"))
	case DriverS3:
		return OpenS3FromEnv(ctx)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
