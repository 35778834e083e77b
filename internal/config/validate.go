package config

import (
	"fmt"

	"github.com/spf13/afero"
)

// Validate reports every problem with c. An empty result means the
// configuration is usable. Credentials are not required in dry-run mode.
func (c *Config) Validate(fs afero.Fs) []error {
	var errs []error
	required := func(value, name string) {
		if value == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
		}
	}

	if !c.DryRun {
		switch c.Backend {
		case BackendS3:
			required(c.S3AccessKeyID, "S3 access key id")
			required(c.S3SecretAccessKey, "S3 secret access key")
			if c.S3BaseEndpoint == "" {
				errs = append(errs, fmt.Errorf("S3 endpoint or account id is required"))
			}
		case BackendR2API:
			required(c.APIToken, "API token")
			required(c.AccountID, "account id")
		default:
			errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Backend))
		}
	}

	required(c.Bucket, "bucket name")
	required(c.PublicURL, "public URL")

	switch c.LedgerBackend {
	case LedgerJSON, LedgerSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown ledger backend %q", c.LedgerBackend))
	}

	if c.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("batch size must be positive, got %d", c.BatchSize))
	}
	if c.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("max retries must be positive, got %d", c.MaxRetries))
	}
	if c.RetryBaseDelay < 0 {
		errs = append(errs, fmt.Errorf("retry delay must not be negative"))
	}
	if c.UploadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("upload timeout must be positive"))
	}

	if c.FilesDir == "" {
		errs = append(errs, fmt.Errorf("files folder is required"))
	} else if ok, _ := afero.DirExists(fs, c.FilesDir); !ok {
		errs = append(errs, fmt.Errorf("files folder not found: %s", c.FilesDir))
	}

	if c.RoamJSON == "" {
		errs = append(errs, fmt.Errorf("roam JSON file is required"))
	} else if ok, _ := afero.Exists(fs, c.RoamJSON); !ok {
		errs = append(errs, fmt.Errorf("roam JSON file not found: %s", c.RoamJSON))
	}

	return errs
}
