package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Storage backends.
const (
	BackendS3    = "s3"
	BackendR2API = "r2api"
)

// Ledger backends.
const (
	LedgerJSON   = "json"
	LedgerSQLite = "sqlite"
)

// Config holds runtime settings for a migration run.
//
// Fields:
//   - Backend: "s3" (any S3-compatible endpoint, R2 included) or "r2api"
//     (Cloudflare REST API with a bearer token).
//   - APIToken / AccountID: Cloudflare credentials. AccountID also derives
//     the R2 S3 endpoint when S3BaseEndpoint is empty.
//   - S3AccessKeyID / S3SecretAccessKey / S3Region / S3BaseEndpoint: S3 settings.
//   - Bucket / PublicURL: target bucket and its public base URL.
//   - FilesDir / RoamJSON / OutputJSON / ProgressFile: input and output paths.
//   - LedgerBackend: "json" or "sqlite" progress ledger.
//   - KeepOriginalNames / CleanFilenames: object naming policy.
//   - BatchSize: files between ledger checkpoints.
//   - MaxRetries / RetryBaseDelay / UploadTimeout: upload attempt policy.
//   - DryRun: upload into memory instead of a real bucket.
type Config struct {
	Backend           string
	APIToken          string
	AccountID         string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	S3BaseEndpoint    string
	Bucket            string
	PublicURL         string
	FilesDir          string
	RoamJSON          string
	OutputJSON        string
	ProgressFile      string
	LedgerBackend     string
	KeepOriginalNames bool
	CleanFilenames    bool
	BatchSize         int
	MaxRetries        int
	RetryBaseDelay    time.Duration
	UploadTimeout     time.Duration
	DryRun            bool
	LogLevel          string
}

// LoadDefaults populates c with the defaults of the original migration script.
func (c *Config) LoadDefaults() {
	c.Backend = BackendS3
	c.S3Region = "auto"
	c.LedgerBackend = LedgerJSON
	c.KeepOriginalNames = true
	c.CleanFilenames = true
	c.BatchSize = 50
	c.MaxRetries = 3
	c.RetryBaseDelay = 1 * time.Second
	c.UploadTimeout = 60 * time.Second
	c.LogLevel = "info"
}

// LoadConfig builds a Config from defaults, the optional JSON file and
// command-line flags, then fills in derived values.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg); err != nil {
		return nil, fmt.Errorf("json config: %w", err)
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	cfg.applyDerived()
	return cfg, nil
}

// applyDerived fills values that depend on other settings.
func (c *Config) applyDerived() {
	c.PublicURL = strings.TrimRight(c.PublicURL, "/")

	if c.RoamJSON != "" {
		dir := filepath.Dir(c.RoamJSON)
		if c.OutputJSON == "" {
			stem := strings.TrimSuffix(filepath.Base(c.RoamJSON), filepath.Ext(c.RoamJSON))
			c.OutputJSON = filepath.Join(dir, stem+"_migrated.json")
		}
		if c.ProgressFile == "" {
			name := "migration_progress.json"
			if c.LedgerBackend == LedgerSQLite {
				name = "migration_progress.db"
			}
			c.ProgressFile = filepath.Join(dir, name)
		}
	}

	if c.Backend == BackendS3 && c.S3BaseEndpoint == "" && c.AccountID != "" {
		c.S3BaseEndpoint = R2Endpoint(c.AccountID)
	}
}

// R2Endpoint returns the S3-compatible endpoint of a Cloudflare account.
func R2Endpoint(accountID string) string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
}
