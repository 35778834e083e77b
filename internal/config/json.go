package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/roammigrate/internal/flagx"
	"github.com/dmitrijs2005/roammigrate/internal/timex"
)

// JsonConfig is a DTO used only for JSON unmarshalling. Pointer fields tell
// "absent" apart from a zero value, so a partial file only overrides the
// keys it names.
type JsonConfig struct {
	Backend           *string         `json:"backend"`
	APIToken          *string         `json:"api_token"`
	AccountID         *string         `json:"account_id"`
	S3AccessKeyID     *string         `json:"s3_access_key_id"`
	S3SecretAccessKey *string         `json:"s3_secret_access_key"`
	S3Region          *string         `json:"s3_region"`
	S3BaseEndpoint    *string         `json:"s3_base_endpoint"`
	Bucket            *string         `json:"bucket"`
	PublicURL         *string         `json:"public_url"`
	FilesDir          *string         `json:"files_dir"`
	RoamJSON          *string         `json:"roam_json"`
	OutputJSON        *string         `json:"output_json"`
	ProgressFile      *string         `json:"progress_file"`
	LedgerBackend     *string         `json:"ledger_backend"`
	KeepOriginalNames *bool           `json:"keep_original_names"`
	CleanFilenames    *bool           `json:"clean_filenames"`
	BatchSize         *int            `json:"batch_size"`
	MaxRetries        *int            `json:"max_retries"`
	RetryBaseDelay    *timex.Duration `json:"retry_base_delay"`
	UploadTimeout     *timex.Duration `json:"upload_timeout"`
	DryRun            *bool           `json:"dry_run"`
	LogLevel          *string         `json:"log_level"`
}

// parseJson overlays cfg with the JSON file named by -c/-config.
// Without the flag it does nothing.
func parseJson(cfg *Config) error {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	jc.apply(cfg)
	return nil
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.Backend, jc.Backend)
	setString(&cfg.APIToken, jc.APIToken)
	setString(&cfg.AccountID, jc.AccountID)
	setString(&cfg.S3AccessKeyID, jc.S3AccessKeyID)
	setString(&cfg.S3SecretAccessKey, jc.S3SecretAccessKey)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setString(&cfg.Bucket, jc.Bucket)
	setString(&cfg.PublicURL, jc.PublicURL)
	setString(&cfg.FilesDir, jc.FilesDir)
	setString(&cfg.RoamJSON, jc.RoamJSON)
	setString(&cfg.OutputJSON, jc.OutputJSON)
	setString(&cfg.ProgressFile, jc.ProgressFile)
	setString(&cfg.LedgerBackend, jc.LedgerBackend)
	setString(&cfg.LogLevel, jc.LogLevel)

	if jc.KeepOriginalNames != nil {
		cfg.KeepOriginalNames = *jc.KeepOriginalNames
	}
	if jc.CleanFilenames != nil {
		cfg.CleanFilenames = *jc.CleanFilenames
	}
	if jc.DryRun != nil {
		cfg.DryRun = *jc.DryRun
	}
	if jc.BatchSize != nil {
		cfg.BatchSize = *jc.BatchSize
	}
	if jc.MaxRetries != nil {
		cfg.MaxRetries = *jc.MaxRetries
	}
	if jc.RetryBaseDelay != nil {
		cfg.RetryBaseDelay = jc.RetryBaseDelay.Duration
	}
	if jc.UploadTimeout != nil {
		cfg.UploadTimeout = jc.UploadTimeout.Duration
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
