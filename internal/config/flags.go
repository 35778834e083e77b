package config

import (
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/dmitrijs2005/roammigrate/internal/flagx"
)

var valueFlags = []string{
	"-backend", "-token", "-account", "-access-key", "-secret-key", "-region", "-endpoint",
	"-bucket", "-url", "-files", "-json", "-output", "-progress", "-ledger",
	"-batch-size", "-max-retries", "-retry-delay", "-timeout", "-log-level",
}

var boolFlags = []string{"-no-clean", "-use-hash", "-dry-run", "-h", "-help"}

// configFlags are parsed by flagx.JsonConfigFlags.
var configFlags = []string{"-c", "-config"}

// parseFlags overlays cfg with command-line flags.
//
// Supported flags:
//
//	-backend string      storage backend: s3 | r2api
//	-token string        Cloudflare API token with R2 permissions ("-" prompts)
//	-account string      Cloudflare account ID
//	-access-key string   S3 access key id ("-" prompts)
//	-secret-key string   S3 secret access key ("-" prompts)
//	-region string       S3 region
//	-endpoint string     S3 base endpoint
//	-bucket string       bucket name
//	-url string          public URL of the bucket
//	-files string        "Files and images" folder of the Roam export
//	-json string         exported Roam JSON file
//	-output string       output path for the updated JSON
//	-progress string     progress ledger path
//	-ledger string       ledger backend: json | sqlite
//	-no-clean            keep spaces and special characters in object names
//	-use-hash            use hash-based object names for privacy
//	-batch-size int      files to process between progress saves
//	-max-retries int     upload attempts per file
//	-retry-delay dur     base delay of the exponential backoff
//	-timeout dur         timeout of one upload attempt
//	-dry-run             upload into memory, still write the output JSON
//	-log-level string    debug | info | warn | error
//
// Both "-flag" and "--flag" are accepted. Only the flags above are taken
// from os.Args (see flagx.FilterArgs), so -c/-config is left to parseJson.
// Any other flag is an error.
func parseFlags(cfg *Config) error {
	if unknown := flagx.UnknownFlags(os.Args[1:], slices.Concat(valueFlags, configFlags), boolFlags...); len(unknown) > 0 {
		return fmt.Errorf("unknown flag(s): %s", strings.Join(unknown, ", "))
	}
	args := flagx.FilterArgs(os.Args[1:], valueFlags, boolFlags...)

	fs := flag.NewFlagSet("roammigrate", flag.ContinueOnError)

	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "storage backend: s3 | r2api")
	fs.StringVar(&cfg.APIToken, "token", cfg.APIToken, "Cloudflare API token with R2 permissions (\"-\" to prompt)")
	fs.StringVar(&cfg.AccountID, "account", cfg.AccountID, "Cloudflare account ID")
	fs.StringVar(&cfg.S3AccessKeyID, "access-key", cfg.S3AccessKeyID, "S3 access key id (\"-\" to prompt)")
	fs.StringVar(&cfg.S3SecretAccessKey, "secret-key", cfg.S3SecretAccessKey, "S3 secret access key (\"-\" to prompt)")
	fs.StringVar(&cfg.S3Region, "region", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "endpoint", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&cfg.Bucket, "bucket", cfg.Bucket, "bucket name")
	fs.StringVar(&cfg.PublicURL, "url", cfg.PublicURL, "public URL of the bucket")
	fs.StringVar(&cfg.FilesDir, "files", cfg.FilesDir, "path to the \"Files and images\" folder of the Roam export")
	fs.StringVar(&cfg.RoamJSON, "json", cfg.RoamJSON, "path to the exported Roam JSON file")
	fs.StringVar(&cfg.OutputJSON, "output", cfg.OutputJSON, "output path for the updated JSON (default: <json>_migrated.json)")
	fs.StringVar(&cfg.ProgressFile, "progress", cfg.ProgressFile, "progress file path (default: next to the JSON)")
	fs.StringVar(&cfg.LedgerBackend, "ledger", cfg.LedgerBackend, "progress ledger backend: json | sqlite")

	noClean := fs.Bool("no-clean", !cfg.CleanFilenames, "do not clean filenames (keep spaces and special chars)")
	useHash := fs.Bool("use-hash", !cfg.KeepOriginalNames, "use hash-based filenames for privacy")

	fs.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "files to process before saving progress")
	fs.IntVar(&cfg.MaxRetries, "max-retries", cfg.MaxRetries, "maximum upload attempts per file")
	fs.DurationVar(&cfg.RetryBaseDelay, "retry-delay", cfg.RetryBaseDelay, "base delay of the exponential backoff")
	fs.DurationVar(&cfg.UploadTimeout, "timeout", cfg.UploadTimeout, "timeout of a single upload attempt")
	fs.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "upload into memory instead of the bucket")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug | info | warn | error")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.CleanFilenames = !*noClean
	cfg.KeepOriginalNames = !*useHash
	return nil
}
