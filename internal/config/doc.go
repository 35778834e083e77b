// Package config loads and validates runtime configuration for roammigrate.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config (see parseJson).
//  3. Command-line flags (see parseFlags), which override earlier values.
//  4. Derived values: output and progress paths next to the input JSON,
//     the R2 S3 endpoint from the account id (see (*Config).applyDerived).
//
// # JSON schema
//
// Durations use timex.Duration, so "1s" and integer nanoseconds both work.
// Absent keys leave the previous value untouched:
//
//	{
//	  "backend": "s3",
//	  "account_id": "0123abcd",
//	  "s3_access_key_id": "...",
//	  "s3_secret_access_key": "...",
//	  "bucket": "roam-media",
//	  "public_url": "https://pub-xyz.r2.dev",
//	  "files_dir": "./export/Files and images",
//	  "roam_json": "./export/backup.json",
//	  "batch_size": 50,
//	  "max_retries": 3,
//	  "retry_base_delay": "1s",
//	  "upload_timeout": "60s"
//	}
//
// Secrets given as "-" are read from the terminal without echo
// (see (*Config).ResolveSecrets).
//
// Validate never stops at the first problem; it returns every error found so
// the user can fix the whole configuration in one go.
package config
