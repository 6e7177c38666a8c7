package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/filevault/internal/flagx"
	"github.com/dmitrijs2005/filevault/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify the timeout either as
// a string like "60s" or as integer nanoseconds. Pointer fields make an
// absent key distinguishable from an explicit zero.
type JsonConfig struct {
	Backend        string          `json:"backend"`
	LocalDBPath    string          `json:"local_db_path"`
	DatabaseDSN    string          `json:"database_dsn"`
	S3RootUser     string          `json:"s3_root_user"`
	S3RootPassword string          `json:"s3_root_password"`
	S3Bucket       string          `json:"s3_bucket"`
	S3Region       string          `json:"s3_region"`
	S3BaseEndpoint string          `json:"s3_base_endpoint"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	RetryAttempts  *int            `json:"retry_attempts"`
	DownloadsDir   string          `json:"downloads_dir"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Behavior:
//   - Reads and unmarshals the JSON into JsonConfig.
//   - Copies set fields into the provided Config; keys absent from the
//     file keep their current values.
//   - Panics on read or unmarshal errors (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.Backend != "" {
		cfg.Backend = jc.Backend
	}
	if jc.LocalDBPath != "" {
		cfg.LocalDBPath = jc.LocalDBPath
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.S3RootUser != "" {
		cfg.S3RootUser = jc.S3RootUser
	}
	if jc.S3RootPassword != "" {
		cfg.S3RootPassword = jc.S3RootPassword
	}
	if jc.S3Bucket != "" {
		cfg.S3Bucket = jc.S3Bucket
	}
	if jc.S3Region != "" {
		cfg.S3Region = jc.S3Region
	}
	if jc.S3BaseEndpoint != "" {
		cfg.S3BaseEndpoint = jc.S3BaseEndpoint
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RetryAttempts != nil {
		cfg.RetryAttempts = *jc.RetryAttempts
	}
	if jc.DownloadsDir != "" {
		cfg.DownloadsDir = jc.DownloadsDir
	}
}
