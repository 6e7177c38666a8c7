package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/filevault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-m string   storage backend ("local" or "remote")
//	-f string   local catalog file path
//	-d string   PostgreSQL DSN
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-t int      request timeout, seconds
//	-r int      retry attempts for backend errors
//	-o string   downloads directory
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - The timeout flag is accepted as an integer in seconds and then converted
//     to a time.Duration value.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-m", "-f", "-d", "-u", "-p", "-b", "-g", "-e", "-t", "-r", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Backend, "m", config.Backend, "storage backend: local or remote")
	fs.StringVar(&config.LocalDBPath, "f", config.LocalDBPath, "local catalog file path")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	requestTimeout := fs.Int("t", int(config.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.IntVar(&config.RetryAttempts, "r", config.RetryAttempts, "retry attempts for backend errors")
	fs.StringVar(&config.DownloadsDir, "o", config.DownloadsDir, "downloads directory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.RequestTimeout = time.Duration(*requestTimeout) * time.Second
}
