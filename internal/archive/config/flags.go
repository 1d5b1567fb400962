package config

import (
	"flag"
	"os"

	"github.com/ticketvault/ticketvault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN
//	-o          disable archiving entirely (bypass mode)
//	-k string   encryption passphrase
//	-l string   hex-encoded encryption salt
//	-w int      max pooled crypto workers
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-x duration presigned URL lifetime (e.g., "15m")
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-o", "-k", "-l", "-w", "-u", "-p", "-b", "-g", "-e", "-x"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.BoolVar(&config.ArchiveDisabled, "o", config.ArchiveDisabled, "disable archiving (bypass mode)")
	fs.StringVar(&config.EncryptionPassphrase, "k", config.EncryptionPassphrase, "encryption passphrase")
	fs.StringVar(&config.EncryptionSaltHex, "l", config.EncryptionSaltHex, "encryption salt (hex)")
	fs.IntVar(&config.CryptoWorkers, "w", config.CryptoWorkers, "max crypto workers")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.DurationVar(&config.PresignExpiry, "x", config.PresignExpiry, "presigned URL lifetime")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
