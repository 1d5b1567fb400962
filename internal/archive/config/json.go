package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/ticketvault/ticketvault/internal/flagx"
	"github.com/ticketvault/ticketvault/internal/timex"
)

// JsonConfig is the DTO for reading JSON configuration files. It mirrors
// Config but uses timex.Duration so interval fields parse both string values
// such as "15m" and integer nanoseconds. Pointer fields distinguish "absent"
// from zero, so a partial file only overrides what it names.
type JsonConfig struct {
	DatabaseDSN          *string         `json:"database_dsn"`
	ArchiveDisabled      *bool           `json:"archive_disabled"`
	EncryptionPassphrase *string         `json:"encryption_passphrase"`
	EncryptionSaltHex    *string         `json:"encryption_salt_hex"`
	CryptoWorkers        *int            `json:"crypto_workers"`
	S3RootUser           *string         `json:"s3_root_user"`
	S3RootPassword       *string         `json:"s3_root_password"`
	S3Bucket             *string         `json:"s3_bucket"`
	S3Region             *string         `json:"s3_region"`
	S3BaseEndpoint       *string         `json:"s3_base_endpoint"`
	PresignExpiry        *timex.Duration `json:"presign_expiry"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; when neither is set, no JSON file is loaded. An unreadable or
// invalid file panics: a half-applied config is worse than no start-up.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.ArchiveDisabled != nil {
		config.ArchiveDisabled = *c.ArchiveDisabled
	}
	if c.EncryptionPassphrase != nil {
		config.EncryptionPassphrase = *c.EncryptionPassphrase
	}
	if c.EncryptionSaltHex != nil {
		config.EncryptionSaltHex = *c.EncryptionSaltHex
	}
	if c.CryptoWorkers != nil {
		config.CryptoWorkers = *c.CryptoWorkers
	}
	if c.S3RootUser != nil {
		config.S3RootUser = *c.S3RootUser
	}
	if c.S3RootPassword != nil {
		config.S3RootPassword = *c.S3RootPassword
	}
	if c.S3Bucket != nil {
		config.S3Bucket = *c.S3Bucket
	}
	if c.S3Region != nil {
		config.S3Region = *c.S3Region
	}
	if c.S3BaseEndpoint != nil {
		config.S3BaseEndpoint = *c.S3BaseEndpoint
	}
	if c.PresignExpiry != nil {
		config.PresignExpiry = time.Duration(c.PresignExpiry.Duration)
	}
}
