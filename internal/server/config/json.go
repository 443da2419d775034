package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/ledgervault/internal/flagx"
	"github.com/dmitrijs2005/ledgervault/internal/timex"
)

// JsonConfig is the intermediate DTO used only for reading JSON
// configuration files. Interval fields use timex.Duration so values can
// be written either as strings ("30s") or integer nanoseconds. After
// unmarshalling, the fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP   string         `json:"endpoint_addr_http"`
	LedgerEndpoint     string         `json:"ledger_endpoint"`
	SignerPublicKey    string         `json:"signer_public_key"`
	SignerPrivateKey   string         `json:"signer_private_key"`
	RecipientPublicKey string         `json:"recipient_public_key"`
	DatabaseDSN        string         `json:"database_dsn"`
	S3RootUser         string         `json:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	HTTPReadTimeout    timex.Duration `json:"http_read_timeout"`
	HTTPWriteTimeout   timex.Duration `json:"http_write_timeout"`
	ShutdownTimeout    timex.Duration `json:"shutdown_timeout"`
}

// parseJson loads configuration values from an optional JSON file into
// the provided Config. The file path comes from the -c/-config flags; if
// neither is set, no file is loaded. A file that cannot be read or
// parsed is a startup failure and panics.
func parseJson(config *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = jc.EndpointAddrHTTP
	}
	if jc.LedgerEndpoint != "" {
		config.LedgerEndpoint = jc.LedgerEndpoint
	}
	if jc.SignerPublicKey != "" {
		config.SignerPublicKey = jc.SignerPublicKey
	}
	if jc.SignerPrivateKey != "" {
		config.SignerPrivateKey = jc.SignerPrivateKey
	}
	if jc.RecipientPublicKey != "" {
		config.RecipientPublicKey = jc.RecipientPublicKey
	}
	if jc.DatabaseDSN != "" {
		config.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.S3RootUser != "" {
		config.S3RootUser = jc.S3RootUser
	}
	if jc.S3RootPassword != "" {
		config.S3RootPassword = jc.S3RootPassword
	}
	if jc.S3Bucket != "" {
		config.S3Bucket = jc.S3Bucket
	}
	if jc.S3Region != "" {
		config.S3Region = jc.S3Region
	}
	if jc.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = jc.S3BaseEndpoint
	}
	if jc.HTTPReadTimeout != 0 {
		config.HTTPReadTimeout = time.Duration(jc.HTTPReadTimeout)
	}
	if jc.HTTPWriteTimeout != 0 {
		config.HTTPWriteTimeout = time.Duration(jc.HTTPWriteTimeout)
	}
	if jc.ShutdownTimeout != 0 {
		config.ShutdownTimeout = time.Duration(jc.ShutdownTimeout)
	}
}
