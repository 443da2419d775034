package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/ledgervault/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line
// flags.
//
// Supported flags:
//
//	-a string    HTTP bind address (e.g., ":3000")
//	-l string    ledger GraphQL endpoint URL
//	-sp string   signer public key
//	-sk string   signer private key
//	-rp string   recipient public key
//	-d string    PostgreSQL DSN
//	-u string    S3 root user
//	-w string    S3 root password
//	-b string    S3 bucket name
//	-g string    S3 region
//	-e string    S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// The function first filters os.Args to only the flags it recognizes
// using flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-a", "-l", "-sp", "-sk", "-rp", "-d", "-u", "-w", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.LedgerEndpoint, "l", config.LedgerEndpoint, "ledger GraphQL endpoint")
	fs.StringVar(&config.SignerPublicKey, "sp", config.SignerPublicKey, "signer public key")
	fs.StringVar(&config.SignerPrivateKey, "sk", config.SignerPrivateKey, "signer private key")
	fs.StringVar(&config.RecipientPublicKey, "rp", config.RecipientPublicKey, "recipient public key")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "w", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
