// Package cli implements the interactive LedgerVault client.
package cli

import (
	"io"
	"os"

	"github.com/dmitrijs2005/ledgervault/internal/client/api"
	"github.com/dmitrijs2005/ledgervault/internal/client/config"
)

type App struct {
	config *config.Config
	api    *api.Client
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	return &App{
		config: c,
		api:    api.New(c.ServerEndpointAddr, nil),
		out:    os.Stdout,
	}, nil
}
