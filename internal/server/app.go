// Package server initializes and runs the LedgerVault server. It wires
// the content store, the ledger client, the upload index, and the HTTP
// endpoint together, and handles graceful shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/ledgervault/internal/blobstore"
	"github.com/dmitrijs2005/ledgervault/internal/ledger"
	"github.com/dmitrijs2005/ledgervault/internal/logging"
	"github.com/dmitrijs2005/ledgervault/internal/server/config"
	"github.com/dmitrijs2005/ledgervault/internal/server/httpapi"
	"github.com/dmitrijs2005/ledgervault/internal/server/registry"
	"github.com/dmitrijs2005/ledgervault/internal/vault"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	httpSrv *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	if c.SignerPublicKey == "" || c.SignerPrivateKey == "" || c.RecipientPublicKey == "" {
		return nil, fmt.Errorf("signer and recipient identities must be configured")
	}

	store, err := blobstore.NewS3Store(ctx, blobstore.S3Config{
		RootUser:     c.S3RootUser,
		RootPassword: c.S3RootPassword,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("content store init error: %w", err)
	}

	lc := ledger.NewClient(ledger.Config{
		Endpoint:           c.LedgerEndpoint,
		SignerPublicKey:    c.SignerPublicKey,
		SignerPrivateKey:   c.SignerPrivateKey,
		RecipientPublicKey: c.RecipientPublicKey,
	}, http.DefaultClient)

	uploads, err := initRegistry(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	svc := vault.NewService(store, lc, logger)

	srv := httpapi.NewServer(httpapi.Options{
		Addr:            c.EndpointAddrHTTP,
		ReadTimeout:     c.HTTPReadTimeout,
		WriteTimeout:    c.HTTPWriteTimeout,
		ShutdownTimeout: c.ShutdownTimeout,
	}, svc, uploads, logger)

	return &App{config: c, logger: logger, httpSrv: srv}, nil
}

// initRegistry opens the upload index database and applies migrations.
// The index is optional: if no DSN is configured the server runs without
// the listing endpoint rather than refusing to start.
func initRegistry(ctx context.Context, c *config.Config, logger logging.Logger) (registry.Repository, error) {
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "no database DSN configured, upload index disabled")
		return nil, nil
	}

	db, err := registry.Open(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := registry.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}
	return registry.NewPostgresRepository(db), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpSrv.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()
}
