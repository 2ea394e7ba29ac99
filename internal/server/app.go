// Package server initializes and runs the mirror server. It picks a snapshot
// storage backend from configuration, wires the HTTP endpoint on top of it
// and handles graceful shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/pantrysync/restock/internal/logging"
	"github.com/pantrysync/restock/internal/server/config"
	"github.com/pantrysync/restock/internal/server/httpapi"
	"github.com/pantrysync/restock/internal/server/snapshots"
)

type App struct {
	config *config.Config
	logger logging.Logger
	repo   snapshots.Repository
	closer func() error
}

func newRepository(ctx context.Context, c *config.Config) (snapshots.Repository, func() error, error) {
	switch c.StorageBackend {
	case "postgres":
		repo, err := snapshots.NewPostgresRepository(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("db init error: %w", err)
		}
		return repo, repo.Close, nil
	case "s3":
		repo, err := snapshots.NewS3Repository(ctx, snapshots.S3Options{
			Region:       c.S3Region,
			RootUser:     c.S3RootUser,
			RootPassword: c.S3RootPassword,
			Bucket:       c.S3Bucket,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("s3 init error: %w", err)
		}
		return repo, nil, nil
	case "memory":
		return snapshots.NewMemoryRepository(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %s", c.StorageBackend)
	}
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSON(os.Stdout)

	repo, closer, err := newRepository(ctx, c)
	if err != nil {
		return nil, err
	}

	return &App{config: c, logger: logger, repo: repo, closer: closer}, nil
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewServer(app.config.EndpointAddr, app.repo, app.config.MaxSnapshotBytes, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...", "backend", app.config.StorageBackend)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if app.closer != nil {
		if err := app.closer(); err != nil {
			app.logger.Error(ctx, "storage close error", "error", err)
		}
	}
}
