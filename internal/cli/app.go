package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/config"
	"github.com/dmitrijs2005/filevault/internal/logging"
	"github.com/dmitrijs2005/filevault/internal/services"
	"github.com/dmitrijs2005/filevault/internal/session"
	"github.com/dmitrijs2005/filevault/internal/storage"
	"github.com/dmitrijs2005/filevault/internal/storage/local"
	"github.com/dmitrijs2005/filevault/internal/storage/remote"
	"github.com/dmitrijs2005/filevault/internal/thumbnail"
)

// retryBase is the first Fibonacci backoff delay between attempts.
const retryBase = 500 * time.Millisecond

type App struct {
	config      *config.Config
	logger      logging.Logger
	catalog     storage.Catalog
	authService services.AuthService
	fileService services.FileService
	session     *session.Session
	reader      *bufio.Reader
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	// log records go to stderr so they do not interleave with REPL output
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	catalog, err := openCatalog(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("error opening catalog: %w", err)
	}

	as := services.NewAuthService(catalog)
	fs := services.NewFileService(catalog, thumbnail.NewResizer(), logger)

	return &App{
		config:      c,
		logger:      logger,
		catalog:     catalog,
		authService: as,
		fileService: fs,
		reader:      bufio.NewReader(os.Stdin),
	}, nil
}

// openCatalog picks the storage backend from the configuration.
func openCatalog(ctx context.Context, c *config.Config) (storage.Catalog, error) {
	switch c.Backend {
	case config.BackendLocal:
		return local.Open(ctx, c.LocalDBPath)
	case config.BackendRemote:
		return remote.Open(ctx, remote.Config{
			DatabaseDSN:    c.DatabaseDSN,
			S3RootUser:     c.S3RootUser,
			S3RootPassword: c.S3RootPassword,
			S3Bucket:       c.S3Bucket,
			S3Region:       c.S3Region,
			S3BaseEndpoint: c.S3BaseEndpoint,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.Backend)
	}
}

func (a *App) Run(ctx context.Context) {
	defer func() {
		a.Logout(ctx)
		if err := a.catalog.Close(); err != nil {
			a.logger.Error(ctx, "catalog close failed", "error", err)
		}
	}()

	fmt.Println("FileVault CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}

func (a *App) isLoggedIn() bool {
	return a.session != nil
}

func (a *App) getStatus() string {
	if a.session == nil {
		return ""
	}
	return fmt.Sprintf("(%s)", a.session.UserID())
}

// withRetry runs op under the configured per-command deadline, retrying
// transient backend failures with Fibonacci backoff. Anything other than
// common.ErrorBackend fails immediately.
func (a *App) withRetry(ctx context.Context, op func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	backoff := retry.WithMaxRetries(uint64(a.config.RetryAttempts), retry.NewFibonacci(retryBase))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := op(ctx)
		if errors.Is(err, common.ErrorBackend) {
			return retry.RetryableError(err)
		}
		return err
	})
}
