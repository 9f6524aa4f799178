// Package cli is a small REPL client around the session service: sign in,
// walk the onboarding gates, and inspect the current session from a
// terminal.
package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"

	"github.com/levelquest/sessiongate/internal/client/config"
	"github.com/levelquest/sessiongate/internal/client/session"
	"github.com/levelquest/sessiongate/internal/client/tokens"
	"github.com/levelquest/sessiongate/internal/client/transport"
	"github.com/levelquest/sessiongate/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config  *config.Config
	service *session.Service
	reader  *bufio.Reader
	log     logging.Logger
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	db, err := tokens.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	store := tokens.NewStore(tokens.NewSQLiteRepository(db), log)
	apiClient := transport.NewHTTPClient(c.APIBaseURL, c.RequestTimeout, log)

	svc := session.NewService(session.Options{
		Client:        apiClient,
		Tokens:        store,
		Logger:        log,
		RenewInterval: c.RenewInterval,
		SyncInterval:  c.SyncInterval,
	})

	return &App{
		config:  c,
		service: svc,
		reader:  bufio.NewReader(os.Stdin),
		log:     log,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.service.Close()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.service.State() == session.StateAuthenticated
}
