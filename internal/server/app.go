// Package server wires configuration, storage, the account service and the
// HTTP transport into a runnable application.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/server/config"
	"github.com/dmitrijs2005/accountkeeper/internal/server/credentials"
	"github.com/dmitrijs2005/accountkeeper/internal/server/notify"
	"github.com/dmitrijs2005/accountkeeper/internal/server/rest"
	"github.com/dmitrijs2005/accountkeeper/internal/server/services"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	storage  *Storage
	accounts *services.AccountService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, c.LogLevel)
	warnInsecureDefaults(ctx, c, logger)

	st, err := OpenStorage(ctx, c.DatabaseDSN, logger)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	return &App{
		config:   c,
		logger:   logger,
		storage:  st,
		accounts: NewAccountService(c, st, logger),
	}, nil
}

func warnInsecureDefaults(ctx context.Context, c *config.Config, l logging.Logger) {
	if c.UsesDefaultSecret() {
		l.Warn(ctx, "tokens are signed with the built-in development secret; set ACCOUNTS_SECRET_KEY or -s")
	}
}

// NewAccountService builds the account service from configuration on top of
// already opened storage.
func NewAccountService(c *config.Config, st *Storage, l logging.Logger) *services.AccountService {
	return services.NewAccountService(
		st.DBTX(),
		st.Tx,
		st.Manager,
		credentials.NewHasher(c.PasswordHashCost),
		auth.NewTokenService([]byte(c.SecretKey), c.SessionTokenValidityDuration, c.ResetTokenValidityDuration),
		newNotifier(c, l),
		l,
	)
}

func newNotifier(c *config.Config, l logging.Logger) notify.Notifier {
	switch c.ResetDelivery {
	case config.DeliverySendGrid:
		return notify.NewSendGridNotifier(c.SendGridAPIKey, c.MailFromAddress, c.MailFromName)
	default:
		return notify.NewLogNotifier(l)
	}
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
	s := rest.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.accounts, app.config.ShutdownTimeout)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
	app.accounts.WaitDeliveries()

	if err := app.storage.Close(); err != nil {
		app.logger.Error(ctx, "error closing database", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}
