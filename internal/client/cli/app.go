package cli

import (
	"bufio"
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/velora-digital/siteauth/internal/client/api"
	"github.com/velora-digital/siteauth/internal/client/config"
	"github.com/velora-digital/siteauth/internal/client/repositories/slots"
	"github.com/velora-digital/siteauth/internal/client/services"
	"github.com/velora-digital/siteauth/internal/client/session"
	"github.com/velora-digital/siteauth/internal/logging"
	"golang.org/x/time/rate"

	_ "modernc.org/sqlite"
)

const requestTimeout = 15 * time.Second

// App wires the services together and holds the interactive state of one CLI
// session.
type App struct {
	config *config.Config
	log    logging.Logger

	db        *sql.DB
	store     *session.Store
	auth      services.AuthService
	dashboard *services.DashboardService
	twoFactor *services.TwoFactorService
	security  *services.SecurityService
	monitor   *services.Monitor

	userName string
	reader   *bufio.Reader
}

func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := slots.OpenSQLite(ctx, c.StoreDSN)
	if err != nil {
		log.Error(ctx, "failed to open session store", "dsn", c.StoreDSN, "error", err)
		return nil, err
	}

	app := &App{
		config: c,
		log:    log,
		db:     db,
		reader: bufio.NewReader(os.Stdin),
	}

	store := session.NewStore(slots.NewSQLiteRepository(db), log)
	app.store = store

	transport := &api.AuthTransport{
		Tokens:  store,
		Limiter: rate.NewLimiter(rate.Limit(10), 20),
		OnUnauthorized: func() {
			if err := store.ClearSession(context.Background()); err != nil {
				log.Error(ctx, "failed to clear rejected session", "error", err)
			}
			app.sessionExpired()
		},
		Log: log,
	}

	apiClient := api.NewHTTPClient(c.APIBaseURL, c.SiteBaseURL, transport, requestTimeout, log)

	app.auth = services.NewAuthService(apiClient, store, log)
	app.dashboard, err = services.NewDashboardService(app.auth, apiClient, store, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	app.twoFactor = services.NewTwoFactorService(apiClient, store, log)
	app.security = services.NewSecurityService(apiClient, log)
	app.monitor = services.NewMonitor(app.auth, store, c.MonitorInterval, app.sessionExpired, log)

	return app, nil
}

// sessionExpired is the invalidation callback shared by the 401 interceptor
// and the session watcher.
func (a *App) sessionExpired() {
	a.userName = ""
	a.twoFactor.Bootstrap(false)
	printlnFn("Session expired, please log in again.")
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return " (" + a.userName + ")"
}

// restore picks up a session persisted by a previous run.
func (a *App) restore(ctx context.Context) {
	rec, err := a.store.Session(ctx)
	if err != nil {
		a.log.Error(ctx, "failed to read persisted session", "error", err)
		return
	}
	if rec == nil {
		return
	}
	a.userName = rec.User.Email
	a.twoFactor.Bootstrap(rec.User.TwoFactorEnabled)
	printlnFn("Restored session for " + rec.User.Email)
}

// Run restores persisted state, starts the session watcher, and enters the
// REPL. It returns when the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.db.Close()

	a.restore(ctx)

	go a.monitor.Run(ctx)

	printlnFn("Welcome to the site client (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
