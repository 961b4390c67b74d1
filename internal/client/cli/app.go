package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/botadmin/internal/client/api"
	"github.com/dmitrijs2005/botadmin/internal/client/config"
	"github.com/dmitrijs2005/botadmin/internal/client/guard"
	"github.com/dmitrijs2005/botadmin/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/botadmin/internal/client/services"
	"github.com/dmitrijs2005/botadmin/internal/client/session"
	"github.com/dmitrijs2005/botadmin/internal/client/storage"
	"github.com/dmitrijs2005/botadmin/internal/filex"
	"github.com/dmitrijs2005/botadmin/internal/logging"
)

type App struct {
	config  *config.Config
	db      *sql.DB
	session *session.Manager
	client  *api.Client
	auth    services.AuthService
	upload  services.UploadService
	guard   *guard.Guard
	log     logging.Logger

	reader *bufio.Reader
	out    io.Writer

	mu       sync.Mutex
	userName string
}

// NewApp wires the state database, session, API client and services for the
// interactive client, reading from stdin and writing to stdout.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, os.Stdin, os.Stdout)
}

func newApp(ctx context.Context, c *config.Config, in io.Reader, out io.Writer) (*App, error) {
	log := logging.NewTextLogger(os.Stderr, c.LogLevel)

	if _, err := filex.EnsureSubdDir(filepath.Dir(c.StatePath)); err != nil {
		return nil, fmt.Errorf("error creating state directory: %w", err)
	}

	db, err := storage.InitDatabase(ctx, c.StatePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	a := &App{
		config: c,
		db:     db,
		log:    log,
		reader: bufio.NewReader(in),
		out:    out,
	}

	a.session = session.NewManager(metadata.NewSQLiteRepository(db), a)

	httpClient, err := api.NewHTTPClient(c.RequestTimeout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a.client, err = api.New(api.Config{
		BaseURL:        c.APIBaseURL(),
		HTTPClient:     httpClient,
		Session:        a.session,
		Logger:         log,
		RefreshTimeout: c.RefreshTimeout,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a.auth = services.NewAuthService(a.client, a.session, log)
	a.upload = services.NewUploadService(a.client, c.UploadBatchSize, log)
	a.guard = guard.New(a.session)

	return a, nil
}

// Run restores a persisted session and blocks in the REPL until the user
// exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printInfo(a.out, "Welcome to botadmin CLI (type 'help' for commands)")

	restored, err := a.auth.Restore(ctx)
	if err != nil {
		a.log.Warn(ctx, "restoring session failed", "error", err)
	}
	if restored {
		a.auth.EnsurePermissions(ctx)
	}

	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) Close() {
	if err := a.db.Close(); err != nil {
		a.log.Warn(context.Background(), "closing state database", "error", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) status() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.userName == "" {
		return ""
	}
	return "(" + a.userName + ")"
}

// LoggedIn and LoggedOut keep the prompt in step with the session; they are
// called by the session manager, possibly from request goroutines.
func (a *App) LoggedIn(st session.State) {
	name := ""
	if st.User != nil {
		name = st.User.Email
		if name == "" {
			name = st.User.Name
		}
	}
	a.mu.Lock()
	a.userName = name
	a.mu.Unlock()
}

func (a *App) LoggedOut() {
	a.mu.Lock()
	wasLoggedIn := a.userName != ""
	a.userName = ""
	a.mu.Unlock()

	if wasLoggedIn {
		printWarn(a.out, "Session ended, please log in again")
	}
}
