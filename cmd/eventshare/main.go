package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/example/eventshare/internal/api"
	"github.com/example/eventshare/internal/config"
	"github.com/example/eventshare/internal/logging"
	"github.com/example/eventshare/internal/persistence"
	"github.com/example/eventshare/internal/persistence/sealed"
	"github.com/example/eventshare/internal/persistence/sqlite"
	"github.com/example/eventshare/internal/session"
	"github.com/example/eventshare/internal/terminal"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// env is what every command works with.
type env struct {
	cfg     config.Config
	logger  *slog.Logger
	store   persistence.Store
	storage *sqlite.Storage
	session *session.Store
	client  *api.Client
	in      io.Reader
	out     io.Writer
}

func (e *env) terminal(assumeYes bool) *terminal.Terminal {
	return terminal.New(e.out, e.in, terminal.Options{DownloadDir: e.cfg.DownloadDir, AssumeYes: assumeYes})
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(stderr)
		if len(args) == 0 {
			return exitUsage
		}
		return exitOK
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
	logger := logging.New(stderr, cfg.LogFormat, cfg.LogLevel)
	ctx = logging.ContextWithLogger(ctx, logger)

	e, closeStore, err := newEnv(ctx, cfg, logger, stdin, stdout)
	if err != nil {
		logger.Error("failed to open local storage", "error", err)
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
	defer closeStore()

	if err := cmd.run(ctx, e, args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "usage: eventshare %s %s\n", args[0], cmd.args)
			return exitUsage
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
	return exitOK
}

func newEnv(ctx context.Context, cfg config.Config, logger *slog.Logger, in io.Reader, out io.Writer) (*env, func(), error) {
	e := &env{cfg: cfg, logger: logger, in: in, out: out}
	closeStore := func() {}

	if cfg.UsesMemoryStore() {
		e.store = persistence.NewMemoryStore()
	} else {
		storage, err := sqlite.Open(cfg.StoreDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := storage.Migrate(ctx); err != nil {
			_ = storage.Close()
			return nil, nil, fmt.Errorf("migrate local storage: %w", err)
		}
		closeStore = func() {
			if err := storage.Close(); err != nil {
				logger.Error("failed to close local storage", "error", err)
			}
		}
		e.store = storage
		e.storage = storage
	}

	if cfg.StorePassphrase != "" {
		store, err := sealed.New(ctx, e.store, cfg.StorePassphrase)
		if err != nil {
			closeStore()
			return nil, nil, err
		}
		e.store = store
	}

	e.session = session.New(e.store, logger)
	e.client = api.New(api.Options{
		BaseURL:     cfg.APIBaseURL,
		FaceBaseURL: cfg.FaceAPIBaseURL,
		Timeout:     cfg.HTTPTimeout,
		Tokens:      e.session,
		Logger:      logger,
	})
	return e, closeStore, nil
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: eventshare <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-14s %s\n", name, commands[name].summary)
	}
}
