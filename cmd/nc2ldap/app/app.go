// Package app wires configuration, logging and the CardDAV and LDAP adapters
// into the nc2ldap CLI.
package app

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/agentstation/nc2ldap"
	"github.com/agentstation/nc2ldap/internal/carddav"
	"github.com/agentstation/nc2ldap/internal/config"
	"github.com/agentstation/nc2ldap/internal/ldap"
)

// SourceFactory opens the address book.
type SourceFactory func(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (nc2ldap.Source, error)

// DirectoryFactory connects to the phone book. The returned func releases
// the connection.
type DirectoryFactory func(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (nc2ldap.Directory, func(), error)

// App represents the nc2ldap application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger
	out    io.Writer

	newSource    SourceFactory
	newDirectory DirectoryFactory
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version:      version,
		commit:       commit,
		date:         date,
		builtBy:      builtBy,
		config:       LoadConfig(),
		out:          os.Stdout,
		newSource:    openAddressBook,
		newDirectory: dialPhoneBook,
	}

	logger := NewLogger(app.config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// client builds a sync client over src and the configured phone book.
// With ensure set, a missing phone book container is created first.
func (a *App) client(ctx context.Context, src nc2ldap.Source, ensure bool, opts ...nc2ldap.Option) (nc2ldap.Client, func(), error) {
	dir, closeDir, err := a.newDirectory(ctx, a.config.Sync, a.logger)
	if err != nil {
		return nil, nil, err
	}

	if e, ok := dir.(ensurer); ok && ensure {
		if err := e.Ensure(ctx); err != nil {
			closeDir()
			return nil, nil, err
		}
	}

	opts = append([]nc2ldap.Option{
		nc2ldap.WithRegion(a.config.Sync.Region),
		nc2ldap.WithLogger(a.logger),
		nc2ldap.WithAutoSyncInterval(a.config.Sync.Schedule),
	}, opts...)

	client, err := nc2ldap.New(src, dir, opts...)
	if err != nil {
		closeDir()
		return nil, nil, err
	}
	return client, closeDir, nil
}

func openAddressBook(_ context.Context, cfg *config.Config, logger *zerolog.Logger) (nc2ldap.Source, error) {
	return carddav.New(carddav.Config{
		URL:         cfg.Nextcloud.URL,
		User:        cfg.Nextcloud.User,
		Token:       cfg.Nextcloud.Token,
		AddressBook: cfg.Nextcloud.AddressBook,
	}, carddav.WithLogger(logger))
}

func dialPhoneBook(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (nc2ldap.Directory, func(), error) {
	pb, err := ldap.Dial(ctx, ldap.Config{
		URL:      cfg.LDAP.Server,
		BaseDN:   cfg.LDAP.PhoneBook,
		BindDN:   cfg.LDAP.AdminUser,
		Password: cfg.LDAP.AdminPassword,
	}, ldap.WithLogger(logger), ldap.WithRegion(cfg.Region))
	if err != nil {
		return nil, nil, err
	}
	return pb, pb.Close, nil
}

// ensurer is implemented by directories that can create their container.
type ensurer interface {
	Ensure(ctx context.Context) error
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithOutput sets where command output is written.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}

// WithSourceFactory replaces the CardDAV address book (useful for testing).
func WithSourceFactory(f SourceFactory) Option {
	return func(a *App) error {
		a.newSource = f
		return nil
	}
}

// WithDirectoryFactory replaces the LDAP phone book (useful for testing).
func WithDirectoryFactory(f DirectoryFactory) Option {
	return func(a *App) error {
		a.newDirectory = f
		return nil
	}
}
