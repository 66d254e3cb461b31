// Package app wires configuration, logging and storage into a note session.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/electr1fy0/bluenotes/config"
	"github.com/electr1fy0/bluenotes/logger"
	"github.com/electr1fy0/bluenotes/notes"
	"github.com/electr1fy0/bluenotes/storage"
)

// ErrPasswordRequired is returned when the vault backend is opened without
// a password.
var ErrPasswordRequired = errors.New("vault password required")

// App holds the opened backend and the loaded session.
type App struct {
	Config  *config.Config
	Log     *logger.Logger
	KV      storage.KV
	Session *notes.Session

	closers []io.Closer
}

// NeedsPassword reports whether opening cfg's backend needs a vault password
// that is not already configured.
func NeedsPassword(cfg *config.Config) bool {
	return cfg.Storage.Backend == config.BackendVault && cfg.Storage.VaultPassword == ""
}

// Open opens the configured backend and loads the note store. password is
// only used by the vault backend and overrides the configured one.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger, password string) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}
	a := &App{Config: cfg, Log: log}

	kv, closer, err := openKV(ctx, cfg, log, password)
	if err != nil {
		return nil, err
	}
	a.KV = kv
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	store := notes.NewStore(kv, log)
	if err := store.Load(); err != nil {
		a.Close()
		return nil, fmt.Errorf("load notes: %w", err)
	}
	a.Session = notes.NewSession(store)

	log.Info().
		Str("backend", cfg.Storage.Backend).
		Int("notes", len(store.Notes())).
		Msg("notes loaded")
	return a, nil
}

// ChangePassword re-seals a vault backend.
func (a *App) ChangePassword(password string) error {
	v, ok := a.KV.(*storage.Vault)
	if !ok {
		return fmt.Errorf("backend %q has no password", a.Config.Storage.Backend)
	}
	return v.ChangePassword(password)
}

// Close releases the backend.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func openKV(ctx context.Context, cfg *config.Config, log *logger.Logger, password string) (storage.KV, io.Closer, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return storage.NewMemory(nil), nil, nil
	case config.BackendFile:
		f, err := storage.OpenFile(cfg.Storage.Path)
		return f, nil, err
	case config.BackendVault:
		if password == "" {
			password = cfg.Storage.VaultPassword
		}
		if password == "" {
			return nil, nil, ErrPasswordRequired
		}
		v, err := storage.OpenVault(cfg.Storage.Path, password)
		if err != nil {
			return nil, nil, err
		}
		return v, v, nil
	case config.BackendSQLite:
		s, err := storage.OpenSQL(ctx, storage.DriverSQLite, cfg.Storage.DSN, cfg.Storage.Timeout, log)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.BackendPostgres:
		s, err := storage.OpenSQL(ctx, storage.DriverPostgres, cfg.Storage.DSN, cfg.Storage.Timeout, log)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
