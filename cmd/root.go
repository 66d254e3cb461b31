// Package cmd is the bluenotes command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/erikgeiser/promptkit/textinput"
	"github.com/spf13/cobra"

	"github.com/electr1fy0/bluenotes/app"
	"github.com/electr1fy0/bluenotes/config"
	"github.com/electr1fy0/bluenotes/logger"
	"github.com/electr1fy0/bluenotes/model"
	"github.com/electr1fy0/bluenotes/server"
)

// state is shared by every subcommand of one invocation.
type state struct {
	flags     config.Config
	cfg       *config.Config
	log       *logger.Logger
	logCloser io.Closer

	// promptPassword asks for the vault password; replaced in tests.
	promptPassword func() (string, error)
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewCmdRoot().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// NewCmdRoot builds the command tree.
func NewCmdRoot() *cobra.Command {
	s := &state{promptPassword: promptPassword}

	cmd := &cobra.Command{
		Use:   "bluenotes",
		Short: "Markdown notes with runnable snippets",
		Long: heredoc.Doc(`
			bluenotes keeps markdown notes in categories, with favorites and a trash.

			Notes may embed [CODE] snippets that the preview server runs in a
			sandboxed frame. Without a subcommand the terminal UI starts.
		`),
		Example: heredoc.Doc(`
			bluenotes
			bluenotes --backend vault
			bluenotes add --category work "# Standup notes"
			bluenotes list --search standup
		`),
		SilenceUsage:      true,
		PersistentPreRunE: s.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return s.teardown()
		},
		RunE: s.runTUI,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&s.flags.File, "config", "", "YAML config file")
	f.StringVar(&s.flags.Storage.Backend, "backend", "", "storage backend: memory, file, vault, sqlite, postgres")
	f.StringVar(&s.flags.Storage.Path, "path", "", "store file for the file and vault backends")
	f.StringVar(&s.flags.Storage.DSN, "dsn", "", "database DSN for sqlite and postgres")
	f.StringVar(&s.flags.Log.Path, "log-path", "", "log file")
	f.StringVar(&s.flags.Log.Level, "log-level", "", "log level")
	f.BoolVar(&s.flags.Preview.Enabled, "preview", false, "serve the browser preview while the UI runs")
	f.StringVar(&s.flags.Preview.Address, "preview-addr", "", "preview server address")

	cmd.AddCommand(
		newCmdList(s),
		newCmdShow(s),
		newCmdAdd(s),
		newCmdCategory(s),
		newCmdTrash(s),
		newCmdExport(s),
		newCmdServe(s),
	)
	return cmd
}

func (s *state) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(&s.flags)
	if err != nil {
		return err
	}
	s.cfg = cfg

	log, closer, err := logger.NewFile("bluenotes", cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return err
	}
	s.log, s.logCloser = log, closer
	s.log.Debug().Str("command", cmd.CommandPath()).Msg("starting")
	return nil
}

func (s *state) teardown() error {
	if s.logCloser == nil {
		return nil
	}
	err := s.logCloser.Close()
	s.logCloser = nil
	return err
}

// open opens the configured backend, prompting for a vault password when
// one is needed.
func (s *state) open(ctx context.Context) (*app.App, error) {
	password := ""
	if app.NeedsPassword(s.cfg) {
		pw, err := s.promptPassword()
		if err != nil {
			return nil, err
		}
		password = pw
	}
	return app.Open(ctx, s.cfg, s.log, password)
}

func (s *state) runTUI(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	opts := model.Options{
		Config: s.cfg,
		Log:    s.log,
		OnOpen: func(a *app.App) {
			if !s.cfg.Preview.Enabled {
				return
			}
			srv := server.New(s.cfg.Preview.Address, a.Session.Store(), s.log)
			go func() {
				if err := srv.Run(ctx); err != nil {
					s.log.Err(err).Msg("preview server stopped")
				}
			}()
		},
	}
	if !app.NeedsPassword(s.cfg) {
		a, err := app.Open(ctx, s.cfg, s.log, "")
		if err != nil {
			return err
		}
		opts.App = a
	}

	final, err := tea.NewProgram(model.New(opts), tea.WithAltScreen()).Run()
	if m, ok := final.(model.Model); ok && m.App() != nil {
		if cerr := m.App().Close(); cerr != nil {
			s.log.Err(cerr).Msg("close store")
		}
	}
	return err
}

func promptPassword() (string, error) {
	input := textinput.New("Vault password:")
	input.Hidden = true
	input.Validate = func(v string) error {
		if v == "" {
			return fmt.Errorf("password is required")
		}
		return nil
	}
	return input.RunPrompt()
}
