package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/electr1fy0/bluenotes/export"
	"github.com/electr1fy0/bluenotes/server"
)

func newCmdExport(s *state) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every note to a directory as markdown with front matter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if dir == "" {
				dir = fmt.Sprintf("bluenotes_export_%d", time.Now().Unix())
			}
			n, err := export.Dir(dir, a.Session.Store().Notes())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d notes to %s/\n", n, dir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "output directory")
	return cmd
}

func newCmdServe(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser preview until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Preview at http://%s/\n", s.cfg.Preview.Address)
			return server.New(s.cfg.Preview.Address, a.Session.Store(), s.log).Run(cmd.Context())
		},
	}
}
