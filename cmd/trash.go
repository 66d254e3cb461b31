package cmd

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/erikgeiser/promptkit/confirmation"
	"github.com/spf13/cobra"

	"github.com/electr1fy0/bluenotes/notes"
)

// confirmClear asks before the trash is emptied; replaced in tests.
var confirmClear = func(n int) (bool, error) {
	return confirmation.New(fmt.Sprintf("Permanently delete %d note(s) in trash?", n), confirmation.No).RunPrompt()
}

func newCmdTrash(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trash",
		Short: "Move notes to the trash or empty it",
	}

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Permanently delete every note in the trash",
		Example: heredoc.Doc(`
			bluenotes trash clear
			bluenotes trash clear --yes
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			n := a.Session.RequestClearTrash()
			if n == 0 {
				a.Session.CancelClearTrash()
				fmt.Fprintln(cmd.OutOrStdout(), "Trash is empty")
				return nil
			}
			if !yes {
				ok, err := confirmClear(n)
				if err != nil {
					return err
				}
				if !ok {
					a.Session.CancelClearTrash()
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
			}

			removed, err := a.Session.ConfirmClearTrash()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d note(s)\n", removed)
			return nil
		},
	}
	clearCmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	move := &cobra.Command{
		Use:   "rm ID",
		Short: "Trash an active note, or delete a trashed one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := findNote(a.Session.Store().Notes(), args[0])
			if err != nil {
				return err
			}
			out, err := a.Session.TrashOrDelete(n.ID)
			if err != nil {
				return err
			}
			switch out {
			case notes.Trashed:
				fmt.Fprintln(cmd.OutOrStdout(), "Moved to trash:", n.Title())
			case notes.Deleted:
				fmt.Fprintln(cmd.OutOrStdout(), "Deleted:", n.Title())
			}
			return nil
		},
	}

	cmd.AddCommand(clearCmd, move)
	return cmd
}
