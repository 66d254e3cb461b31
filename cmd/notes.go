package cmd

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/electr1fy0/bluenotes/notes"
	"github.com/electr1fy0/bluenotes/render"
)

const shortID = 8

func newCmdList(s *state) *cobra.Command {
	var category, search string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notes in a category",
		Example: heredoc.Doc(`
			bluenotes list
			bluenotes list --category favorites
			bluenotes list --category work --search standup
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			a.Session.SelectCategory(category)
			a.Session.Search(search)
			visible := a.Session.Visible()
			if len(visible) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No notes available")
				return nil
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "FAV", "CATEGORY", "TITLE")
			for _, n := range visible {
				fav := ""
				if n.IsFavorite {
					fav = "★"
				}
				t.Row(short(n.ID), fav, n.Category, n.Title())
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", notes.All, "category: all, favorites, trash or a custom name")
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive content filter")
	return cmd
}

func newCmdShow(s *state) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Print a note",
		Long: heredoc.Doc(`
			Print a note rendered for the terminal. ID may be any unique prefix
			of the note id as shown by list.
		`),
		Args: cobra.ExactArgs(1),
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
			if raw {
				fmt.Fprintln(cmd.OutOrStdout(), n.Content)
				return nil
			}
			term := render.Terminal{Style: s.cfg.Render.Style, UseGlow: s.cfg.Render.UseGlow}
			fmt.Fprint(cmd.OutOrStdout(), term.Preview(notes.Segments(n.Content), 80))
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the stored content unrendered")
	return cmd
}

func newCmdAdd(s *state) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "add CONTENT...",
		Short: "Add a note",
		Example: heredoc.Doc(`
			bluenotes add "# Ideas"
			bluenotes add --category work "# Standup" "- shipped the export"
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if category != "" && notes.IsReserved(category) {
				return fmt.Errorf("%q is not a custom category", category)
			}
			id, err := a.Session.AddNote(category)
			if err != nil {
				return err
			}
			if err := a.Session.UpdateContent(id, strings.Join(args, "\n")); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "custom category for the note")
	// content lines may start with "-"
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newCmdCategory(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"cat"},
		Short:   "Manage custom categories",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add NAME",
			Short: "Add a custom category",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := s.open(cmd.Context())
				if err != nil {
					return err
				}
				defer a.Close()

				added, err := a.Session.AddCategory(args[0])
				if err != nil {
					return err
				}
				if !added {
					return fmt.Errorf("category %q not added: empty, reserved or existing name", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Added category:", strings.TrimSpace(args[0]))
				return nil
			},
		},
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List categories",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := s.open(cmd.Context())
				if err != nil {
					return err
				}
				defer a.Close()

				for _, c := range a.Session.Categories() {
					fmt.Fprintln(cmd.OutOrStdout(), c)
				}
				return nil
			},
		},
	)
	return cmd
}

func short(id string) string {
	if len(id) > shortID {
		return id[:shortID]
	}
	return id
}

// findNote resolves an id or unique id prefix.
func findNote(all []notes.Note, prefix string) (notes.Note, error) {
	if prefix == "" {
		return notes.Note{}, fmt.Errorf("note id is required")
	}
	var found []notes.Note
	for _, n := range all {
		if n.ID == prefix {
			return n, nil
		}
		if strings.HasPrefix(n.ID, prefix) {
			found = append(found, n)
		}
	}
	switch len(found) {
	case 0:
		return notes.Note{}, fmt.Errorf("no note matches %q", prefix)
	case 1:
		return found[0], nil
	default:
		return notes.Note{}, fmt.Errorf("%q matches %d notes", prefix, len(found))
	}
}
