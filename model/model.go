// Package model is the bubbletea interface for browsing and editing notes.
package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/electr1fy0/bluenotes/app"
	"github.com/electr1fy0/bluenotes/config"
	"github.com/electr1fy0/bluenotes/logger"
	"github.com/electr1fy0/bluenotes/render"
	"github.com/electr1fy0/bluenotes/storage"
)

func newPasswordInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 30
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	return ti
}

// New builds the model. Without opts.App it starts at the password prompt.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}

	si := textinput.New()
	si.Placeholder = "search notes..."
	si.CharLimit = 50
	si.Width = 40

	ci := textinput.New()
	ci.Placeholder = "category name"
	ci.CharLimit = 32
	ci.Width = 30

	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	// f and d are note actions
	l.KeyMap.NextPage = key.NewBinding(key.WithKeys("right", "l", "pgdown"))
	l.KeyMap.PrevPage = key.NewBinding(key.WithKeys("left", "h", "pgup"))
	l.SetStatusBarItemName("note", "notes")

	ed := textarea.New()
	ed.Placeholder = "Start writing..."
	ed.ShowLineNumbers = false
	ed.CharLimit = 0
	ed.MaxHeight = 0

	m := Model{
		state:       statePass,
		cfg:         cfg,
		log:         log.Child("tui"),
		onOpen:      opts.OnOpen,
		term:        render.Terminal{Style: cfg.Render.Style, UseGlow: cfg.Render.UseGlow},
		pwInput:     newPasswordInput("enter password"),
		searchInput: si,
		catInput:    ci,
		list:        l,
		editor:      ed,
		preview:     viewport.New(0, 0),
		exportRoot:  opts.ExportRoot,
	}
	if opts.App != nil {
		m.attach(opts.App)
	}
	return m
}

// App returns the opened application, or nil while locked.
func (m Model) App() *app.App { return m.app }

func (m Model) Init() tea.Cmd {
	if m.state == statePass {
		return textinput.Blink
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case editorFinishedMsg:
		m.finishExternalEdit(msg)
		return m, tea.ClearScreen
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	switch m.state {
	case statePass:
		return m.updatePass(msg)
	case stateSearch:
		return m.updateSearch(msg)
	case stateCategory:
		return m.updateCategory(msg)
	case stateConfirm:
		return m.updateConfirm(msg)
	case stateChangePass:
		return m.updateChangePass(msg)
	case stateEdit:
		return m.updateEdit(msg)
	case statePreview:
		return m.updatePreview(msg)
	default:
		return m.updateBrowse(msg)
	}
}

func (m Model) updatePass(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.pwInput, cmd = m.pwInput.Update(msg)
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "enter" {
		a, err := app.Open(context.Background(), m.cfg, m.log, m.pwInput.Value())
		m.pwInput.SetValue("")
		if err != nil {
			if errors.Is(err, storage.ErrWrongPassword) {
				m.setError("Failed to decrypt", err)
			} else {
				m.setError("Failed to open notebook", err)
			}
			return m, nil
		}
		m.attach(a)
		m.setStatus(fmt.Sprintf("Loaded notebook (%d notes)", len(a.Session.Store().Notes())))
	}
	return m, cmd
}

func (m Model) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter":
			m.searchInput.Blur()
			m.state = stateBrowse
			m.setStatus(fmt.Sprintf("Search: '%s' (%d results)", m.sess.Query(), len(m.list.Items())))
			return m, nil
		case "esc":
			m.searchInput.Blur()
			m.searchInput.SetValue("")
			m.sess.Search("")
			m.refresh()
			m.state = stateBrowse
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if m.searchInput.Value() != m.sess.Query() {
		m.sess.Search(m.searchInput.Value())
		m.refresh()
	}
	return m, cmd
}

func (m Model) updateCategory(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter":
			name := m.catInput.Value()
			m.catInput.SetValue("")
			m.catInput.Blur()
			m.state = stateBrowse
			added, err := m.sess.AddCategory(name)
			switch {
			case err != nil:
				m.setError("Add category failed", err)
			case !added:
				m.setStatus("Category not added: empty, reserved or existing name")
			default:
				cats := m.sess.Store().Categories()
				m.sess.SelectCategory(cats[len(cats)-1])
				m.setStatus("Added category: " + m.sess.SelectedCategory())
			}
			m.refresh()
			return m, nil
		case "esc":
			m.catInput.SetValue("")
			m.catInput.Blur()
			m.state = stateBrowse
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.catInput, cmd = m.catInput.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "y", "Y":
		m.state = stateBrowse
		if m.confirmAction != nil {
			m.confirmAction(&m)
		}
	case "n", "N", "esc":
		m.state = stateBrowse
		if m.confirmCancel != nil {
			m.confirmCancel(&m)
		}
		m.setStatus("Cancelled")
	default:
		return m, nil
	}
	m.confirmAction, m.confirmCancel = nil, nil
	return m, nil
}

func (m Model) updateChangePass(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.pwInput, cmd = m.pwInput.Update(msg)
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter":
			newpw := m.pwInput.Value()
			m.pwInput = newPasswordInput("enter password")
			m.state = stateBrowse
			if newpw == "" {
				m.setStatus("Password not changed (empty)")
				return m, nil
			}
			if err := m.changePassword(newpw); err != nil {
				m.setError("Password change failed", err)
			} else {
				m.setStatus("Password changed.")
			}
			return m, nil
		case "esc":
			m.pwInput = newPasswordInput("enter password")
			m.state = stateBrowse
			return m, nil
		}
	}
	return m, cmd
}

func (m Model) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		m.editor.Blur()
		m.state = stateBrowse
		return m, nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if _, ok := msg.(tea.KeyMsg); ok && m.editing != "" {
		if err := m.sess.UpdateContent(m.editing, m.editor.Value()); err != nil {
			m.setError("Save failed", err)
		}
		m.refresh()
	}
	return m, cmd
}

func (m Model) updatePreview(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc", "q":
			m.state = stateBrowse
			return m, nil
		case "p":
			m.sess.ToggleMarkdownView()
			m.state = stateBrowse
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)
	return m, cmd
}

func (m Model) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch k.String() {
	case "q":
		return m, tea.Quit
	case "tab":
		m.cycleCategory(1)
	case "shift+tab":
		m.cycleCategory(-1)
	case "enter":
		if len(m.list.Items()) == 0 {
			return m, nil
		}
		m.followCursor()
		if m.sess.Markdown() {
			m.state = statePreview
			return m, nil
		}
		m.state = stateEdit
		cmd := m.editor.Focus()
		return m, cmd
	case "a":
		m.addNote()
		m.state = stateEdit
		cmd := m.editor.Focus()
		return m, cmd
	case "d":
		it, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		if it.trashed {
			m.confirm(
				fmt.Sprintf("Delete note '%s' forever? (y/N)", it.title),
				func(m *Model) { m.trashOrDelete(it) },
				nil,
			)
			return m, nil
		}
		m.trashOrDelete(it)
	case "f":
		if it, ok := m.selectedItem(); ok {
			if err := m.sess.ToggleFavorite(it.id); err != nil {
				m.setError("Favorite failed", err)
			} else {
				m.setStatus("Toggled favorite: " + it.title)
			}
			m.refresh()
		}
	case "p":
		if _, ok := m.selectedItem(); ok {
			m.followCursor()
			m.sess.ToggleMarkdownView()
			m.renderPreview()
		}
	case "/":
		m.searchInput.SetValue(m.sess.Query())
		m.state = stateSearch
		cmd := m.searchInput.Focus()
		return m, cmd
	case "c":
		if m.sess.Query() != "" {
			m.sess.Search("")
			m.searchInput.SetValue("")
			m.refresh()
			m.setStatus("Cleared search")
		}
	case "n":
		m.state = stateCategory
		cmd := m.catInput.Focus()
		return m, cmd
	case "X":
		m.requestClearTrash()
	case "E":
		return m, m.openExternalEditor()
	case "y":
		m.copyCurrent()
	case "e":
		m.exportNotes()
	case "P":
		if m.cfg.Storage.Backend != config.BackendVault {
			m.setStatus("Password change needs the vault backend")
			return m, nil
		}
		m.pwInput = newPasswordInput("enter new password")
		m.state = stateChangePass
		return m, textinput.Blink
	default:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		m.followCursor()
		return m, cmd
	}
	return m, nil
}
