package model

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/electr1fy0/bluenotes/app"
	"github.com/electr1fy0/bluenotes/export"
	"github.com/electr1fy0/bluenotes/notes"
	"github.com/electr1fy0/bluenotes/utils"
)

// copyToClipboard is swapped out in tests.
var copyToClipboard = clipboard.WriteAll

type editorFinishedMsg struct {
	id      string
	session *utils.EditSession
	err     error
}

func (m *Model) attach(a *app.App) {
	m.app = a
	m.sess = a.Session
	m.state = stateBrowse
	m.refresh()
	m.resize()
	if m.onOpen != nil {
		m.onOpen(a)
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.lastError = ""
}

func (m *Model) setError(prefix string, err error) {
	m.status = prefix + ": " + err.Error()
	m.lastError = err.Error()
	m.log.Err(err).Msg(prefix)
}

// refresh rebuilds the list for the active category and query and keeps the
// selection on a visible note.
func (m *Model) refresh() {
	if m.sess == nil {
		return
	}
	visible := m.sess.Visible()
	items := make([]list.Item, 0, len(visible))
	cursor := -1
	cur := m.sess.Selection().CurrentID
	for i, n := range visible {
		items = append(items, itemFor(n))
		if n.ID == cur {
			cursor = i
		}
	}
	m.list.SetItems(items)
	m.list.Title = categoryLabel(m.sess.SelectedCategory())

	switch {
	case cursor >= 0:
		m.list.Select(cursor)
	case len(visible) > 0:
		m.list.Select(min(max(m.list.Index(), 0), len(visible)-1))
	}

	m.loadEditor(false)
	m.renderPreview()
}

// followCursor selects the note under the list cursor.
func (m *Model) followCursor() {
	it, ok := m.selectedItem()
	if !ok || it.id == m.sess.Selection().CurrentID {
		return
	}
	m.sess.SelectNote(it.id)
	m.loadEditor(false)
	m.renderPreview()
}

func (m *Model) selectedItem() (listItem, bool) {
	if len(m.list.Items()) == 0 {
		return listItem{}, false
	}
	it, ok := m.list.SelectedItem().(listItem)
	return it, ok
}

// loadEditor puts the current note into the editor when it changed or when
// force is set. The note being edited never changes under the cursor.
func (m *Model) loadEditor(force bool) {
	if m.state == stateEdit && !force {
		return
	}
	n, ok := m.sess.Current()
	if !ok {
		m.editing = ""
		m.editor.Reset()
		return
	}
	if force || n.ID != m.editing {
		m.editing = n.ID
		m.editor.SetValue(n.Content)
	}
}

func (m *Model) renderPreview() {
	if !m.sess.Markdown() {
		return
	}
	m.preview.SetContent(m.term.Preview(m.sess.Segments(), m.paneWidth()))
	m.preview.GotoTop()
}

func (m *Model) listWidth() int {
	return max(30, m.width/3)
}

func (m *Model) paneWidth() int {
	return max(20, m.width-m.listWidth()-6)
}

func (m *Model) bodyHeight() int {
	return max(5, m.height-8)
}

func (m *Model) resize() {
	m.list.SetSize(m.listWidth(), m.bodyHeight())
	m.editor.SetWidth(m.paneWidth())
	m.editor.SetHeight(m.bodyHeight() - 2)
	m.preview.Width = m.paneWidth()
	m.preview.Height = m.bodyHeight() - 2
	if m.sess != nil {
		m.renderPreview()
	}
}

func (m *Model) cycleCategory(step int) {
	cats := m.sess.Categories()
	i := slices.Index(cats, m.sess.SelectedCategory())
	i = (i + step + len(cats)) % len(cats)
	m.sess.SelectCategory(cats[i])
	m.list.Select(0)
	m.refresh()
	m.followCursor()
}

func (m *Model) addNote() {
	category := m.sess.SelectedCategory()
	if notes.IsReserved(category) {
		category = ""
	}
	if _, err := m.sess.AddNote(category); err != nil {
		m.setError("Add failed", err)
	} else {
		m.setStatus("Added note")
	}
	m.refresh()
}

func (m *Model) trashOrDelete(it listItem) {
	out, err := m.sess.TrashOrDelete(it.id)
	if err != nil {
		m.setError("Delete failed", err)
	}
	switch out {
	case notes.Trashed:
		m.setStatus("Moved to trash: " + it.title)
	case notes.Deleted:
		m.setStatus("Deleted: " + it.title)
	}
	m.refresh()
}

func (m *Model) confirm(msg string, action, cancel func(*Model)) {
	m.confirmMsg = msg
	m.confirmAction = action
	m.confirmCancel = cancel
	m.state = stateConfirm
}

func (m *Model) requestClearTrash() {
	n := m.sess.RequestClearTrash()
	if n == 0 {
		m.sess.CancelClearTrash()
		m.setStatus("Trash is empty")
		return
	}
	m.confirm(
		fmt.Sprintf("Permanently delete %d note(s) in trash? (y/N)", n),
		func(m *Model) {
			removed, err := m.sess.ConfirmClearTrash()
			if err != nil {
				m.setError("Clear trash failed", err)
			} else {
				m.setStatus(fmt.Sprintf("Removed %d note(s)", removed))
			}
			m.refresh()
		},
		func(m *Model) { m.sess.CancelClearTrash() },
	)
}

func (m *Model) copyCurrent() {
	n, ok := m.sess.Current()
	if !ok {
		return
	}
	if err := copyToClipboard(n.Content); err != nil {
		m.setError("Copy failed", err)
		return
	}
	m.setStatus("Copied: " + n.Title())
}

func (m *Model) exportNotes() {
	dir := filepath.Join(m.exportRoot, fmt.Sprintf("bluenotes_export_%d", time.Now().Unix()))
	count, err := export.Dir(dir, m.sess.Store().Notes())
	if err != nil {
		m.setError("Export failed", err)
		return
	}
	m.setStatus(fmt.Sprintf("Exported %d notes to %s/", count, dir))
}

func (m *Model) openExternalEditor() tea.Cmd {
	n, ok := m.sess.Current()
	if !ok {
		return nil
	}
	es, err := utils.NewEditSession(n.Content)
	if err != nil {
		m.setError("Editor failed", err)
		return nil
	}
	return tea.ExecProcess(es.Command(utils.Editor()), func(err error) tea.Msg {
		return editorFinishedMsg{id: n.ID, session: es, err: err}
	})
}

func (m *Model) finishExternalEdit(msg editorFinishedMsg) {
	if msg.err != nil {
		msg.session.Discard()
		m.setError("Editor failed", msg.err)
		return
	}
	content, err := msg.session.Result()
	if err != nil {
		m.setError("Editor failed", err)
		return
	}
	if err := m.sess.UpdateContent(msg.id, content); err != nil {
		m.setError("Save failed", err)
	} else {
		m.setStatus("Edited " + notes.Title(content))
	}
	m.loadEditor(true)
	m.refresh()
}

func (m *Model) changePassword(pw string) error {
	if m.app == nil {
		return fmt.Errorf("no notebook loaded")
	}
	return m.app.ChangePassword(pw)
}

func categoryLabel(name string) string {
	switch name {
	case notes.All:
		return "All notes"
	case notes.Favorites:
		return "Favorites"
	case notes.Trash:
		return "Trash"
	}
	return "#" + name
}
