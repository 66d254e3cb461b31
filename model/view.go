package model

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/electr1fy0/bluenotes/config"
)

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("bluenotes"))
	s.WriteString("\n\n")

	switch m.state {
	case statePass:
		s.WriteString("Enter password to unlock/create notebook:\n\n")
		s.WriteString(m.pwInput.View())
		s.WriteString("\n\n")
		s.WriteString(helpStyle.Render("ctrl+c: quit"))
		m.writeStatus(&s)
		return s.String()

	case stateChangePass:
		s.WriteString("Enter new password:\n\n")
		s.WriteString(m.pwInput.View())
		s.WriteString("\n\n")
		s.WriteString(helpStyle.Render("enter: save  esc: cancel"))
		return s.String()

	case stateConfirm:
		s.WriteString(warningStyle.Render(m.confirmMsg))
		s.WriteString("\n\n")
		s.WriteString(helpStyle.Render("y: confirm  n/esc: cancel"))
		return s.String()
	}

	s.WriteString(m.tabsView())
	s.WriteString("\n")
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.list.View(), m.paneView()))
	s.WriteString("\n")

	switch m.state {
	case stateSearch:
		s.WriteString("Search: " + m.searchInput.View())
		s.WriteString("\n")
		s.WriteString(helpStyle.Render("enter: keep  esc: clear"))
	case stateCategory:
		s.WriteString("New category: " + m.catInput.View())
		s.WriteString("\n")
		s.WriteString(helpStyle.Render("enter: add  esc: cancel"))
	case stateEdit:
		s.WriteString(helpStyle.Render("esc: done editing  ctrl+c: quit"))
	case statePreview:
		s.WriteString(helpStyle.Render("↑/↓: scroll  p: edit  esc: back"))
	default:
		help := []string{"tab:category", "enter:open", "a:add", "d:delete", "f:favorite", "p:edit/preview", "/:search"}
		if m.sess.Query() != "" {
			help = append(help, "c:clear search")
		}
		help = append(help, "n:new category", "X:clear trash", "E:editor", "y:copy", "e:export")
		if m.app != nil && m.cfg.Storage.Backend == config.BackendVault {
			help = append(help, "P:change password")
		}
		help = append(help, "q:quit")
		s.WriteString(helpStyle.Render(strings.Join(help, "  ")))
	}

	if q := m.sess.Query(); q != "" && m.state != stateSearch {
		s.WriteString("\n")
		s.WriteString(helpStyle.Render(fmt.Sprintf("search: '%s'", q)))
	}
	m.writeStatus(&s)
	return s.String()
}

func (m Model) tabsView() string {
	var tabs []string
	for _, c := range m.sess.Categories() {
		style := tabStyle
		if c == m.sess.SelectedCategory() {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(c))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) paneView() string {
	style := paneStyle
	if m.state == stateEdit || m.state == statePreview {
		style = focusedPaneStyle
	}
	style = style.Width(m.paneWidth()).Height(m.bodyHeight() - 2)

	if len(m.list.Items()) == 0 && m.state != stateEdit {
		return style.Render(helpStyle.Render("No notes available"))
	}
	n, ok := m.sess.Current()
	if !ok {
		return style.Render(helpStyle.Render("No notes available"))
	}

	header := titleStyle.Render(n.Title())
	if m.sess.Markdown() {
		return style.Render(header + "\n" + m.preview.View())
	}
	return style.Render(header + "\n" + m.editor.View())
}

func (m Model) writeStatus(s *strings.Builder) {
	if m.status == "" {
		return
	}
	s.WriteString("\n")
	if m.lastError != "" {
		s.WriteString(errorStyle.Render(m.status))
	} else {
		s.WriteString(successStyle.Render(m.status))
	}
}
