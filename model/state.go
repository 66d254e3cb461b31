package model

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/electr1fy0/bluenotes/app"
	"github.com/electr1fy0/bluenotes/config"
	"github.com/electr1fy0/bluenotes/logger"
	"github.com/electr1fy0/bluenotes/notes"
	"github.com/electr1fy0/bluenotes/render"
)

type state int

const (
	statePass state = iota
	stateBrowse
	stateEdit
	statePreview
	stateSearch
	stateCategory
	stateConfirm
	stateChangePass
)

// Options configures a Model.
type Options struct {
	Config *config.Config
	Log    *logger.Logger

	// App is an already opened application. When nil the model asks for
	// the vault password and opens it itself.
	App *app.App

	// OnOpen runs once the application is available.
	OnOpen func(*app.App)

	// ExportRoot is where export directories are created. Defaults to the
	// working directory.
	ExportRoot string
}

type Model struct {
	state state

	width  int
	height int

	cfg    *config.Config
	log    *logger.Logger
	onOpen func(*app.App)

	app  *app.App
	sess *notes.Session
	term render.Terminal

	pwInput     textinput.Model
	searchInput textinput.Model
	catInput    textinput.Model

	list    list.Model
	editor  textarea.Model
	preview viewport.Model
	editing string

	confirmMsg    string
	confirmAction func(*Model)
	confirmCancel func(*Model)

	exportRoot string

	status    string
	lastError string
}
