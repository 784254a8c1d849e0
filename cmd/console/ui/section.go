package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"yoforex-admin/api"
	"yoforex-admin/internal/config"
	"yoforex-admin/internal/mutate"
	"yoforex-admin/internal/query"
)

// Deps are the shared client-side services, built once in main and threaded
// through every section.
type Deps struct {
	Store    *query.Store
	Dispatch *mutate.Dispatcher
	Client   *api.Client
	Cfg      config.AppConfig
}

// Section is one admin view. Exactly one section is mounted at a time;
// Unmount must drop its query subscriptions so interval refetches stop.
type Section interface {
	Title() string
	Init() tea.Cmd
	Update(msg tea.Msg) (Section, tea.Cmd)
	View(width, height int) string
	Unmount()
	// Busy sections (open dialog, focused text input) keep digit keys to
	// themselves instead of letting the root switch sections.
	Busy() bool
}
