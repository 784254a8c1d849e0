package ui

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/bubbles/table"

	"yoforex-admin/api"
)

// buildSections assembles the section list in sidebar order. Keys 1-9 and 0
// jump directly; anything else falls back to Overview.
func buildSections(deps *Deps) []Section {
	return []Section{
		NewOverviewSection(deps),
		NewModerationSection(deps),
		NewUsersSection(deps),
		NewListSection(deps, analyticsConfig()),
		NewListSection(deps, financeConfig()),
		NewListSection(deps, gamificationConfig()),
		NewSEOSection(deps),
		NewListSection(deps, integrationsConfig()),
		NewListSection(deps, abTestsConfig()),
		NewLogsSection(deps),
	}
}

func analyticsConfig() ListConfig {
	return ListConfig{
		Name: "Analytics",
		Path: api.PathAnalytics,
		Columns: []table.Column{
			{Title: "Date", Width: 12},
			{Title: "Visits", Width: 10},
			{Title: "Signups", Width: 10},
			{Title: "Posts", Width: 10},
		},
		Filters: map[string]any{"period": "30d"},
		Rows: func(raw json.RawMessage) ([]table.Row, int) {
			list := api.DecodeList[api.AnalyticsPoint](raw)
			rows := make([]table.Row, len(list.Items))
			for i, p := range list.Items {
				rows[i] = table.Row{p.Date, fmt.Sprintf("%d", p.Visits), fmt.Sprintf("%d", p.Signups), fmt.Sprintf("%d", p.Posts)}
			}
			return rows, list.Pages
		},
	}
}

func financeConfig() ListConfig {
	return ListConfig{
		Name: "Finance",
		Path: api.PathTransactions,
		Columns: []table.Column{
			{Title: "ID", Width: 10},
			{Title: "User", Width: 16},
			{Title: "Kind", Width: 14},
			{Title: "Amount", Width: 12},
			{Title: "Status", Width: 10},
		},
		Rows: func(raw json.RawMessage) ([]table.Row, int) {
			list := api.DecodeList[api.Transaction](raw)
			rows := make([]table.Row, len(list.Items))
			for i, t := range list.Items {
				rows[i] = table.Row{t.ID, t.Username, t.Kind, fmt.Sprintf("%.2f %s", t.Amount, t.Currency), t.Status}
			}
			return rows, list.Pages
		},
	}
}

func gamificationConfig() ListConfig {
	return ListConfig{
		Name: "Gamification",
		Path: api.PathGamification,
		Columns: []table.Column{
			{Title: "Rule", Width: 28},
			{Title: "Coins", Width: 8},
			{Title: "Enabled", Width: 8},
		},
		Rows: func(raw json.RawMessage) ([]table.Row, int) {
			type rule struct {
				Name    string `json:"name"`
				Coins   int    `json:"coins"`
				Enabled bool   `json:"enabled"`
			}
			list := api.DecodeList[rule](raw)
			rows := make([]table.Row, len(list.Items))
			for i, r := range list.Items {
				rows[i] = table.Row{r.Name, fmt.Sprintf("%d", r.Coins), fmt.Sprintf("%t", r.Enabled)}
			}
			return rows, list.Pages
		},
	}
}

func integrationsConfig() ListConfig {
	return ListConfig{
		Name: "Integrations",
		Path: api.PathIntegrations,
		Columns: []table.Column{
			{Title: "Integration", Width: 22},
			{Title: "Status", Width: 12},
			{Title: "Last sync", Width: 20},
		},
		Rows: func(raw json.RawMessage) ([]table.Row, int) {
			type integration struct {
				Name     string `json:"name"`
				Status   string `json:"status"`
				LastSync string `json:"lastSync"`
			}
			list := api.DecodeList[integration](raw)
			rows := make([]table.Row, len(list.Items))
			for i, it := range list.Items {
				rows[i] = table.Row{it.Name, it.Status, it.LastSync}
			}
			return rows, list.Pages
		},
	}
}

func abTestsConfig() ListConfig {
	return ListConfig{
		Name: "A/B Tests",
		Path: api.PathABTests,
		Columns: []table.Column{
			{Title: "Experiment", Width: 26},
			{Title: "Status", Width: 10},
			{Title: "Variants", Width: 10},
			{Title: "Winner", Width: 12},
		},
		Rows: func(raw json.RawMessage) ([]table.Row, int) {
			type experiment struct {
				Name     string `json:"name"`
				Status   string `json:"status"`
				Variants int    `json:"variants"`
				Winner   string `json:"winner"`
			}
			list := api.DecodeList[experiment](raw)
			rows := make([]table.Row, len(list.Items))
			for i, e := range list.Items {
				rows[i] = table.Row{e.Name, e.Status, fmt.Sprintf("%d", e.Variants), e.Winner}
			}
			return rows, list.Pages
		},
	}
}
