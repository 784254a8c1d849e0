package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"yoforex-admin/api"
	"yoforex-admin/internal/mutate"
)

// SEOSection hosts the sitemap tooling. Unusually for this console the
// mutation response body is read directly: the toast reports how many URLs
// the backend generated.
type SEOSection struct {
	deps    *Deps
	pending bool
}

func NewSEOSection(deps *Deps) *SEOSection {
	return &SEOSection{deps: deps}
}

func (s *SEOSection) Title() string { return "SEO" }
func (s *SEOSection) Busy() bool    { return false }
func (s *SEOSection) Init() tea.Cmd { return nil }
func (s *SEOSection) Unmount()      {}

func (s *SEOSection) Update(msg tea.Msg) (Section, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "g" && !s.pending {
			s.pending = true
			return s, s.deps.Dispatch.Dispatch(mutate.Request{
				Method: "POST",
				Path:   api.PathSitemap,
				Owner:  s.Title(),
			})
		}
	case mutate.DoneMsg:
		s.pending = false
		if msg.Err != nil {
			return s, func() tea.Msg {
				return ShowToastMsg{Text: "Sitemap generation failed: " + msg.Err.Error(), Level: ToastError}
			}
		}
		res := api.DecodeObject[api.SitemapResult](msg.Body)
		return s, func() tea.Msg {
			return ShowToastMsg{
				Text:  fmt.Sprintf("Sitemap regenerated: %d URLs", res.Generated),
				Level: ToastSuccess,
			}
		}
	}
	return s, nil
}

func (s *SEOSection) View(width, height int) string {
	var b strings.Builder
	b.WriteString("Search engine tooling\n\n")
	if s.pending {
		b.WriteString(staleStyle.Render("Regenerating sitemap...") + "\n")
	} else {
		b.WriteString("Press 'g' to regenerate the sitemap.\n")
	}
	b.WriteString("\n" + blurredStyle.Render("g: regenerate sitemap"))
	return b.String()
}
