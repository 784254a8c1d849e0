package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"yoforex-admin/api"
	"yoforex-admin/cmd/console/ui"
	"yoforex-admin/internal/config"
	"yoforex-admin/internal/logger"
	"yoforex-admin/internal/mutate"
	"yoforex-admin/internal/query"
	"yoforex-admin/internal/session"
)

func main() {
	var (
		configPath string
		apiBase    string
		logPath    string
	)

	root := &cobra.Command{
		Use:   "console",
		Short: "YoForex admin console",
		Long:  "Terminal back-office for the YoForex platform: moderation, users, analytics, finance, SEO and system logs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Init(configPath)
			if apiBase != "" {
				cfg.APIBaseURL = apiBase
			}
			if logPath != "" {
				cfg.LogPath = logPath
			}
			if err := logger.Init(cfg.LogPath); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			sess := session.NewStore(cfg.TokenPath)
			client := api.New(cfg.APIBaseURL, cfg.RequestTimeout, sess.Token)
			store := query.NewStore(client, cfg.RequestTimeout, cfg.RefetchEvery)
			dispatcher := mutate.NewDispatcher(client, store, cfg.RequestTimeout)

			deps := &ui.Deps{Store: store, Dispatch: dispatcher, Client: client, Cfg: cfg}
			p := tea.NewProgram(ui.NewRootModel(deps, sess), tea.WithAltScreen())

			stopWatch, err := config.Watch(configPath, func(c config.AppConfig) {
				// Command-line overrides outrank the file, reload included.
				if apiBase != "" {
					c.APIBaseURL = apiBase
				}
				if logPath != "" {
					c.LogPath = logPath
				}
				p.Send(ui.ConfigChangedMsg{Cfg: c})
			})
			if err != nil {
				logger.Errorf("config watch unavailable: %v", err)
			} else {
				defer stopWatch()
			}

			_, err = p.Run()
			return err
		},
	}

	root.Flags().StringVarP(&configPath, "config", "c", "", "path to config.yaml")
	root.Flags().StringVar(&apiBase, "api", "", "API base URL (overrides config)")
	root.Flags().StringVar(&logPath, "log", "", "log file path (overrides config)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
