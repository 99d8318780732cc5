package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cotne998/eCommerce-product-page/internal/service"
	"github.com/cotne998/eCommerce-product-page/internal/tui"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the storefront in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts, sessionID)
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "resume an existing session ID (shared with the web page when using redis)")
	return cmd
}

func runTUI(ctx context.Context, opts *rootOptions, sessionID string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	// Log lines would draw over the terminal UI.
	a, err := buildApp(ctx, cfg, zap.NewNop())
	if err != nil {
		return err
	}
	defer a.Close()

	if sessionID == "" || !service.ValidSessionID(sessionID) {
		sessionID = service.NewSessionID()
	}

	p := tea.NewProgram(tui.NewModel(a.service, sessionID), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
