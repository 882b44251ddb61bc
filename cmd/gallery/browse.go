package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Sternrassler/character-gallery/internal/tui"
	"github.com/Sternrassler/character-gallery/pkg/controller"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newBrowseCmd(flags *globalFlags) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the gallery in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			// The TUI owns the terminal; logs only go to an explicit file.
			var logOut io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("opening log file: %w", err)
				}
				defer f.Close()
				logOut = f
			}
			setupLogging(cfg, logOut)

			ctx := cmd.Context()
			deps, err := buildDeps(ctx, cfg)
			if err != nil {
				return err
			}
			defer deps.Close()

			var program *tea.Program
			ctrl := controller.New(deps.Client, controllerConfig(cfg),
				controller.WithObserver(func(v controller.View) {
					if program != nil {
						program.Send(tui.ViewMsg{View: v})
					}
				}),
			)

			program = tea.NewProgram(tui.NewModel(ctx, ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("running tui: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file while the TUI runs")
	return cmd
}
