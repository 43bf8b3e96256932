package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/yukikurage/team-task-board/internal/board"
	"github.com/yukikurage/team-task-board/internal/client"
	"github.com/yukikurage/team-task-board/internal/config"
	"github.com/yukikurage/team-task-board/internal/database"
	"github.com/yukikurage/team-task-board/internal/identity"
	"github.com/yukikurage/team-task-board/internal/logging"
)

func newUIDCommand() *cobra.Command {
	var email, username string
	cmd := &cobra.Command{
		Use:   "uid",
		Short: "Print the uid a user with this email and username gets",
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := identity.DeriveUID(strings.TrimSpace(email), strings.TrimSpace(username))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), uid)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "user email")
	cmd.Flags().StringVar(&username, "username", "", "user name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newMigrateCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.New(cfg.LogLevel, cfg.LogFormat)

			db, err := database.Connect(cfg)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			}()

			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			logger.Info("migrations applied", "driver", cfg.DBDriver)
			return nil
		},
	}
}

func newBoardCommand(cfg *config.Config) *cobra.Command {
	var (
		apiURL string
		uid    string
		teamID uint64
	)
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the terminal task board",
		RunE: func(cmd *cobra.Command, args []string) error {
			if uid == "" && teamID == 0 {
				return errors.New("either --uid or --team is required")
			}
			ctx := cmd.Context()
			api := client.New(strings.TrimRight(apiURL, "/"), client.WithHTTPClient(&http.Client{Timeout: 15 * time.Second}))

			var m *board.Model
			if teamID != 0 {
				m = board.NewTeam(ctx, api, teamID)
			} else {
				if _, err := api.GetUser(ctx, uid); err != nil {
					return fmt.Errorf("unknown uid %q: %w", uid, err)
				}
				m = board.New(ctx, api, uid)
			}

			final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}
			if fm, ok := final.(*board.Model); ok && fm.Err() != nil {
				return fm.Err()
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", cfg.APIBaseURL, "REST API base URL")
	cmd.Flags().StringVar(&uid, "uid", "", "show this user's board")
	cmd.Flags().Uint64Var(&teamID, "team", 0, "show this team's board instead")
	return cmd
}
