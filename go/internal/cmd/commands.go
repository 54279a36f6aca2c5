package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mcdev12/souldraw/go/internal/models"
	"github.com/mcdev12/souldraw/go/internal/souldraw"
	"github.com/mcdev12/souldraw/go/internal/sqlutil"
)

// serveCmd runs the bot until SIGINT or SIGTERM.
func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect to Discord and run souldraws",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, dbCfg, err := loadSettings(*configPath)
			if err != nil {
				return err
			}
			if cfg.Discord.Token == "" {
				return errors.New("DISCORD_TOKEN is required")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			database, err := setupDatabase(ctx, dbCfg)
			if err != nil {
				return err
			}
			defer database.Close()

			services, err := setupServices(ctx, cfg, database, dbCfg.Driver)
			if err != nil {
				return err
			}

			go services.Feed.Start(ctx)

			if err := services.Bot.Open(ctx); err != nil {
				return err
			}

			restored, err := services.App.Restore(ctx)
			if err != nil {
				log.Error().Err(err).Msg("failed to restore souldraws")
			} else {
				log.Info().Int("count", restored).Msg("restored ongoing souldraws")
			}

			server := setupServer(cfg.Server.Port, services.App, services.Feed)
			go func() {
				log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error().Err(err).Msg("HTTP server failed")
					stop()
				}
			}()

			<-ctx.Done()
			log.Info().Msg("received shutdown signal")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("HTTP server shutdown failed")
			}

			services.App.Shutdown()
			if err := services.Bot.Close(); err != nil {
				log.Error().Err(err).Msg("discord shutdown failed")
			}
			if services.JetStream != nil {
				if err := services.JetStream.Close(); err != nil {
					log.Error().Err(err).Msg("NATS drain failed")
				}
			}
			services.Scheduler.Wait()

			log.Info().Msg("souldraw shutdown complete")
			return nil
		},
	}
}

// migrateCmd creates the souldraws table.
func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the souldraws table",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, dbCfg, err := loadSettings(*configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if dbCfg.Driver == sqlutil.Postgres {
				if err := migratePostgres(ctx, dbCfg); err != nil {
					return err
				}
			} else {
				database, err := setupDatabase(ctx, dbCfg)
				if err != nil {
					return err
				}
				database.Close()
			}

			fmt.Printf("Schema applied to %s\n", dbCfg.String())
			return nil
		},
	}
}

// listCmd prints the drawings that would be restored on the next start.
func listCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List ongoing souldraws from the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, dbCfg, err := loadSettings(*configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			database, err := setupDatabase(ctx, dbCfg)
			if err != nil {
				return err
			}
			defer database.Close()

			now := time.Now()
			drawings, err := souldraw.NewRepository(database, dbCfg.Driver).LoadOngoing(ctx, now)
			if err != nil {
				return fmt.Errorf("failed to load souldraws: %w", err)
			}
			printDrawings(drawings, now)
			return nil
		},
	}
}

func printDrawings(drawings []models.Drawing, now time.Time) {
	if len(drawings) == 0 {
		fmt.Println("No ongoing souldraws.")
		return
	}
	for _, d := range drawings {
		fmt.Printf("%s  %s\n", color.New(color.Bold).Sprint(d.ID), d.Prize)
		fmt.Printf("    mode: %s  state: %s  participants: %d  winners: %d\n",
			d.DrawMode, stateLabel(d), len(d.Participants), d.NumWinners)
		fmt.Printf("    remaining: %s\n", remainingLabel(d, now))
	}
}

func stateLabel(d models.Drawing) string {
	if !d.Confirmed {
		return color.New(color.FgYellow).Sprint("PENDING")
	}
	return color.New(color.FgGreen).Sprint("ACTIVE")
}

func remainingLabel(d models.Drawing, now time.Time) string {
	if left := d.Remaining(now); left > 0 {
		return souldraw.FormatRemaining(left)
	}
	return color.New(color.FgRed).Sprint("overdue")
}
