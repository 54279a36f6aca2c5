package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/souldraw/go/internal/config"
	"github.com/mcdev12/souldraw/go/internal/discord"
	"github.com/mcdev12/souldraw/go/internal/scheduler"
	"github.com/mcdev12/souldraw/go/internal/souldraw"
	"github.com/mcdev12/souldraw/go/internal/souldraw/events"
	"github.com/mcdev12/souldraw/go/internal/souldraw/gateway"
	"github.com/mcdev12/souldraw/go/internal/sqlutil"
)

type Services struct {
	App       *souldraw.App
	Bot       *discord.Bot
	Feed      *gateway.ConnectionManager
	JetStream *events.JetStreamPublisher
	Scheduler *scheduler.Scheduler
}

func setupServices(ctx context.Context, cfg config.Config, database *sql.DB, dialect sqlutil.Dialect) (*Services, error) {
	// Wire up dependency injection chain
	// Database layer → Repository layer → App layer → Discord adapter

	// Event publishers: the websocket feed always, JetStream when configured
	feed := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	publishers := events.Multi{feed}

	var js *events.JetStreamPublisher
	if cfg.Events.NATSURL != "" {
		jsCfg := events.DefaultJetStreamConfig()
		jsCfg.URL = cfg.Events.NATSURL
		jsCfg.StreamName = cfg.Events.StreamName
		jsCfg.SubjectPrefix = cfg.Events.SubjectPrefix

		var err error
		js, err = events.NewJetStreamPublisher(jsCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream publisher: %w", err)
		}
		publishers = append(publishers, js)
	} else {
		log.Info().Msg("NATS_URL not set, lifecycle events are only sent to the websocket feed")
	}

	session, err := discord.NewSession(cfg.Discord.Token)
	if err != nil {
		if js != nil {
			js.Close()
		}
		return nil, err
	}

	sched := scheduler.New(ctx, clockwork.NewRealClock())

	repo := souldraw.NewRepository(database, dialect)
	app := souldraw.NewApp(repo, discord.NewAnnouncer(session), publishers, sched, souldraw.Config{
		RefreshInterval:    cfg.Souldraw.RefreshInterval,
		MaxRefreshFailures: cfg.Souldraw.MaxRefreshFailures,
		DefaultChannelID:   cfg.Discord.ChannelID,
		CallTimeout:        cfg.Souldraw.CallTimeout,
	})

	bot := discord.NewBot(session, app, discord.Config{
		Token:        cfg.Discord.Token,
		GuildID:      cfg.Discord.GuildID,
		AdminRoleIDs: cfg.Discord.AdminRoleIDs,
		CallTimeout:  cfg.Souldraw.CallTimeout,
	})

	return &Services{
		App:       app,
		Bot:       bot,
		Feed:      feed,
		JetStream: js,
		Scheduler: sched,
	}, nil
}
