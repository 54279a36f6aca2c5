package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Config holds the Discord connection settings.
type Config struct {
	Token        string
	GuildID      string
	AdminRoleIDs []string
	CallTimeout  time.Duration
}

// NewSession creates a bot session with the gateway intents the bot needs.
func NewSession(token string) (*discordgo.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("discord token is required")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds
	return s, nil
}

// Bot connects the controller to a Discord session.
type Bot struct {
	session *discordgo.Session
	handler *Handler
	cfg     Config

	removeHandlers []func()
}

func NewBot(session *discordgo.Session, ctrl Controller, cfg Config) *Bot {
	h := NewHandler(ctrl, session, cfg.AdminRoleIDs, cfg.CallTimeout)
	h.names = stateNames(session.State)
	return &Bot{
		session: session,
		handler: h,
		cfg:     cfg,
	}
}

// Open connects to the gateway and registers the slash commands.
func (b *Bot) Open(ctx context.Context) error {
	b.removeHandlers = append(b.removeHandlers,
		b.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
			log.Info().
				Str("user", r.User.Username).
				Int("guilds", len(r.Guilds)).
				Msg("discord session ready")
		}),
		b.session.AddHandler(b.handler.onInteraction),
	)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}

	appID := b.session.State.User.ID
	cmds, err := b.session.ApplicationCommandBulkOverwrite(appID, b.cfg.GuildID, Commands(), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to register slash commands: %w", err)
	}
	log.Info().
		Int("commands", len(cmds)).
		Str("guild_id", b.cfg.GuildID).
		Msg("slash commands registered")
	return nil
}

// Close detaches handlers and closes the gateway connection.
func (b *Bot) Close() error {
	for _, remove := range b.removeHandlers {
		remove()
	}
	b.removeHandlers = nil
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("failed to close discord session: %w", err)
	}
	return nil
}

// stateNames resolves display names from the session's member cache.
func stateNames(state *discordgo.State) func(guildID, userID string) string {
	return func(guildID, userID string) string {
		if state == nil || guildID == "" {
			return ""
		}
		m, err := state.Member(guildID, userID)
		if err != nil || m.User == nil {
			return ""
		}
		return m.DisplayName()
	}
}
