package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/souldraw/go/internal/souldraw"
)

// Controller is the lifecycle surface driven by interactions.
type Controller interface {
	Create(ctx context.Context, actor souldraw.Actor, req souldraw.CreateRequest) (*souldraw.Outcome, error)
	Confirm(ctx context.Context, actor souldraw.Actor, id string) (*souldraw.Outcome, error)
	Join(ctx context.Context, actor souldraw.Actor, id string) (*souldraw.Outcome, error)
	RemovalCandidates(ctx context.Context, actor souldraw.Actor, id string) ([]string, error)
	RemoveParticipant(ctx context.Context, actor souldraw.Actor, id, userID string) (*souldraw.Outcome, error)
	ToggleMode(ctx context.Context, actor souldraw.Actor, id string) (*souldraw.Outcome, error)
	Cancel(ctx context.Context, actor souldraw.Actor, id string) (*souldraw.Outcome, error)
	Draw(ctx context.Context, actor souldraw.Actor, id string) (*souldraw.Outcome, error)
	Status(ctx context.Context, id string) (souldraw.DisplayModel, error)
	Participants(ctx context.Context, id string) ([]string, error)
	ResolveAnnouncement(messageID string) (string, error)
}

var _ Controller = (*souldraw.App)(nil)

type responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

// Handler routes slash commands and component interactions to the controller.
type Handler struct {
	ctrl       Controller
	client     responder
	adminRoles map[string]bool
	names      func(guildID, userID string) string
	timeout    time.Duration
}

func NewHandler(ctrl Controller, client responder, adminRoleIDs []string, timeout time.Duration) *Handler {
	roles := make(map[string]bool, len(adminRoleIDs))
	for _, r := range adminRoleIDs {
		roles[r] = true
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Handler{
		ctrl:       ctrl,
		client:     client,
		adminRoles: roles,
		timeout:    timeout,
	}
}

// onInteraction is registered on the session.
func (h *Handler) onInteraction(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	h.Handle(ctx, ic.Interaction)
}

// Handle processes a single interaction and always answers it.
func (h *Handler) Handle(ctx context.Context, i *discordgo.Interaction) {
	var resp *discordgo.InteractionResponse
	var err error

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		resp, err = h.handleCommand(ctx, i)
	case discordgo.InteractionMessageComponent:
		resp, err = h.handleComponent(ctx, i)
	default:
		return
	}

	if err != nil {
		h.logFailure(i, err)
		resp = ephemeral(souldraw.UserMessage(err))
	}
	if err := h.client.InteractionRespond(i, resp, discordgo.WithContext(ctx)); err != nil {
		log.Warn().Err(err).Str("interaction_id", i.ID).Msg("failed to respond to interaction")
	}
}

func (h *Handler) handleCommand(ctx context.Context, i *discordgo.Interaction) (*discordgo.InteractionResponse, error) {
	data := i.ApplicationCommandData()
	opts := optionMap(data.Options)
	actor := h.actor(i)

	switch data.Name {
	case CommandCreate, CommandMultiCreate:
		out, err := h.ctrl.Create(ctx, actor, createRequest(data.Name, opts, i.ChannelID))
		if err != nil {
			return nil, err
		}
		return ephemeral(fmt.Sprintf("%s\nSouldraw ID: `%s`", out.Reply, out.Drawing.ID)), nil

	case CommandCancel:
		out, err := h.ctrl.Cancel(ctx, actor, opts.str("id"))
		if err != nil {
			return nil, err
		}
		return public(fmt.Sprintf("%s (**%s**)", out.Reply, out.Drawing.Prize)), nil

	case CommandStatus:
		view, err := h.ctrl.Status(ctx, opts.str("id"))
		if err != nil {
			return nil, err
		}
		return ephemeralEmbed(DrawingEmbed(view), nil), nil

	case CommandRemove:
		id := opts.str("id")
		candidates, err := h.ctrl.RemovalCandidates(ctx, actor, id)
		if err != nil {
			return nil, err
		}
		resp := ephemeralEmbed(ParticipantsEmbed(candidates), RemoveMenu(id, candidates, h.labeler(i.GuildID)))
		resp.Data.Content = "Select a participant to remove:"
		return resp, nil

	case CommandDraw:
		out, err := h.ctrl.Draw(ctx, actor, opts.str("id"))
		if err != nil {
			return nil, err
		}
		return public(out.Reply), nil

	case CommandMode:
		out, err := h.ctrl.ToggleMode(ctx, actor, opts.str("id"))
		if err != nil {
			return nil, err
		}
		return ephemeral(out.Reply), nil

	case CommandHelp:
		return ephemeralEmbed(HelpEmbed(), nil), nil
	}
	return ephemeral("Unknown command."), nil
}

func (h *Handler) handleComponent(ctx context.Context, i *discordgo.Interaction) (*discordgo.InteractionResponse, error) {
	data := i.MessageComponentData()
	actor := h.actor(i)

	if id, ok := ParseRemoveMenuID(data.CustomID); ok {
		return h.handleRemoval(ctx, i, actor, id, data.Values)
	}

	if i.Message == nil {
		return nil, souldraw.ErrNotFound
	}
	id, err := h.ctrl.ResolveAnnouncement(i.Message.ID)
	if err != nil {
		if errors.Is(err, souldraw.ErrNotFound) {
			return ephemeral("There is no ongoing souldraw."), nil
		}
		return nil, err
	}

	var out *souldraw.Outcome
	switch data.CustomID {
	case ButtonJoin:
		out, err = h.ctrl.Join(ctx, actor, id)
	case ButtonConfirm:
		out, err = h.ctrl.Confirm(ctx, actor, id)
	case ButtonCancel:
		out, err = h.ctrl.Cancel(ctx, actor, id)
	case ButtonToggleMode:
		out, err = h.ctrl.ToggleMode(ctx, actor, id)
	case ButtonViewParticipants:
		participants, err := h.ctrl.Participants(ctx, id)
		if err != nil {
			return nil, err
		}
		return ephemeralEmbed(ParticipantsEmbed(participants), nil), nil
	default:
		return ephemeral("Unknown action."), nil
	}
	if err != nil {
		return nil, err
	}
	return ephemeral(out.Reply), nil
}

func (h *Handler) handleRemoval(ctx context.Context, i *discordgo.Interaction, actor souldraw.Actor, id string, values []string) (*discordgo.InteractionResponse, error) {
	if len(values) == 0 {
		return nil, souldraw.ErrNotParticipant
	}
	out, err := h.ctrl.RemoveParticipant(ctx, actor, id, values[0])
	if err != nil {
		return nil, err
	}

	content := "Select a participant to remove:"
	if len(out.Participants) == 0 {
		content = "All participants have been removed."
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Embeds:     []*discordgo.MessageEmbed{ParticipantsEmbed(out.Participants)},
			Components: RemoveMenu(id, out.Participants, h.labeler(i.GuildID)),
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	}, nil
}

// actor identifies the invoking user. Admins hold the ADMINISTRATOR
// permission or one of the configured admin roles.
func (h *Handler) actor(i *discordgo.Interaction) souldraw.Actor {
	if i.Member != nil {
		a := souldraw.Actor{IsAdmin: i.Member.Permissions&discordgo.PermissionAdministrator != 0}
		if i.Member.User != nil {
			a.UserID = i.Member.User.ID
		}
		for _, r := range i.Member.Roles {
			if h.adminRoles[r] {
				a.IsAdmin = true
			}
		}
		return a
	}
	if i.User != nil {
		return souldraw.Actor{UserID: i.User.ID}
	}
	return souldraw.Actor{}
}

func (h *Handler) labeler(guildID string) func(string) string {
	if h.names == nil {
		return nil
	}
	return func(userID string) string {
		return h.names(guildID, userID)
	}
}

func (h *Handler) logFailure(i *discordgo.Interaction, err error) {
	ev := log.Debug()
	if souldraw.CategoryOf(err) == souldraw.CategoryPersistence {
		ev = log.Error()
	}
	ev.Err(err).
		Str("interaction_id", i.ID).
		Str("category", string(souldraw.CategoryOf(err))).
		Msg("interaction rejected")
}

func ephemeral(content string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}
}

func ephemeralEmbed(embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	}
}

func public(content string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:         content,
			AllowedMentions: &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}},
		},
	}
}
