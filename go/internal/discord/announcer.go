package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/mcdev12/souldraw/go/internal/souldraw"
)

// messenger is the subset of *discordgo.Session the announcer needs.
type messenger interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

// Announcer posts and maintains drawing announcements in Discord channels.
type Announcer struct {
	client messenger
}

var _ souldraw.Announcer = (*Announcer)(nil)

func NewAnnouncer(client messenger) *Announcer {
	return &Announcer{client: client}
}

// Post sends a new announcement.
func (a *Announcer) Post(ctx context.Context, channelID string, view souldraw.DisplayModel, controls souldraw.Controls) (souldraw.MessageRef, error) {
	if channelID == "" {
		return souldraw.MessageRef{}, fmt.Errorf("post announcement: no channel")
	}
	msg, err := a.client.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{DrawingEmbed(view)},
		Components: Components(controls),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return souldraw.MessageRef{}, fmt.Errorf("post announcement: %w", err)
	}
	return souldraw.MessageRef{ChannelID: msg.ChannelID, MessageID: msg.ID}, nil
}

// Edit replaces the embed and components of an announcement.
func (a *Announcer) Edit(ctx context.Context, ref souldraw.MessageRef, view souldraw.DisplayModel, controls souldraw.Controls) error {
	embeds := []*discordgo.MessageEmbed{DrawingEmbed(view)}
	components := Components(controls)

	edit := discordgo.NewMessageEdit(ref.ChannelID, ref.MessageID)
	edit.Embeds = &embeds
	edit.Components = &components
	if _, err := a.client.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("edit announcement %s: %w", ref.MessageID, err)
	}
	return nil
}

// Delete removes an announcement.
func (a *Announcer) Delete(ctx context.Context, ref souldraw.MessageRef) error {
	if err := a.client.ChannelMessageDelete(ref.ChannelID, ref.MessageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("delete announcement %s: %w", ref.MessageID, err)
	}
	return nil
}

// AnnounceResult replies to the announcement with the draw outcome. Without an
// announcement the result goes straight to channelID.
func (a *Announcer) AnnounceResult(ctx context.Context, ref souldraw.MessageRef, channelID string, result souldraw.DrawResult) error {
	send := &discordgo.MessageSend{
		Content: souldraw.ResultText(result, mention),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{},
			Users: result.Winners,
		},
	}
	target := channelID
	if !ref.IsZero() {
		target = ref.ChannelID
		fail := false
		send.Reference = &discordgo.MessageReference{
			ChannelID:       ref.ChannelID,
			MessageID:       ref.MessageID,
			FailIfNotExists: &fail,
		}
	}
	if target == "" {
		return fmt.Errorf("announce result of %s: no channel", result.DrawingID)
	}
	if _, err := a.client.ChannelMessageSendComplex(target, send, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("announce result of %s: %w", result.DrawingID, err)
	}
	return nil
}
