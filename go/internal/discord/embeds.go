package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mcdev12/souldraw/go/internal/souldraw"
)

const (
	colorGold = 0xF1C40F
	colorBlue = 0x3498DB
	colorGrey = 0x95A5A6
	colorHelp = 0x0099FF

	// maxSelectOptions is the platform limit for one select menu.
	maxSelectOptions = 25
)

func mention(userID string) string {
	return "<@" + userID + ">"
}

// DrawingEmbed renders an announcement view.
func DrawingEmbed(v souldraw.DisplayModel) *discordgo.MessageEmbed {
	var b strings.Builder
	fmt.Fprintf(&b, "**Prize:** %s\n", v.Prize)
	fmt.Fprintf(&b, "**Terms:** %s\n", v.Terms)
	fmt.Fprintf(&b, "**Number of Winners:** %d\n", v.NumWinners)
	fmt.Fprintf(&b, "**Min Participants:** %s\n", v.MinText)
	fmt.Fprintf(&b, "**Max Participants:** %s\n", v.MaxText)
	fmt.Fprintf(&b, "**Time Remaining:** %s", v.Remaining)
	if v.Footer != "" {
		fmt.Fprintf(&b, "\n\n%s", v.Footer)
	}

	embed := &discordgo.MessageEmbed{
		Title:       v.Title,
		Description: b.String(),
		Color:       colorGold,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Souldraw ID", Value: v.DrawingID, Inline: true},
			{Name: "Draw Mode", Value: v.DrawMode, Inline: true},
			{Name: "Participants", Value: fmt.Sprintf("%d", len(v.Participants)), Inline: true},
		},
	}
	if v.Title == souldraw.TitleCancelled {
		embed.Color = colorGrey
	}
	if len(v.Winners) > 0 {
		names := make([]string, len(v.Winners))
		for i, w := range v.Winners {
			names[i] = mention(w)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Winners",
			Value: strings.Join(names, "\n"),
		})
	}
	return embed
}

// Components returns the interactive rows for a controls set.
func Components(c souldraw.Controls) []discordgo.MessageComponent {
	var buttons []discordgo.MessageComponent
	switch c {
	case souldraw.ControlsConfirm:
		buttons = []discordgo.MessageComponent{
			discordgo.Button{CustomID: ButtonConfirm, Label: "Confirm Souldraw", Style: discordgo.SuccessButton},
			discordgo.Button{CustomID: ButtonCancel, Label: "Cancel Souldraw", Style: discordgo.DangerButton},
			discordgo.Button{CustomID: ButtonToggleMode, Label: "Toggle Draw Mode", Style: discordgo.SecondaryButton},
		}
	case souldraw.ControlsJoin:
		buttons = []discordgo.MessageComponent{
			discordgo.Button{CustomID: ButtonJoin, Label: "🎟️ Join Souldraw!", Style: discordgo.PrimaryButton},
			discordgo.Button{CustomID: ButtonViewParticipants, Label: "👥 View Participants", Style: discordgo.SecondaryButton},
		}
	case souldraw.ControlsClosed:
		buttons = []discordgo.MessageComponent{
			discordgo.Button{CustomID: ButtonViewParticipants, Label: "👥 View Participants", Style: discordgo.SecondaryButton},
		}
	default:
		return []discordgo.MessageComponent{}
	}
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}
}

// ParticipantsEmbed lists participants as numbered mentions.
func ParticipantsEmbed(participants []string) *discordgo.MessageEmbed {
	desc := "No participants yet."
	if len(participants) > 0 {
		lines := make([]string, len(participants))
		for i, p := range participants {
			lines[i] = fmt.Sprintf("%d. %s", i+1, mention(p))
		}
		desc = strings.Join(lines, "\n")
	}
	return &discordgo.MessageEmbed{
		Title:       "👥 Current Participants",
		Description: desc,
		Color:       colorBlue,
	}
}

// RemoveMenu builds the private participant removal menu. label resolves a
// user id to a display name; an empty result falls back to "Unknown User".
// Only the first 25 participants can be offered.
func RemoveMenu(drawingID string, participants []string, label func(userID string) string) []discordgo.MessageComponent {
	if len(participants) == 0 {
		return []discordgo.MessageComponent{}
	}
	if len(participants) > maxSelectOptions {
		participants = participants[:maxSelectOptions]
	}

	options := make([]discordgo.SelectMenuOption, len(participants))
	for i, p := range participants {
		name := ""
		if label != nil {
			name = label(p)
		}
		if name == "" {
			name = "Unknown User"
		}
		options[i] = discordgo.SelectMenuOption{Label: name, Value: p, Description: p}
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    RemoveMenuID(drawingID),
				Placeholder: "Select a participant to remove",
				Options:     options,
			},
		}},
	}
}

type helpEntry struct {
	name, text string
}

var helpEntries = []helpEntry{
	{"/sd", "Start a new souldraw"},
	{"/msd", "Start a new souldraw with multiple winners"},
	{"/cnl", "Cancel an ongoing souldraw (Admin only)"},
	{"/st", "Check the current status of a souldraw"},
	{"/rm", "Remove participants from a souldraw (Admin only)"},
	{"/dr", "Draw the winners of a souldraw now (Admin only)"},
	{"/md", "Switch a souldraw between auto and manual drawing (Admin only)"},
	{"/hlp", "Display a list of commands"},
}

// HelpEmbed lists every command.
func HelpEmbed() *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, len(helpEntries))
	for i, e := range helpEntries {
		fields[i] = &discordgo.MessageEmbedField{Name: e.name, Value: e.text}
	}
	return &discordgo.MessageEmbed{
		Title:       "Souldraw Bot Commands",
		Description: "List of available commands:",
		Color:       colorHelp,
		Fields:      fields,
	}
}
