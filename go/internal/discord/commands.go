package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/mcdev12/souldraw/go/internal/souldraw"
)

// Slash command names.
const (
	CommandCreate      = "sd"
	CommandMultiCreate = "msd"
	CommandCancel      = "cnl"
	CommandStatus      = "st"
	CommandRemove      = "rm"
	CommandDraw        = "dr"
	CommandMode        = "md"
	CommandHelp        = "hlp"
)

var minOne = 1.0

func idOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "id",
		Description: description,
		Required:    true,
	}
}

func createOptions(multi bool) []*discordgo.ApplicationCommandOption {
	opts := []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "time",
			Description: "Duration of the souldraw (e.g. 30s, 10m, 2h, 1d)",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "prize",
			Description: "Prize for the souldraw",
			Required:    true,
		},
	}
	if multi {
		opts = append(opts, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "num_winners",
			Description: "Number of winners",
			Required:    true,
			MinValue:    &minOne,
		})
	}
	return append(opts,
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "min",
			Description: "Minimum number of participants",
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "max",
			Description: "Maximum number of participants",
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "terms",
			Description: "Terms and conditions for the souldraw",
		},
	)
}

// Commands returns the slash commands the bot registers.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{Name: CommandCreate, Description: "Start a new souldraw", Options: createOptions(false)},
		{Name: CommandMultiCreate, Description: "Start a new souldraw with multiple winners", Options: createOptions(true)},
		{Name: CommandCancel, Description: "Cancel an ongoing souldraw", Options: []*discordgo.ApplicationCommandOption{idOption("ID of the souldraw to cancel")}},
		{Name: CommandStatus, Description: "Check the current status of a souldraw", Options: []*discordgo.ApplicationCommandOption{idOption("ID of the souldraw to check")}},
		{Name: CommandRemove, Description: "Remove participants from a souldraw (Admin only)", Options: []*discordgo.ApplicationCommandOption{idOption("ID of the souldraw to remove from")}},
		{Name: CommandDraw, Description: "Draw the winners of a souldraw now (Admin only)", Options: []*discordgo.ApplicationCommandOption{idOption("ID of the souldraw to draw")}},
		{Name: CommandMode, Description: "Toggle auto/manual drawing (Admin only)", Options: []*discordgo.ApplicationCommandOption{idOption("ID of the souldraw to change")}},
		{Name: CommandHelp, Description: "Display a list of commands"},
	}
}

type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) options {
	m := make(options, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

func (o options) str(name string) string {
	opt, ok := o[name]
	if !ok || opt.Type != discordgo.ApplicationCommandOptionString {
		return ""
	}
	return opt.StringValue()
}

func (o options) intPtr(name string) *int {
	opt, ok := o[name]
	if !ok || opt.Type != discordgo.ApplicationCommandOptionInteger {
		return nil
	}
	v := int(opt.IntValue())
	return &v
}

// createRequest turns /sd or /msd options into a create request. /sd always
// draws a single winner.
func createRequest(name string, opts options, channelID string) souldraw.CreateRequest {
	req := souldraw.CreateRequest{
		Duration:        opts.str("time"),
		Prize:           opts.str("prize"),
		Terms:           opts.str("terms"),
		MinParticipants: opts.intPtr("min"),
		MaxParticipants: opts.intPtr("max"),
		NumWinners:      1,
		ChannelID:       channelID,
	}
	if name == CommandMultiCreate {
		if n := opts.intPtr("num_winners"); n != nil {
			req.NumWinners = *n
		}
	}
	return req
}
