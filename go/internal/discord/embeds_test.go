package discord

import (
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/mcdev12/souldraw/go/internal/souldraw"
)

func buttonIDs(t *testing.T, rows []discordgo.MessageComponent) []string {
	t.Helper()
	var ids []string
	for _, row := range rows {
		ar, ok := row.(discordgo.ActionsRow)
		if !ok {
			t.Fatalf("component %T is not an actions row", row)
		}
		for _, c := range ar.Components {
			switch v := c.(type) {
			case discordgo.Button:
				ids = append(ids, v.CustomID)
			case discordgo.SelectMenu:
				ids = append(ids, v.CustomID)
			}
		}
	}
	return ids
}

func TestComponentsPerControls(t *testing.T) {
	tests := []struct {
		controls souldraw.Controls
		want     []string
	}{
		{souldraw.ControlsConfirm, []string{ButtonConfirm, ButtonCancel, ButtonToggleMode}},
		{souldraw.ControlsJoin, []string{ButtonJoin, ButtonViewParticipants}},
		{souldraw.ControlsClosed, []string{ButtonViewParticipants}},
		{souldraw.ControlsNone, nil},
	}
	for _, tt := range tests {
		rows := Components(tt.controls)
		if rows == nil {
			t.Errorf("controls %d: nil components would leave old buttons in place", tt.controls)
		}
		got := buttonIDs(t, rows)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("controls %d: buttons = %v, want %v", tt.controls, got, tt.want)
		}
	}
}

func TestDrawingEmbed(t *testing.T) {
	v := souldraw.DisplayModel{
		Title:        souldraw.TitleOngoing,
		Prize:        "Nitro",
		Terms:        "Be nice",
		NumWinners:   2,
		MinText:      "1",
		MaxText:      "No Maximum",
		Remaining:    "1 minute 30 seconds",
		DrawingID:    "d1",
		DrawMode:     "auto",
		Participants: []string{"a", "b"},
		Footer:       "Click the button below to join!",
	}
	e := DrawingEmbed(v)

	if e.Title != souldraw.TitleOngoing || e.Color != colorGold {
		t.Errorf("title/color = %q/%x", e.Title, e.Color)
	}
	for _, want := range []string{
		"**Prize:** Nitro",
		"**Terms:** Be nice",
		"**Number of Winners:** 2",
		"**Max Participants:** No Maximum",
		"**Time Remaining:** 1 minute 30 seconds",
		"Click the button below to join!",
	} {
		if !strings.Contains(e.Description, want) {
			t.Errorf("description missing %q:\n%s", want, e.Description)
		}
	}
	if e.Fields[0].Name != "Souldraw ID" || e.Fields[0].Value != "d1" {
		t.Errorf("id field = %+v", e.Fields[0])
	}
	if len(e.Fields) != 3 {
		t.Errorf("unexpected winners field: %+v", e.Fields)
	}

	v.Winners = []string{"a"}
	v.Title = souldraw.TitleFinished
	e = DrawingEmbed(v)
	last := e.Fields[len(e.Fields)-1]
	if last.Name != "Winners" || last.Value != "<@a>" {
		t.Errorf("winners field = %+v", last)
	}
}

func TestParticipantsEmbed(t *testing.T) {
	if got := ParticipantsEmbed(nil).Description; got != "No participants yet." {
		t.Errorf("empty = %q", got)
	}
	if got := ParticipantsEmbed([]string{"a", "b"}).Description; got != "1. <@a>\n2. <@b>" {
		t.Errorf("list = %q", got)
	}
}

func TestRemoveMenuCapsOptions(t *testing.T) {
	var participants []string
	for i := 0; i < 30; i++ {
		participants = append(participants, fmt.Sprintf("u%d", i))
	}
	rows := RemoveMenu("d1", participants, func(id string) string {
		if id == "u0" {
			return "Alice"
		}
		return ""
	})

	menu := rows[0].(discordgo.ActionsRow).Components[0].(discordgo.SelectMenu)
	if menu.CustomID != "remove_participant:d1" {
		t.Errorf("custom id = %q", menu.CustomID)
	}
	if len(menu.Options) != maxSelectOptions {
		t.Errorf("options = %d, want %d", len(menu.Options), maxSelectOptions)
	}
	if menu.Options[0].Label != "Alice" || menu.Options[1].Label != "Unknown User" || menu.Options[1].Value != "u1" {
		t.Errorf("options = %+v", menu.Options[:2])
	}

	if rows := RemoveMenu("d1", nil, nil); len(rows) != 0 {
		t.Errorf("empty menu rows = %v", rows)
	}
}

func TestRemoveMenuID(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{RemoveMenuID("abc-123"), "abc-123", true},
		{"remove_participant:", "", false},
		{"remove_participant", "", false},
		{ButtonJoin, "", false},
	}
	for _, tt := range tests {
		got, ok := ParseRemoveMenuID(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseRemoveMenuID(%q) = %q, %v", tt.in, got, ok)
		}
	}
}

func TestHelpListsEveryCommand(t *testing.T) {
	help := HelpEmbed()
	listed := map[string]bool{}
	for _, f := range help.Fields {
		listed[f.Name] = true
	}
	for _, c := range Commands() {
		if !listed["/"+c.Name] {
			t.Errorf("help is missing /%s", c.Name)
		}
	}
}
