package souldraw

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mcdev12/souldraw/go/internal/models"
)

const (
	TitlePending   = "✨ New Souldraw ✨"
	TitleOngoing   = "✨ Ongoing Souldraw ✨"
	TitleEnded     = "✨ Souldraw Ended ✨"
	TitleFinished  = "✨ Souldraw Finished ✨"
	TitleCancelled = "Souldraw Cancelled"
)

// DisplayModel is the platform-neutral content of an announcement.
type DisplayModel struct {
	Title        string   `json:"title"`
	Prize        string   `json:"prize"`
	Terms        string   `json:"terms"`
	NumWinners   int      `json:"num_winners"`
	MinText      string   `json:"min_participants"`
	MaxText      string   `json:"max_participants"`
	Remaining    string   `json:"time_remaining"`
	DrawingID    string   `json:"drawing_id"`
	DrawMode     string   `json:"draw_mode"`
	Participants []string `json:"participants"`
	Winners      []string `json:"winners"`
	Drawn        bool     `json:"drawn"`
	Footer       string   `json:"footer"`
}

// BuildView renders d as it should appear at now.
func BuildView(d models.Drawing, phase Phase, now time.Time) DisplayModel {
	v := DisplayModel{
		Prize:        d.Prize,
		Terms:        d.Terms,
		NumWinners:   d.NumWinners,
		MinText:      boundText(d.MinParticipants, "No Minimum"),
		MaxText:      boundText(d.MaxParticipants, "No Maximum"),
		Remaining:    FormatRemaining(d.Remaining(now)),
		DrawingID:    d.ID,
		DrawMode:     string(d.DrawMode),
		Participants: slices.Clone(d.Participants),
		Winners:      slices.Clone(d.Winners),
		Drawn:        d.Drawn,
	}

	switch {
	case d.IsCancelled():
		v.Title = TitleCancelled
		v.Remaining = FormatRemaining(0)
		v.Footer = "This souldraw was cancelled."
	case d.Drawn:
		v.Title = TitleFinished
		v.Remaining = FormatRemaining(0)
		if len(d.Winners) == 0 {
			v.Footer = "No winners were drawn."
		} else {
			v.Footer = "Congratulations to the winners!"
		}
	case phase == PhasePending:
		v.Title = TitlePending
		v.Footer = "Waiting for an admin to confirm this souldraw."
	case phase == PhaseAwaitingDraw:
		v.Title = TitleEnded
		v.Footer = "Waiting for an admin to draw the winners."
	default:
		v.Title = TitleOngoing
		v.Footer = "Click the button below to join!"
	}
	return v
}

func boundText(v *int, unset string) string {
	if v == nil {
		return unset
	}
	return strconv.Itoa(*v)
}

// FormatRemaining renders d as "1 day 2 hours 5 seconds", omitting zero
// units. Partial seconds are truncated, so anything under one second,
// including a drawing that can still be joined, renders as "0 seconds".
func FormatRemaining(d time.Duration) string {
	total := int64(d / time.Second)
	if total <= 0 {
		return "0 seconds"
	}

	units := []struct {
		name string
		secs int64
	}{
		{"day", 86400},
		{"hour", 3600},
		{"minute", 60},
		{"second", 1},
	}

	var parts []string
	for _, u := range units {
		n := total / u.secs
		total %= u.secs
		if n == 0 {
			continue
		}
		name := u.name
		if n != 1 {
			name += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, name))
	}
	return strings.Join(parts, " ")
}

// ResultText summarises a finished draw for the result reply.
func ResultText(r DrawResult, mention func(string) string) string {
	if r.Insufficient {
		return fmt.Sprintf("The souldraw for **%s** ended without winners: insufficient participants (%d joined, %d required).",
			r.Prize, r.ParticipantCount, r.Required)
	}
	if len(r.Winners) == 0 {
		return fmt.Sprintf("The souldraw for **%s** ended without winners: nobody joined.", r.Prize)
	}
	names := make([]string, len(r.Winners))
	for i, w := range r.Winners {
		names[i] = mention(w)
	}
	return fmt.Sprintf("🎉 Congratulations %s! You won **%s**!", strings.Join(names, ", "), r.Prize)
}
