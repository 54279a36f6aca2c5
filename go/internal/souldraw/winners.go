package souldraw

import (
	"math/rand"
	"slices"

	"github.com/mcdev12/souldraw/go/internal/models"
)

// DrawResult describes the outcome of a winner selection.
type DrawResult struct {
	DrawingID        string
	Prize            string
	Winners          []string
	ParticipantCount int
	Required         int
	Insufficient     bool
}

// SelectWinners picks up to d.NumWinners distinct participants uniformly at
// random. When fewer participants joined than the minimum, no winners are
// selected and the result is flagged insufficient.
func SelectWinners(d models.Drawing, rng *rand.Rand) DrawResult {
	res := DrawResult{
		DrawingID:        d.ID,
		Prize:            d.Prize,
		ParticipantCount: len(d.Participants),
		Winners:          []string{},
	}
	if d.MinParticipants != nil {
		res.Required = *d.MinParticipants
	}
	if res.ParticipantCount < res.Required {
		res.Insufficient = true
		return res
	}

	n := min(d.NumWinners, len(d.Participants))
	if n <= 0 {
		return res
	}

	// partial Fisher-Yates over a copy
	pool := slices.Clone(d.Participants)
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	res.Winners = pool[:n:n]
	return res
}
