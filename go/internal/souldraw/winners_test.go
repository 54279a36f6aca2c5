package souldraw

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/mcdev12/souldraw/go/internal/models"
)

func TestSelectWinnersDistinctAndBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	participants := []string{"a", "b", "c", "d", "e", "f"}

	for n := 1; n <= 8; n++ {
		d := models.Drawing{ID: "d", NumWinners: n, Participants: participants}
		res := SelectWinners(d, rng)

		want := min(n, len(participants))
		if len(res.Winners) != want {
			t.Fatalf("n=%d: got %d winners, want %d", n, len(res.Winners), want)
		}
		seen := map[string]bool{}
		for _, w := range res.Winners {
			if seen[w] {
				t.Fatalf("n=%d: duplicate winner %q", n, w)
			}
			if !slices.Contains(participants, w) {
				t.Fatalf("n=%d: winner %q not a participant", n, w)
			}
			seen[w] = true
		}
	}

	if !slices.Equal(participants, []string{"a", "b", "c", "d", "e", "f"}) {
		t.Error("participants slice was mutated")
	}
}

func TestSelectWinnersCoversEveryParticipant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	d := models.Drawing{NumWinners: 1, Participants: []string{"a", "b", "c"}}

	counts := map[string]int{}
	for i := 0; i < 300; i++ {
		counts[SelectWinners(d, rng).Winners[0]]++
	}
	for _, p := range d.Participants {
		if counts[p] == 0 {
			t.Errorf("participant %q never won in 300 draws", p)
		}
	}
}

func TestSelectWinnersInsufficient(t *testing.T) {
	d := models.Drawing{
		NumWinners:      1,
		MinParticipants: intPtr(3),
		Participants:    []string{"a", "b"},
	}
	res := SelectWinners(d, rand.New(rand.NewSource(1)))
	if !res.Insufficient || len(res.Winners) != 0 {
		t.Errorf("result = %+v", res)
	}
	if res.Winners == nil {
		t.Error("winners should be an empty, non-nil slice")
	}
}

func TestSelectWinnersNoParticipants(t *testing.T) {
	res := SelectWinners(models.Drawing{NumWinners: 2}, rand.New(rand.NewSource(1)))
	if res.Insufficient || len(res.Winners) != 0 {
		t.Errorf("result = %+v", res)
	}
}
