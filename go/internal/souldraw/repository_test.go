package souldraw

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mcdev12/souldraw/go/internal/models"
	"github.com/mcdev12/souldraw/go/internal/sqlutil"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// a second pooled connection would see a different in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	if err := Migrate(ctx, db, sqlutil.SQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// applying twice must be harmless
	if err := Migrate(ctx, db, sqlutil.SQLite); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	return NewRepository(db, sqlutil.SQLite)
}

func sampleDrawing(id string, end time.Time) models.Drawing {
	return models.Drawing{
		ID:              id,
		Prize:           "Nitro",
		Terms:           DefaultTerms,
		MinParticipants: intPtr(2),
		NumWinners:      1,
		Participants:    []string{},
		EndTime:         end,
		DrawMode:        models.DrawModeAuto,
		ChannelID:       "c1",
		CreatedBy:       "admin",
		CreatedAt:       end.Add(-time.Hour),
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	end := time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC)

	if err := repo.Insert(ctx, sampleDrawing("d1", end)); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := repo.GetDrawing(ctx, "d1")
	if err != nil {
		t.Fatalf("GetDrawing: %v", err)
	}
	if got.Prize != "Nitro" || got.ChannelID != "c1" || got.CreatedBy != "admin" {
		t.Errorf("drawing = %+v", got)
	}
	if got.MinParticipants == nil || *got.MinParticipants != 2 || got.MaxParticipants != nil {
		t.Errorf("bounds = %v / %v", got.MinParticipants, got.MaxParticipants)
	}
	if !got.EndTime.Equal(end) {
		t.Errorf("end time = %v, want %v", got.EndTime, end)
	}
	if got.Drawn || got.Confirmed || len(got.Participants) != 0 {
		t.Errorf("initial state = %+v", got)
	}

	if err := repo.MarkConfirmed(ctx, "d1"); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpdateParticipants(ctx, "d1", []string{"alice", "bob"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpdateMode(ctx, "d1", models.DrawModeManual); err != nil {
		t.Fatal(err)
	}

	got, _ = repo.GetDrawing(ctx, "d1")
	if !got.Confirmed || got.DrawMode != models.DrawModeManual || !slices.Equal(got.Participants, []string{"alice", "bob"}) {
		t.Errorf("after updates = %+v", got)
	}

	if err := repo.UpdateWinners(ctx, "d1", []string{"bob"}); err != nil {
		t.Fatal(err)
	}
	got, _ = repo.GetDrawing(ctx, "d1")
	if !got.Drawn || !slices.Equal(got.Winners, []string{"bob"}) {
		t.Errorf("winners = %v drawn = %v", got.Winners, got.Drawn)
	}
}

func TestRepositoryEmptyWinnersStillMarksDrawn(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	if err := repo.Insert(ctx, sampleDrawing("d1", time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpdateWinners(ctx, "d1", nil); err != nil {
		t.Fatal(err)
	}
	got, _ := repo.GetDrawing(ctx, "d1")
	if !got.Drawn || len(got.Winners) != 0 {
		t.Errorf("drawing = %+v", got)
	}
}

func TestRepositoryLoadOngoing(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	rows := map[string]time.Time{
		"future":        now.Add(time.Hour),
		"soon":          now.Add(time.Minute),
		"overdue":       now.Add(-time.Minute),
		"stale-pending": now.Add(-time.Minute),
		"cancelled":     now.Add(time.Hour),
		"drawn":         now.Add(time.Hour),
	}
	for id, end := range rows {
		if err := repo.Insert(ctx, sampleDrawing(id, end)); err != nil {
			t.Fatal(err)
		}
	}
	if err := repo.MarkConfirmed(ctx, "overdue"); err != nil {
		t.Fatal(err)
	}
	if err := repo.Cancel(ctx, "cancelled", now); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpdateWinners(ctx, "drawn", []string{"x"}); err != nil {
		t.Fatal(err)
	}

	got, err := repo.LoadOngoing(ctx, now)
	if err != nil {
		t.Fatalf("LoadOngoing: %v", err)
	}
	ids := make([]string, len(got))
	for i, d := range got {
		ids[i] = d.ID
	}
	if want := []string{"overdue", "soon", "future"}; !slices.Equal(ids, want) {
		t.Errorf("ongoing = %v, want %v", ids, want)
	}

	c, _ := repo.GetDrawing(ctx, "cancelled")
	if c.DrawMode != models.DrawModeCancelled || !c.EndTime.Equal(now) {
		t.Errorf("cancelled row = %+v", c)
	}
}

func TestRepositoryNotFound(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if _, err := repo.GetDrawing(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetDrawing err = %v", err)
	}
	if err := repo.UpdateParticipants(ctx, "missing", []string{"a"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateParticipants err = %v", err)
	}
}

func TestRepositoryDuplicateInsertFails(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	d := sampleDrawing("d1", time.Now())
	if err := repo.Insert(ctx, d); err != nil {
		t.Fatal(err)
	}
	if err := repo.Insert(ctx, d); err == nil {
		t.Error("duplicate insert succeeded")
	}
}

func TestAppWithSQLiteRepository(t *testing.T) {
	h := newHarness(t)
	repo := newTestRepository(t)
	h.app.repo = repo
	ctx := context.Background()

	id := h.createConfirmed(t, CreateRequest{Duration: "10s"})
	h.join(t, id, alice)

	h.clock.Advance(10 * time.Second)
	h.announcer.waitResult(t)
	waitFor(t, "unregistered", func() bool { _, ok := h.phaseOf(id); return !ok })

	got, err := repo.GetDrawing(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Drawn || !slices.Equal(got.Winners, []string{"alice"}) {
		t.Errorf("persisted = %+v", got)
	}
	ongoing, _ := repo.LoadOngoing(ctx, h.clock.Now())
	if len(ongoing) != 0 {
		t.Errorf("drawn drawing still ongoing: %+v", ongoing)
	}
}
