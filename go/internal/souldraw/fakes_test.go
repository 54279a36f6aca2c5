package souldraw

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mcdev12/souldraw/go/internal/models"
	"github.com/mcdev12/souldraw/go/internal/souldraw/events"
)

var errStore = errors.New("store unavailable")

type fakeRepo struct {
	mu       sync.Mutex
	rows     map[string]models.Drawing
	failNext map[string]error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		rows:     make(map[string]models.Drawing),
		failNext: make(map[string]error),
	}
}

func (r *fakeRepo) failOn(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failNext[op] = err
}

func (r *fakeRepo) fail(op string) error {
	if err, ok := r.failNext[op]; ok {
		delete(r.failNext, op)
		return err
	}
	return nil
}

func (r *fakeRepo) mutate(op, id string, fn func(d *models.Drawing)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(op); err != nil {
		return err
	}
	d, ok := r.rows[id]
	if !ok {
		return ErrNotFound
	}
	fn(&d)
	r.rows[id] = d.Clone()
	return nil
}

func (r *fakeRepo) Insert(_ context.Context, d models.Drawing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("insert"); err != nil {
		return err
	}
	r.rows[d.ID] = d.Clone()
	return nil
}

func (r *fakeRepo) MarkConfirmed(_ context.Context, id string) error {
	return r.mutate("confirm", id, func(d *models.Drawing) { d.Confirmed = true })
}

func (r *fakeRepo) UpdateParticipants(_ context.Context, id string, participants []string) error {
	return r.mutate("participants", id, func(d *models.Drawing) {
		d.Participants = append([]string{}, participants...)
	})
}

func (r *fakeRepo) UpdateMode(_ context.Context, id string, mode models.DrawMode) error {
	return r.mutate("mode", id, func(d *models.Drawing) { d.DrawMode = mode })
}

func (r *fakeRepo) UpdateWinners(_ context.Context, id string, winners []string) error {
	return r.mutate("winners", id, func(d *models.Drawing) {
		d.Winners = append([]string{}, winners...)
		d.Drawn = true
	})
}

func (r *fakeRepo) Cancel(_ context.Context, id string, endTime time.Time) error {
	return r.mutate("cancel", id, func(d *models.Drawing) {
		d.DrawMode = models.DrawModeCancelled
		d.EndTime = endTime
	})
}

func (r *fakeRepo) GetDrawing(_ context.Context, id string) (*models.Drawing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := d.Clone()
	return &c, nil
}

func (r *fakeRepo) LoadOngoing(_ context.Context, now time.Time) ([]models.Drawing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("load"); err != nil {
		return nil, err
	}
	var out []models.Drawing
	for _, d := range r.rows {
		if d.Drawn || d.IsCancelled() {
			continue
		}
		if !d.Confirmed && d.Remaining(now) <= 0 {
			continue
		}
		out = append(out, d.Clone())
	}
	return out, nil
}

func (r *fakeRepo) get(t *testing.T, id string) models.Drawing {
	t.Helper()
	d, err := r.GetDrawing(context.Background(), id)
	if err != nil {
		t.Fatalf("row %s: %v", id, err)
	}
	return *d
}

type postedView struct {
	ref      MessageRef
	view     DisplayModel
	controls Controls
}

type fakeAnnouncer struct {
	mu       sync.Mutex
	seq      int
	posts    []postedView
	edits    []postedView
	deletes  []MessageRef
	results  []DrawResult
	editErr  error
	postErr  error
	resultCh chan DrawResult
	gates    map[string]chan struct{}
	stalls   int
}

func newFakeAnnouncer() *fakeAnnouncer {
	return &fakeAnnouncer{resultCh: make(chan DrawResult, 16)}
}

func (f *fakeAnnouncer) Post(_ context.Context, channelID string, view DisplayModel, controls Controls) (MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postErr != nil {
		return MessageRef{}, f.postErr
	}
	f.seq++
	ref := MessageRef{ChannelID: channelID, MessageID: fmt.Sprintf("m-%d", f.seq)}
	f.posts = append(f.posts, postedView{ref: ref, view: view, controls: controls})
	return ref, nil
}

func (f *fakeAnnouncer) Edit(_ context.Context, ref MessageRef, view DisplayModel, controls Controls) error {
	f.mu.Lock()
	gate := f.gates[ref.MessageID]
	if gate != nil {
		f.stalls++
	}
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, postedView{ref: ref, view: view, controls: controls})
	return f.editErr
}

func (f *fakeAnnouncer) Delete(_ context.Context, ref MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, ref)
	return nil
}

func (f *fakeAnnouncer) AnnounceResult(_ context.Context, _ MessageRef, _ string, result DrawResult) error {
	f.mu.Lock()
	f.results = append(f.results, result)
	f.mu.Unlock()
	f.resultCh <- result
	return nil
}

// hold makes edits of messageID wait until release is closed.
func (f *fakeAnnouncer) hold(messageID string, release chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gates == nil {
		f.gates = make(map[string]chan struct{})
	}
	f.gates[messageID] = release
}

func (f *fakeAnnouncer) stalled() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stalls
}

func (f *fakeAnnouncer) postFor(t *testing.T, drawingID string) MessageRef {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.view.DrawingID == drawingID {
			return p.ref
		}
	}
	t.Fatalf("no announcement posted for %s", drawingID)
	return MessageRef{}
}

func (f *fakeAnnouncer) lastEditOf(ref MessageRef) (postedView, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.edits) - 1; i >= 0; i-- {
		if f.edits[i].ref == ref {
			return f.edits[i], true
		}
	}
	return postedView{}, false
}

func (f *fakeAnnouncer) editCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.edits)
}

func (f *fakeAnnouncer) lastPost(t *testing.T) postedView {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.posts) == 0 {
		t.Fatal("nothing posted")
	}
	return f.posts[len(f.posts)-1]
}

func (f *fakeAnnouncer) waitResult(t *testing.T) DrawResult {
	t.Helper()
	select {
	case r := <-f.resultCh:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no draw result announced")
		return DrawResult{}
	}
}

func (f *fakeAnnouncer) assertNoResult(t *testing.T) {
	t.Helper()
	select {
	case r := <-f.resultCh:
		t.Fatalf("unexpected draw result: %+v", r)
	case <-time.After(30 * time.Millisecond):
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		if e.Type == events.TypeTimerTick {
			continue
		}
		out = append(out, e.Type)
	}
	return out
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func intPtr(v int) *int { return &v }
