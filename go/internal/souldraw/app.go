package souldraw

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/souldraw/go/internal/models"
	"github.com/mcdev12/souldraw/go/internal/scheduler"
	"github.com/mcdev12/souldraw/go/internal/souldraw/events"
)

// DrawingRepository defines what the souldraw app layer needs from storage
type DrawingRepository interface {
	Insert(ctx context.Context, d models.Drawing) error
	MarkConfirmed(ctx context.Context, id string) error
	UpdateParticipants(ctx context.Context, id string, participants []string) error
	UpdateMode(ctx context.Context, id string, mode models.DrawMode) error
	UpdateWinners(ctx context.Context, id string, winners []string) error
	Cancel(ctx context.Context, id string, endTime time.Time) error
	GetDrawing(ctx context.Context, id string) (*models.Drawing, error)
	LoadOngoing(ctx context.Context, now time.Time) ([]models.Drawing, error)
}

// Announcer renders drawings on the chat platform.
type Announcer interface {
	Post(ctx context.Context, channelID string, view DisplayModel, controls Controls) (MessageRef, error)
	Edit(ctx context.Context, ref MessageRef, view DisplayModel, controls Controls) error
	Delete(ctx context.Context, ref MessageRef) error
	AnnounceResult(ctx context.Context, ref MessageRef, channelID string, result DrawResult) error
}

// Config tunes timer behaviour of the App.
type Config struct {
	RefreshInterval    time.Duration
	MaxRefreshFailures int
	DefaultChannelID   string
	CallTimeout        time.Duration
}

func DefaultConfig() Config {
	return Config{
		RefreshInterval:    15 * time.Second,
		MaxRefreshFailures: 3,
		CallTimeout:        10 * time.Second,
	}
}

// App owns the registry and drives every drawing through its lifecycle.
// Transitions are serialized by mu. Chat and event side effects run after mu
// is released, in order per drawing.
type App struct {
	repo      DrawingRepository
	announcer Announcer
	publisher events.Publisher
	sched     *scheduler.Scheduler
	clock     clockwork.Clock
	cfg       Config
	rng       *rand.Rand
	newID     func() string

	mu       sync.Mutex
	registry *Registry
	gen      uint64
	lanes    map[string]*lane
	owned    []string
}

type Option func(*App)

// WithRand replaces the winner selection randomness source.
func WithRand(rng *rand.Rand) Option {
	return func(a *App) { a.rng = rng }
}

// WithIDGenerator replaces uuid generation for new drawings.
func WithIDGenerator(fn func() string) Option {
	return func(a *App) { a.newID = fn }
}

// NewApp creates a new souldraw App
func NewApp(repo DrawingRepository, announcer Announcer, publisher events.Publisher, sched *scheduler.Scheduler, cfg Config, opts ...Option) *App {
	if publisher == nil {
		publisher = events.Nop{}
	}
	def := DefaultConfig()
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = def.RefreshInterval
	}
	if cfg.MaxRefreshFailures <= 0 {
		cfg.MaxRefreshFailures = def.MaxRefreshFailures
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = def.CallTimeout
	}

	a := &App{
		repo:      repo,
		announcer: announcer,
		publisher: publisher,
		sched:     sched,
		clock:     sched.Clock(),
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		newID:     uuid.NewString,
		registry:  NewRegistry(),
		lanes:     make(map[string]*lane),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Create validates req, persists a pending drawing and posts its announcement.
func (a *App) Create(ctx context.Context, actor Actor, req CreateRequest) (*Outcome, error) {
	a.mu.Lock()
	defer a.unlock()

	if req.ChannelID == "" {
		req.ChannelID = a.cfg.DefaultChannelID
	}
	t, err := PlanCreate(req, actor, a.newID(), a.clock.Now())
	if err != nil {
		return nil, err
	}
	return a.commit(ctx, "create", t)
}

// Confirm activates a pending drawing.
func (a *App) Confirm(ctx context.Context, actor Actor, id string) (*Outcome, error) {
	a.mu.Lock()
	defer a.unlock()

	e, err := a.lookup(id)
	if err != nil {
		return nil, err
	}
	t, err := PlanConfirm(e.drawing, e.phase, actor, a.clock.Now())
	if err != nil {
		return nil, err
	}
	return a.commit(ctx, "confirm", t)
}

// Join adds the actor to the participants.
func (a *App) Join(ctx context.Context, actor Actor, id string) (*Outcome, error) {
	a.mu.Lock()
	defer a.unlock()

	e, err := a.lookup(id)
	if err != nil {
		return nil, err
	}
	t, err := PlanJoin(e.drawing, e.phase, actor.UserID, a.clock.Now())
	if err != nil {
		return nil, err
	}
	return a.commit(ctx, "join", t)
}

// RemovalCandidates lists the participants an admin may remove.
func (a *App) RemovalCandidates(ctx context.Context, actor Actor, id string) ([]string, error) {
	if err := requireAdmin(actor, "remove participants"); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	e, err := a.lookup(id)
	if err != nil {
		return nil, err
	}
	if len(e.drawing.Participants) == 0 {
		return nil, ErrNoParticipants
	}
	return slices.Clone(e.drawing.Participants), nil
}

// RemoveParticipant drops userID from the drawing. The outcome lists the
// remaining participants.
func (a *App) RemoveParticipant(ctx context.Context, actor Actor, id, userID string) (*Outcome, error) {
	a.mu.Lock()
	defer a.unlock()

	e, err := a.lookup(id)
	if err != nil {
		return nil, err
	}
	t, err := PlanRemove(e.drawing, e.phase, actor, userID)
	if err != nil {
		return nil, err
	}
	out, err := a.commit(ctx, "remove participant", t)
	if err != nil {
		return nil, err
	}
	out.Participants = slices.Clone(out.Drawing.Participants)
	return out, nil
}

// ToggleMode flips the draw mode between auto and manual.
func (a *App) ToggleMode(ctx context.Context, actor Actor, id string) (*Outcome, error) {
	a.mu.Lock()
	defer a.unlock()

	e, err := a.lookup(id)
	if err != nil {
		return nil, err
	}
	t, err := PlanToggleMode(e.drawing, e.phase, actor)
	if err != nil {
		return nil, err
	}
	return a.commit(ctx, "toggle mode", t)
}

// Cancel cancels a drawing. Cancelling an already-cancelled drawing is a no-op.
func (a *App) Cancel(ctx context.Context, actor Actor, id string) (*Outcome, error) {
	if err := requireAdmin(actor, "cancel souldraws"); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.unlock()

	d, err := a.current(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case d.IsCancelled():
		return &Outcome{Drawing: *d, Reply: "This souldraw has already been cancelled."}, nil
	case d.Drawn:
		return nil, ErrDrawingEnded
	}

	t, err := PlanCancel(*d, actor, a.clock.Now())
	if err != nil {
		return nil, err
	}
	return a.commit(ctx, "cancel", t)
}

// Draw selects winners now on behalf of an admin.
func (a *App) Draw(ctx context.Context, actor Actor, id string) (*Outcome, error) {
	a.mu.Lock()
	defer a.unlock()

	e, err := a.lookup(id)
	if err != nil {
		return nil, err
	}
	t, err := PlanDraw(e.drawing, e.phase, actor, a.rng)
	if err != nil {
		return nil, err
	}
	return a.commit(ctx, "draw", t)
}

// Status renders the current view of any drawing, live or finished.
func (a *App) Status(ctx context.Context, id string) (DisplayModel, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock.Now()
	if e, ok := a.registry.get(id); ok {
		return BuildView(e.drawing, e.phase, now), nil
	}
	d, err := a.load(ctx, id)
	if err != nil {
		return DisplayModel{}, err
	}
	return BuildView(*d, RestoredPhase(*d, now), now), nil
}

// Participants lists who joined a drawing.
func (a *App) Participants(ctx context.Context, id string) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	d, err := a.current(ctx, id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(d.Participants), nil
}

// ResolveAnnouncement maps an announcement message to its drawing id.
func (a *App) ResolveAnnouncement(messageID string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id, ok := a.registry.byAnnouncement(messageID)
	if !ok {
		return "", ErrNotFound
	}
	return id, nil
}

// Active returns a snapshot of every registered drawing.
func (a *App) Active() []Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.registry.snapshot()
}

// Restore loads persisted drawings and re-registers them. It returns the
// number of drawings restored.
func (a *App) Restore(ctx context.Context) (int, error) {
	rows, err := a.repo.LoadOngoing(ctx, a.clock.Now())
	if err != nil {
		return 0, &PersistenceError{Op: "load ongoing", Err: err}
	}

	a.mu.Lock()
	defer a.unlock()

	now := a.clock.Now()
	restored := 0
	for _, d := range rows {
		if _, ok := a.registry.get(d.ID); ok {
			continue
		}
		t := PlanRestore(d, now)
		if err := a.apply(ctx, t); err != nil {
			log.Error().Err(err).Str("drawing_id", d.ID).Msg("failed to restore drawing")
			continue
		}
		restored++
		log.Info().
			Str("drawing_id", d.ID).
			Str("phase", t.Phase.String()).
			Dur("remaining", d.Remaining(now)).
			Msg("restored drawing")
	}
	return restored, nil
}

// Shutdown retires every timer. Persisted state is left for the next Restore.
func (a *App) Shutdown() {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := a.registry.size()
	a.registry.clear()
	log.Info().Int("drawings", n).Msg("souldraw registry cleared")
}

func (a *App) lookup(id string) (*entry, error) {
	e, ok := a.registry.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

// current returns the registered drawing or falls back to storage.
func (a *App) current(ctx context.Context, id string) (*models.Drawing, error) {
	if e, ok := a.registry.get(id); ok {
		d := e.drawing.Clone()
		return &d, nil
	}
	return a.load(ctx, id)
}

func (a *App) load(ctx context.Context, id string) (*models.Drawing, error) {
	d, err := a.repo.GetDrawing(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get drawing", Err: err}
	}
	return d, nil
}

func (a *App) commit(ctx context.Context, op string, t Transition) (*Outcome, error) {
	if err := a.apply(ctx, t); err != nil {
		return nil, err
	}
	log.Info().
		Str("op", op).
		Str("drawing_id", t.Next.ID).
		Str("draw_mode", string(t.Next.DrawMode)).
		Int("participants", len(t.Next.Participants)).
		Msg("souldraw transition applied")
	return &Outcome{Drawing: t.Next, Phase: t.Phase, Reply: t.Reply}, nil
}

// apply persists t and then performs its effects. When the write fails
// nothing else happens. Registry and timer effects happen here; announcer
// calls and events are queued on the drawing's lane. Effect failures are
// logged and skipped.
func (a *App) apply(ctx context.Context, t Transition) error {
	if err := a.write(ctx, t); err != nil {
		log.Error().Err(err).Str("drawing_id", t.Next.ID).Msg("failed to persist drawing")
		return err
	}

	id := t.Next.ID
	a.registry.put(t.Next, t.Phase)
	now := a.clock.Now()

	for _, eff := range t.Effects {
		switch e := eff.(type) {
		case PostAnnouncement:
			channelID := t.Next.ChannelID
			if channelID == "" {
				channelID = a.cfg.DefaultChannelID
			}
			a.enqueue(id, a.postJob(id, channelID, BuildView(t.Next, t.Phase, now), e.Controls))
		case EditAnnouncement:
			a.enqueue(id, a.editJob(id, BuildView(t.Next, t.Phase, now), e.Controls))
		case DeleteAnnouncement:
			a.registry.setAnnouncement(id, MessageRef{})
			a.enqueue(id, a.deleteJob(id))
		case AnnounceResult:
			a.enqueue(id, a.resultJob(id, t.Next.ChannelID, e.Result))
		case StartTimers:
			a.startTimers(id, e.Delay)
		case StopTimers:
			a.registry.stopTimers(id)
		case Unregister:
			a.registry.remove(id)
		case Emit:
			a.emit(id, e.Type, e.Payload)
		}
	}
	return nil
}

func (a *App) write(ctx context.Context, t Transition) error {
	d := t.Next
	var err error
	switch t.Write {
	case WriteNone:
		return nil
	case WriteInsert:
		err = a.repo.Insert(ctx, d)
	case WriteConfirm:
		err = a.repo.MarkConfirmed(ctx, d.ID)
	case WriteParticipants:
		err = a.repo.UpdateParticipants(ctx, d.ID, d.Participants)
	case WriteMode:
		err = a.repo.UpdateMode(ctx, d.ID, d.DrawMode)
	case WriteWinners:
		err = a.repo.UpdateWinners(ctx, d.ID, d.Winners)
	case WriteCancel:
		err = a.repo.Cancel(ctx, d.ID, d.EndTime)
	default:
		return fmt.Errorf("unknown write kind %d", t.Write)
	}
	if err != nil {
		return &PersistenceError{Op: writeOp(t.Write), Err: err}
	}
	return nil
}

func writeOp(k WriteKind) string {
	switch k {
	case WriteInsert:
		return "insert"
	case WriteConfirm:
		return "confirm"
	case WriteParticipants:
		return "update participants"
	case WriteMode:
		return "update mode"
	case WriteWinners:
		return "update winners"
	case WriteCancel:
		return "cancel"
	default:
		return "write"
	}
}

func (a *App) emit(id string, typ events.Type, payload any) {
	ev, err := events.New(id, typ, a.clock.Now(), payload)
	if err != nil {
		log.Warn().Err(err).Str("drawing_id", id).Msg("failed to build event")
		return
	}
	a.enqueue(id, a.publishJob(ev))
}

// startTimers schedules the expiry timer and the refresh interval. Callbacks
// carry the generation they were created for and ignore themselves once the
// entry has moved on.
func (a *App) startTimers(id string, delay time.Duration) {
	a.gen++
	gen := a.gen

	expiry := a.sched.ScheduleOnce(delay, func() { a.onExpire(id, gen) })
	refresh := a.sched.ScheduleRepeating(a.cfg.RefreshInterval, func() bool { return a.onRefresh(id, gen) })
	a.registry.setTimers(id, gen, expiry, refresh)

	log.Debug().
		Str("drawing_id", id).
		Dur("delay", delay).
		Msg("scheduled expiry and refresh")
}

func (a *App) callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), a.cfg.CallTimeout)
}

func (a *App) onExpire(id string, gen uint64) {
	a.mu.Lock()
	defer a.unlock()

	e, ok := a.registry.get(id)
	if !ok || e.timerGen != gen {
		log.Debug().Str("drawing_id", id).Msg("ignoring stale expiry")
		return
	}

	ctx, cancel := a.callContext()
	defer cancel()

	t, err := PlanExpire(e.drawing, e.phase, a.clock.Now(), a.rng)
	if err != nil {
		log.Debug().Err(err).Str("drawing_id", id).Msg("expiry not applicable")
		return
	}
	if err := a.apply(ctx, t); err != nil {
		// leave the drawing registered and try again on the next interval
		log.Error().Err(err).Str("drawing_id", id).Msg("failed to expire drawing, retrying")
		a.startTimers(id, a.cfg.RefreshInterval)
		return
	}
	log.Info().
		Str("drawing_id", id).
		Str("draw_mode", string(e.drawing.DrawMode)).
		Msg("drawing expired")
}

// onRefresh queues an edit of the announcement with the current remaining
// time. It returns false to stop the interval.
func (a *App) onRefresh(id string, gen uint64) bool {
	a.mu.Lock()
	defer a.unlock()

	e, ok := a.registry.get(id)
	if !ok || e.timerGen != gen {
		return false
	}

	now := a.clock.Now()
	remaining := e.drawing.Remaining(now)
	a.enqueue(id, a.refreshJob(id, gen, BuildView(e.drawing, e.phase, now), controlsFor(e.phase), events.TimerTickPayload{
		TimeRemainingSec: int(max(remaining, 0) / time.Second),
		TickedAt:         now,
	}))
	return remaining > 0
}
