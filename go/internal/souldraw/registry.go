package souldraw

import (
	"sort"

	"github.com/mcdev12/souldraw/go/internal/models"
	"github.com/mcdev12/souldraw/go/internal/scheduler"
)

// entry is everything the process knows about one live drawing.
type entry struct {
	drawing         models.Drawing
	phase           Phase
	announcement    MessageRef
	expiry          *scheduler.Handle
	refresh         *scheduler.Handle
	timerGen        uint64
	refreshFailures int
}

// Registry is the single table of live drawings. A drawing is present iff it
// is neither cancelled nor drawn. Registry is not safe for concurrent use;
// the App serializes access.
type Registry struct {
	entries   map[string]*entry
	byMessage map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		entries:   make(map[string]*entry),
		byMessage: make(map[string]string),
	}
}

func (r *Registry) get(id string) (*entry, bool) {
	e, ok := r.entries[id]
	return e, ok
}

// put stores d in phase p, keeping any existing announcement and handles.
func (r *Registry) put(d models.Drawing, p Phase) *entry {
	e, ok := r.entries[d.ID]
	if !ok {
		e = &entry{}
		r.entries[d.ID] = e
	}
	e.drawing = d
	e.phase = p
	return e
}

func (r *Registry) setAnnouncement(id string, ref MessageRef) {
	e, ok := r.entries[id]
	if !ok {
		return
	}
	if !e.announcement.IsZero() {
		delete(r.byMessage, e.announcement.MessageID)
	}
	e.announcement = ref
	if !ref.IsZero() {
		r.byMessage[ref.MessageID] = id
	}
}

// setTimers installs fresh expiry and refresh handles for generation gen,
// cancelling previous ones.
func (r *Registry) setTimers(id string, gen uint64, expiry, refresh *scheduler.Handle) {
	e, ok := r.entries[id]
	if !ok {
		expiry.Cancel()
		refresh.Cancel()
		return
	}
	e.expiry.Cancel()
	e.refresh.Cancel()
	e.expiry = expiry
	e.refresh = refresh
	e.timerGen = gen
	e.refreshFailures = 0
}

func (r *Registry) stopTimers(id string) {
	e, ok := r.entries[id]
	if !ok {
		return
	}
	e.expiry.Cancel()
	e.refresh.Cancel()
	e.expiry = nil
	e.refresh = nil
	e.timerGen = 0
}

// remove retires the drawing: timers cancelled, message index cleared.
func (r *Registry) remove(id string) {
	e, ok := r.entries[id]
	if !ok {
		return
	}
	e.expiry.Cancel()
	e.refresh.Cancel()
	if !e.announcement.IsZero() {
		delete(r.byMessage, e.announcement.MessageID)
	}
	delete(r.entries, id)
}

// byAnnouncement resolves an announcement message to its drawing id.
func (r *Registry) byAnnouncement(messageID string) (string, bool) {
	id, ok := r.byMessage[messageID]
	return id, ok
}

// Snapshot is a read-only copy of a registry entry.
type Snapshot struct {
	Drawing      models.Drawing `json:"drawing"`
	Phase        string         `json:"phase"`
	Announcement MessageRef     `json:"-"`
}

func (r *Registry) snapshot() []Snapshot {
	out := make([]Snapshot, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, Snapshot{
			Drawing:      e.drawing.Clone(),
			Phase:        e.phase.String(),
			Announcement: e.announcement,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Drawing.EndTime.Before(out[j].Drawing.EndTime)
	})
	return out
}

func (r *Registry) size() int {
	return len(r.entries)
}

func (r *Registry) clear() {
	for id := range r.entries {
		r.remove(id)
	}
}
