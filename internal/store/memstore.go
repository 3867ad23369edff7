package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/nhle/siteledger/internal/files"
	"github.com/nhle/siteledger/internal/logger"
	"github.com/nhle/siteledger/internal/model"
)

// MutationHook is called after each committed mutation, with the store lock
// held. It must not call back into the store.
type MutationHook func(entity model.EntityType, op string)

// Option configures a MemStore.
type Option func(*MemStore)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *MemStore) { s.log = logger.OrNop(l) }
}

// WithClock overrides the time source used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *MemStore) { s.now = now }
}

// WithMutationHook registers fn to observe committed mutations.
func WithMutationHook(fn MutationHook) Option {
	return func(s *MemStore) { s.hooks = append(s.hooks, fn) }
}

// MemStore is the in-process Store. All methods are safe for concurrent use;
// every mutation runs under one lock and commits only after validating.
type MemStore struct {
	mu sync.RWMutex

	projects  table[model.Project]
	clients   table[model.Client]
	labourers table[model.Labourer]
	resources table[model.Resource]
	links     linkIndex

	// recordSeq orders records that share a date: higher is newer.
	recordSeq map[string]uint64
	seq       uint64

	files *files.Registry
	log   *logger.Logger
	now   func() time.Time
	hooks []MutationHook
}

var _ Store = (*MemStore)(nil)

// New returns an empty store backed by the given file registry.
func New(reg *files.Registry, opts ...Option) *MemStore {
	s := &MemStore{
		projects:  newTable[model.Project](),
		clients:   newTable[model.Client](),
		labourers: newTable[model.Labourer](),
		resources: newTable[model.Resource](),
		links:     newLinkIndex(),
		recordSeq: make(map[string]uint64),
		files:     reg,
		log:       logger.Nop(),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Files returns the registry the store cascades deletions into.
func (s *MemStore) Files() *files.Registry {
	return s.files
}

// Snapshot returns copies of every collection in insertion order.
func (s *MemStore) Snapshot(ctx context.Context) model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return model.Snapshot{
		Projects:  s.projectsLocked(),
		Clients:   s.clientsLocked(),
		Labourers: s.labourersLocked(),
		Resources: s.resourcesLocked(),
	}
}

func (s *MemStore) observe(entity model.EntityType, op string) {
	for _, h := range s.hooks {
		h(entity, op)
	}
}

// deleteFiles removes files from the registry. It runs before the in-memory
// commit so a persistence failure leaves the store untouched.
func (s *MemStore) deleteFiles(ctx context.Context, ids []string) error {
	if s.files == nil || len(ids) == 0 {
		return nil
	}
	return s.files.DeleteFiles(ctx, ids)
}

// linkedFileIDs collects the ids of files linked to an entity, optionally
// narrowed to one record.
func (s *MemStore) linkedFileIDs(t model.EntityType, id, recordID string) []string {
	if s.files == nil {
		return nil
	}
	var ids []string
	for _, f := range s.files.FilesByLink(t, id, recordID) {
		ids = append(ids, f.ID)
	}
	return ids
}

// nextSeq stamps a record id with the next insertion sequence.
func (s *MemStore) nextSeq(recordID string) {
	s.seq++
	s.recordSeq[recordID] = s.seq
}

// table is an insertion-ordered map.
type table[T any] struct {
	rows  map[string]T
	order []string
}

func newTable[T any]() table[T] {
	return table[T]{rows: make(map[string]T)}
}

func (t *table[T]) get(id string) (T, bool) {
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) has(id string) bool {
	_, ok := t.rows[id]
	return ok
}

func (t *table[T]) put(id string, v T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = v
}

func (t *table[T]) remove(id string) {
	if _, ok := t.rows[id]; !ok {
		return
	}
	delete(t.rows, id)
	if i := slices.Index(t.order, id); i >= 0 {
		t.order = slices.Delete(t.order, i, i+1)
	}
}

func (t *table[T]) list() []T {
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.rows[id])
	}
	return out
}

func (t *table[T]) len() int {
	return len(t.order)
}
