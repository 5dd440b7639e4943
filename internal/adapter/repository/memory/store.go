// Package memory provides in-process repositories used for development and tests.
// Transactions work on a copy of the data that replaces the live state on commit.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/simaogato/folio-backend/internal/domain"
)

// Store holds the data shared by the memory repositories
type Store struct {
	mu    sync.RWMutex
	state *state
	now   func() time.Time
}

type state struct {
	seq int64

	portfolios  map[uuid.UUID]domain.Portfolio
	byUser      map[uuid.UUID]uuid.UUID
	categories  map[uuid.UUID]row[domain.Category]
	items       map[uuid.UUID]row[domain.Item]
	masterCats  map[uuid.UUID]row[domain.MasterCategory]
	masterItems map[uuid.UUID]row[domain.MasterItem]
	presets     map[string]domain.Preset
	riskTypes   map[uuid.UUID]domain.RiskType
	plans       map[uuid.UUID]domain.InvestmentPlan
	schedules   map[uuid.UUID]domain.PaymentSchedule
}

// row keeps insertion order for listings
type row[T any] struct {
	seq int64
	val T
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{state: newState(), now: time.Now}
}

func newState() *state {
	return &state{
		portfolios:  make(map[uuid.UUID]domain.Portfolio),
		byUser:      make(map[uuid.UUID]uuid.UUID),
		categories:  make(map[uuid.UUID]row[domain.Category]),
		items:       make(map[uuid.UUID]row[domain.Item]),
		masterCats:  make(map[uuid.UUID]row[domain.MasterCategory]),
		masterItems: make(map[uuid.UUID]row[domain.MasterItem]),
		presets:     make(map[string]domain.Preset),
		riskTypes:   make(map[uuid.UUID]domain.RiskType),
		plans:       make(map[uuid.UUID]domain.InvestmentPlan),
		schedules:   make(map[uuid.UUID]domain.PaymentSchedule),
	}
}

// Ping always succeeds; it lets the store back the readiness probe
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) read(fn func(st *state) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

// write runs fn against a copy of the state and publishes the copy only when fn succeeds.
// Writers are serialised, which doubles as the per-portfolio row lock.
func (s *Store) write(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.state.clone()
	if err := fn(draft); err != nil {
		return err
	}
	s.state = draft
	return nil
}

func (st *state) next() int64 {
	st.seq++
	return st.seq
}

func (st *state) clone() *state {
	out := &state{
		seq:         st.seq,
		portfolios:  cloneMap(st.portfolios),
		byUser:      cloneMap(st.byUser),
		categories:  cloneMap(st.categories),
		items:       cloneMap(st.items),
		masterCats:  cloneMap(st.masterCats),
		masterItems: cloneMap(st.masterItems),
		presets:     cloneMap(st.presets),
		riskTypes:   cloneMap(st.riskTypes),
		plans:       cloneMap(st.plans),
		schedules:   make(map[uuid.UUID]domain.PaymentSchedule, len(st.schedules)),
	}
	for id, ps := range st.schedules {
		out.schedules[id] = cloneSchedule(ps)
	}
	return out
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneSchedule(ps domain.PaymentSchedule) domain.PaymentSchedule {
	if ps.ActualPaidAmount != nil {
		amount := *ps.ActualPaidAmount
		ps.ActualPaidAmount = &amount
	}
	if ps.ActualPaidDate != nil {
		date := *ps.ActualPaidDate
		ps.ActualPaidDate = &date
	}
	return ps
}
