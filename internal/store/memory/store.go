package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/teresa-solution/rental-management-service/internal/model"
	"github.com/teresa-solution/rental-management-service/internal/store"
)

type dataset struct {
	seq         map[string]int64
	roles       map[int64]model.Role
	users       map[int64]model.User
	apartments  map[int64]model.Apartment
	tenants     map[int64]model.Tenant
	rentals     map[int64]model.Rental
	payments    map[int64]model.Payment
	maintenance map[int64]model.MaintenanceRequest
	events      map[int64]model.RentalEvent
}

func newDataset() *dataset {
	return &dataset{
		seq:         map[string]int64{},
		roles:       map[int64]model.Role{},
		users:       map[int64]model.User{},
		apartments:  map[int64]model.Apartment{},
		tenants:     map[int64]model.Tenant{},
		rentals:     map[int64]model.Rental{},
		payments:    map[int64]model.Payment{},
		maintenance: map[int64]model.MaintenanceRequest{},
		events:      map[int64]model.RentalEvent{},
	}
}

func cloneMap[V any](m map[int64]V) map[int64]V {
	out := make(map[int64]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *dataset) clone() *dataset {
	seq := make(map[string]int64, len(d.seq))
	for k, v := range d.seq {
		seq[k] = v
	}
	return &dataset{
		seq:         seq,
		roles:       cloneMap(d.roles),
		users:       cloneMap(d.users),
		apartments:  cloneMap(d.apartments),
		tenants:     cloneMap(d.tenants),
		rentals:     cloneMap(d.rentals),
		payments:    cloneMap(d.payments),
		maintenance: cloneMap(d.maintenance),
		events:      cloneMap(d.events),
	}
}

func (d *dataset) next(table string) int64 {
	d.seq[table]++
	return d.seq[table]
}

// Store is an in-memory store.Store.
type Store struct {
	*queries
	mu  sync.Mutex
	d   *dataset
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	s := &Store{d: newDataset(), now: time.Now}
	s.queries = &queries{s: s}
	return s
}

// NewSeeded returns a store holding the fixed roles.
func NewSeeded() *Store {
	s := New()
	for _, r := range model.SeedRoles() {
		s.d.roles[r.ID] = r
		if r.ID > s.d.seq["roles"] {
			s.d.seq["roles"] = r.ID
		}
	}
	return s
}

// InTx runs fn against a private copy of the data and publishes it only
// when fn succeeds.
func (s *Store) InTx(ctx context.Context, fn func(q store.Queries) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	tx := s.d.clone()
	if err := fn(&queries{s: s, tx: tx}); err != nil {
		return err
	}
	s.d = tx
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() error {
	return nil
}

type queries struct {
	s  *Store
	tx *dataset
}

func (q *queries) acquire() (*dataset, func()) {
	if q.tx != nil {
		return q.tx, func() {}
	}
	q.s.mu.Lock()
	return q.s.d, q.s.mu.Unlock
}

func notFound(entity string) error {
	return fmt.Errorf("%w: %s not found", model.ErrNotFound, entity)
}

func conflict(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{model.ErrConflict}, args...)...)
}

func page[V any](m map[int64]V, p store.Page, keep func(V) bool) []V {
	ids := make([]int64, 0, len(m))
	for id, v := range m {
		if keep == nil || keep(v) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	limit, offset := len(ids), 0
	if p.Limit > 0 {
		limit = p.Limit
	}
	if p.Offset > 0 {
		offset = p.Offset
	}
	if offset > len(ids) {
		offset = len(ids)
	}
	end := offset + limit
	if end > len(ids) {
		end = len(ids)
	}

	out := make([]V, 0, end-offset)
	for _, id := range ids[offset:end] {
		out = append(out, m[id])
	}
	return out
}

func all[V any](m map[int64]V, keep func(V) bool) []V {
	return page(m, store.Page{}, keep)
}

func sameFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
