package orders

import (
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"delivery-agent/models"
	"delivery-agent/statemachine"
)

// ErrOrderNotFound is returned when no projection exists for the id.
var ErrOrderNotFound = errors.New("order not found")

// Store holds the agent's read-mostly order projections. It is the single
// writer for order state on this device: local transitions go through
// Transition, server state arrives through SyncRemote, and nothing else
// touches a projection.
type Store struct {
	mu     sync.RWMutex
	orders map[uint]models.Order
}

// NewStore returns an empty projection store.
func NewStore() *Store {
	return &Store{orders: make(map[uint]models.Order)}
}

// Get returns one projection by id.
func (s *Store) Get(id uint) (models.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	return o, ok
}

// List returns all projections ordered by id.
func (s *Store) List() []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Transition performs a locally requested status change (an agent action).
// Validation is synchronous and typed so the caller can block the illegal
// action; on error the projection is untouched.
func (s *Store) Transition(id uint, next models.OrderStatus) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return models.Order{}, ErrOrderNotFound
	}
	updated, err := statemachine.Apply(order, next)
	if err != nil {
		return order, err
	}
	updated.UpdatedAt = time.Now()
	s.orders[id] = updated
	return updated, nil
}

// SyncRemote replaces the projection set with the server's list, merging each
// incoming status through the remote-wins policy. Orders the server no longer
// reports are dropped — the assigned list is authoritative for what this
// agent carries.
func (s *Store) SyncRemote(list []models.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make(map[uint]models.Order, len(list))
	for _, in := range list {
		if existing, ok := s.orders[in.ID]; ok {
			merged, conflicted := statemachine.ApplyRemote(existing, string(in.Status))
			if conflicted {
				log.Printf("⚠️ order %d: server reports %s over local %s — server wins",
					in.ID, in.Status, existing.Status)
			}
			in.Status = merged.Status
		}
		next[in.ID] = in
	}
	s.orders = next
}

// OpenIssues sums the open issue counts across all projections, for the
// dashboard badge.
func (s *Store) OpenIssues() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, o := range s.orders {
		n += o.OpenIssueCount
	}
	return n
}

// ActiveDeliveries counts orders currently in the two-stage delivery flow.
// The location watch is not stopped automatically when this reaches zero;
// that teardown belongs to the agent session owner.
func (s *Store) ActiveDeliveries() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, o := range s.orders {
		switch o.Status {
		case models.StatusPickedUp, models.StatusOutForDelivery, models.StatusInTransit:
			n++
		}
	}
	return n
}
