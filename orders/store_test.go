package orders

import (
	"errors"
	"testing"

	"delivery-agent/models"
	"delivery-agent/statemachine"
)

func seed(statuses map[uint]models.OrderStatus) *Store {
	s := NewStore()
	var list []models.Order
	for id, status := range statuses {
		list = append(list, models.Order{ID: id, Status: status, DeliveryAddress: "12 Main St"})
	}
	s.SyncRemote(list)
	return s
}

func TestTransitionValid(t *testing.T) {
	s := seed(map[uint]models.OrderStatus{1: models.StatusReady})
	order, err := s.Transition(1, models.StatusPickedUp)
	if err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if order.Status != models.StatusPickedUp {
		t.Fatalf("expected picked_up, got %s", order.Status)
	}
	if stored, _ := s.Get(1); stored.Status != models.StatusPickedUp {
		t.Fatalf("store not updated: %s", stored.Status)
	}
}

func TestTransitionInvalidLeavesProjection(t *testing.T) {
	s := seed(map[uint]models.OrderStatus{1: models.StatusReady})
	_, err := s.Transition(1, models.StatusDelivered)
	var invalid *statemachine.InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if stored, _ := s.Get(1); stored.Status != models.StatusReady {
		t.Fatalf("projection mutated on rejected transition: %s", stored.Status)
	}
}

func TestTransitionUnknownOrder(t *testing.T) {
	s := NewStore()
	if _, err := s.Transition(99, models.StatusPickedUp); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestSyncRemoteServerWins(t *testing.T) {
	s := seed(map[uint]models.OrderStatus{1: models.StatusReady})

	// Agent confirms the first delivery stage locally...
	if _, err := s.Transition(1, models.StatusOutForDelivery); err != nil {
		t.Fatalf("local transition failed: %v", err)
	}
	// ...then the dashboard refresh reports the server's view.
	s.SyncRemote([]models.Order{{ID: 1, Status: models.StatusInTransit}})
	if stored, _ := s.Get(1); stored.Status != models.StatusInTransit {
		t.Fatalf("expected in_transit, got %s", stored.Status)
	}

	// A server value behind the local optimistic one still wins.
	s.SyncRemote([]models.Order{{ID: 1, Status: models.StatusReady}})
	if stored, _ := s.Get(1); stored.Status != models.StatusReady {
		t.Fatalf("expected ready after regression, got %s", stored.Status)
	}
}

func TestSyncRemoteDropsUnlistedOrders(t *testing.T) {
	s := seed(map[uint]models.OrderStatus{1: models.StatusReady, 2: models.StatusPickedUp})
	s.SyncRemote([]models.Order{{ID: 2, Status: models.StatusInTransit}})
	if _, ok := s.Get(1); ok {
		t.Fatal("order 1 should be dropped when the server stops reporting it")
	}
	if len(s.List()) != 1 {
		t.Fatalf("expected 1 projection, got %d", len(s.List()))
	}
}

func TestActiveDeliveries(t *testing.T) {
	s := seed(map[uint]models.OrderStatus{
		1: models.StatusReady,
		2: models.StatusPickedUp,
		3: models.StatusInTransit,
		4: models.StatusDelivered,
	})
	if got := s.ActiveDeliveries(); got != 2 {
		t.Fatalf("expected 2 active deliveries, got %d", got)
	}
}

func TestOpenIssues(t *testing.T) {
	s := NewStore()
	s.SyncRemote([]models.Order{
		{ID: 1, Status: models.StatusReady, OpenIssueCount: 2},
		{ID: 2, Status: models.StatusPickedUp},
		{ID: 3, Status: models.StatusInTransit, OpenIssueCount: 1},
	})
	if got := s.OpenIssues(); got != 3 {
		t.Fatalf("expected 3 open issues, got %d", got)
	}
}

func TestListOrderedByID(t *testing.T) {
	s := seed(map[uint]models.OrderStatus{3: models.StatusReady, 1: models.StatusPending, 2: models.StatusConfirmed})
	list := s.List()
	for i := 1; i < len(list); i++ {
		if list[i-1].ID > list[i].ID {
			t.Fatalf("list not ordered by id: %v", list)
		}
	}
}
