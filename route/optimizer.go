package route

import (
	"context"
	"fmt"
	"sort"

	"delivery-agent/models"
)

// Backend is the slice of the backend client the optimizer needs. The
// optimizer itself is an opaque black box on the server side.
type Backend interface {
	OptimizeRoute(ctx context.Context, orderIDs []uint) (models.RouteResult, error)
}

// OptimizationError wraps a backend optimizer failure. Callers degrade to
// Fallback rather than blocking the schedule view.
type OptimizationError struct {
	Err error
}

func (e *OptimizationError) Error() string {
	return fmt.Sprintf("route optimization failed: %v", e.Err)
}

func (e *OptimizationError) Unwrap() error { return e.Err }

// Optimizer requests a visiting order for a set of deliveries.
type Optimizer struct {
	api Backend
}

// NewOptimizer wraps the backend optimizer endpoint.
func NewOptimizer(api Backend) *Optimizer {
	return &Optimizer{api: api}
}

// Optimize returns the backend's visiting order for the given orders. Fewer
// than two stops short-circuit locally — there is nothing to optimize and no
// network call is made.
func (o *Optimizer) Optimize(ctx context.Context, orderIDs []uint) (models.RouteResult, error) {
	if len(orderIDs) < 2 {
		return models.RouteResult{StopOrder: append([]uint(nil), orderIDs...)}, nil
	}
	result, err := o.api.OptimizeRoute(ctx, orderIDs)
	if err != nil {
		return models.RouteResult{}, &OptimizationError{Err: err}
	}
	return result, nil
}

// Fallback is the naive ordering used when the optimizer is unavailable: the
// same ids sorted ascending, with no claimed savings.
func Fallback(orderIDs []uint) models.RouteResult {
	stops := append([]uint(nil), orderIDs...)
	sort.Slice(stops, func(i, j int) bool { return stops[i] < stops[j] })
	return models.RouteResult{StopOrder: stops}
}
