package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/modelmux/modelmux/services"
	"github.com/modelmux/modelmux/services/providers"
	"github.com/modelmux/modelmux/services/selector"
	"go.uber.org/zap"
)

// Outcome is the result of one successful dispatch. Attempted lists every
// provider tried, in order; FellBack is true when the winning provider was
// not the first attempt.
type Outcome struct {
	ID        uuid.UUID
	Provider  string
	Payload   string
	Attempted []string
	FellBack  bool
}

// ExhaustedError is returned when every eligible provider was tried and
// failed, or none was ever selectable. LastErr is the final invocation
// error, or ErrNoProviderAvailable when zero providers were selectable.
type ExhaustedError struct {
	Attempted []string
	LastErr   error
}

// Error implements the error interface
func (e *ExhaustedError) Error() string {
	if len(e.Attempted) == 0 {
		return fmt.Sprintf("dispatch exhausted: %v", e.LastErr)
	}
	return fmt.Sprintf("dispatch exhausted after %d providers %v: %v", len(e.Attempted), e.Attempted, e.LastErr)
}

// Unwrap implements errors.Unwrap
func (e *ExhaustedError) Unwrap() error {
	return e.LastErr
}

// Dispatcher orchestrates one call: select a provider, invoke it, and on
// failure advance to the next eligible provider in priority order. It holds
// no state across calls; each dispatch is independent beyond the shared
// registry and limiter behind the selector, so concurrent dispatches are
// safe.
type Dispatcher struct {
	selector *selector.Selector
	invoker  providers.Invoker
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher over the selector and the external
// invoke collaborator
func NewDispatcher(sel *selector.Selector, invoker providers.Invoker, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		selector: sel,
		invoker:  invoker,
		logger:   logger,
	}
}

// Dispatch runs the fallback loop until a provider succeeds or the selector
// reports no eligible provider. The excluded set only grows, so each
// provider is attempted at most once per call and total attempts are bounded
// by the number of enabled providers. A timeout or cancellation from the
// invoker is treated like any other failure: the provider is excluded and
// the loop advances. Consumed admission slots are not refunded on failure; a
// failed call still counted against that provider's budget.
func (d *Dispatcher) Dispatch(ctx context.Context, req providers.Request) (*Outcome, error) {
	dispatchID := uuid.New()
	excluded := make(map[string]bool)
	var attempted []string
	var lastErr error

	for {
		desc, err := d.selector.Select(req, excluded)
		if err != nil {
			if lastErr == nil {
				// zero providers were ever selectable
				lastErr = services.ErrNoProviderAvailable
			}
			d.logger.Warn("dispatch exhausted",
				zap.String("dispatch_id", dispatchID.String()),
				zap.Strings("attempted", attempted),
				zap.Error(lastErr))
			return nil, &ExhaustedError{Attempted: attempted, LastErr: lastErr}
		}

		attempted = append(attempted, desc.Name)
		start := time.Now()

		payload, err := d.invoker.Invoke(ctx, desc, req)
		if err != nil {
			excluded[desc.Name] = true
			lastErr = services.NewInvocationError(desc.Name, err)
			d.logger.Warn("provider invocation failed, advancing to next provider",
				zap.String("dispatch_id", dispatchID.String()),
				zap.String("provider", desc.Name),
				zap.Int("attempt", len(attempted)),
				zap.Error(err))
			continue
		}

		d.logger.Info("dispatch succeeded",
			zap.String("dispatch_id", dispatchID.String()),
			zap.String("provider", desc.Name),
			zap.Int("attempts", len(attempted)),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()))

		return &Outcome{
			ID:        dispatchID,
			Provider:  desc.Name,
			Payload:   payload,
			Attempted: attempted,
			FellBack:  len(attempted) > 1,
		}, nil
	}
}
