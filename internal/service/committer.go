package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sdrissi/giftforge/internal/database/repository"
	"github.com/sdrissi/giftforge/internal/pack"
)

// ErrCommitBusy is returned when Run is called while a commit is
// already in flight.
var ErrCommitBusy = errors.New("service: commit already running")

// CartStore is the external cart the pipeline transfers into.
type CartStore interface {
	AddToCart(ctx context.Context, e repository.CartEntry) error
}

// CommitState is the pipeline's lifecycle phase.
type CommitState string

const (
	StateIdle      CommitState = "idle"
	StateRunning   CommitState = "running"
	StateSucceeded CommitState = "succeeded"
	StateFailed    CommitState = "failed"
)

// Progress is the transient per-step report emitted while committing.
type Progress struct {
	Committed int
	Total     int
	State     CommitState
}

// QuantityPolicy decides how a multi-quantity item is transferred.
type QuantityPolicy string

const (
	// PolicySingleUnit sends every selected item as one quantity-1 cart
	// entry, matching the historical storefront behavior.
	PolicySingleUnit QuantityPolicy = "single_unit"
	// PolicyMerged sends the item's real quantity in a single entry.
	PolicyMerged QuantityPolicy = "merged"
)

// ParseQuantityPolicy maps a config string to a policy, defaulting to
// PolicySingleUnit for unknown values.
func ParseQuantityPolicy(s string) QuantityPolicy {
	if QuantityPolicy(s) == PolicyMerged {
		return PolicyMerged
	}
	return PolicySingleUnit
}

// CommitService transfers the selection store's pack into the cart one
// item at a time, in insertion order, each transfer spaced by Pacing.
// The pacing is a presentation throttle (it drives the staggered commit
// animation), not a correctness requirement.
type CommitService struct {
	Store   *pack.Store
	Cart    CartStore
	Effects pack.Effects
	Pacing  time.Duration
	Policy  QuantityPolicy

	mu    sync.Mutex
	state CommitState
}

// State reports the current pipeline state.
func (s *CommitService) State() CommitState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == "" {
		return StateIdle
	}
	return s.state
}

func (s *CommitService) setState(st CommitState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Reset returns a terminal pipeline to Idle. No-op while Running.
func (s *CommitService) Reset() {
	s.mu.Lock()
	if s.state != StateRunning {
		s.state = StateIdle
	}
	s.mu.Unlock()
}

// Run snapshots the pack and commits it. The snapshot taken at entry is
// what gets transferred; edits during the run (the UI disables them)
// are not picked up. On success the pack is cleared; on failure it is
// preserved so the user can retry. Cancellation via ctx stops pending
// transfers without emitting further effects.
func (s *CommitService) Run(ctx context.Context, progress func(Progress)) error {
	s.mu.Lock()
	if s.state == StateRunning {
		s.mu.Unlock()
		return ErrCommitBusy
	}
	s.state = StateRunning
	s.mu.Unlock()

	snap := s.Store.Snapshot()
	total := len(snap.Items)
	if total == 0 {
		s.setState(StateIdle)
		return pack.ErrEmptyPack
	}
	report := func(p Progress) {
		if progress != nil {
			progress(p)
		}
	}
	report(Progress{Committed: 0, Total: total, State: StateRunning})

	for i, item := range snap.Items {
		if err := s.pace(ctx); err != nil {
			s.setState(StateIdle)
			return err
		}
		entry := repository.CartEntry{
			ProductID:       item.ID,
			Name:            item.Name,
			PriceMillimes:   item.PriceMillimes,
			Quantity:        1,
			Personalization: snap.Note,
		}
		if s.Policy == PolicyMerged {
			entry.Quantity = item.Quantity
		}
		if err := s.Cart.AddToCart(ctx, entry); err != nil {
			if ctx.Err() != nil {
				// teardown mid-transfer, not a cart failure
				s.setState(StateIdle)
				return ctx.Err()
			}
			s.setState(StateFailed)
			report(Progress{Committed: i, Total: total, State: StateFailed})
			s.notify(pack.Notification{
				Title:       "Commit failed",
				Description: fmt.Sprintf("Item %d of %d could not be added to the cart.", i+1, total),
			})
			return fmt.Errorf("transfer item %d/%d: %w", i+1, total, err)
		}
		report(Progress{Committed: i + 1, Total: total, State: StateRunning})
	}

	s.Store.Clear()
	s.setState(StateSucceeded)
	report(Progress{Committed: total, Total: total, State: StateSucceeded})
	s.notify(pack.Notification{
		Title:       "Pack Added to Cart!",
		Description: "Would you like to proceed to checkout?",
		ActionLabel: "Go to cart",
	})
	return nil
}

// pace waits one pacing interval, or returns early when ctx is done.
func (s *CommitService) pace(ctx context.Context) error {
	if s.Pacing <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.Pacing)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *CommitService) notify(n pack.Notification) {
	if s.Effects != nil {
		s.Effects.Notify(n)
	}
}
