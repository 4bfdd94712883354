// Package host is the execution-environment shell around the contract: it
// authenticates nothing itself (callers arrive pre-authenticated), but it
// serializes every entry-point call into the total order the contract
// requires, delivers attached native value into contract custody, and leaves
// the record of applied transitions behind as the sole observable trail.
package host

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"

	"github.com/opdev7/LendTez/internal/contract"
)

// Transition kinds written to the journal.
const (
	KindTransferAccepted = "transfer_accepted"
	KindWithdrawal       = "withdrawal"
	KindAdminAdded       = "admin_added"
	KindAdminRemoved     = "admin_removed"
	KindDelegateSet      = "delegate_set"
	KindPauseSet         = "pause_set"
	KindBoundsSet        = "duration_bounds_set"
	KindTokenAdded       = "token_added"
	KindTokenActiveSet   = "token_active_set"
	KindLoanCreated      = "loan_created"
	KindLoanCancelled    = "loan_cancelled"
	KindDealMade         = "deal_made"
	KindDealClosed       = "deal_closed"
)

// Transition is one applied state transition, journaled after the fact.
type Transition struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Payload   []byte    `json:"payload"`
	Hash      []byte    `json:"hash"`
	AppliedAt time.Time `json:"applied_at"`
}

type StateStore interface {
	Save(ctx context.Context, snapshot []byte) error
}

type TransitionStore interface {
	Append(ctx context.Context, rec Transition) error
}

type Broadcaster interface {
	Publish(channel string, payload []byte)
}

// Host owns the contract instance. All entry points run under one mutex:
// there is no intra-call suspension and no concurrent execution against the
// same state, which is what lets the contract skip its own locking.
type Host struct {
	mu       sync.Mutex
	contract *contract.Contract
	ledger   contract.Ledger

	states      StateStore
	transitions TransitionStore
	events      Broadcaster
	logger      *slog.Logger
	now         func() time.Time
}

type Options struct {
	States      StateStore
	Transitions TransitionStore
	Events      Broadcaster
}

func New(c *contract.Contract, ledger contract.Ledger, logger *slog.Logger, opts Options) *Host {
	return &Host{
		contract:    c,
		ledger:      ledger,
		states:      opts.States,
		transitions: opts.Transitions,
		events:      opts.Events,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// run executes one entry point under the call lock. An attached native amount
// is moved from the sender into contract custody first and moved back if the
// operation rejects the call, so a failed call has no net effect.
func (h *Host) run(ctx context.Context, kind, sender string, attached uint64, op func(call contract.Call) (any, error)) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	call := contract.Call{Sender: sender, Amount: attached, Now: h.now()}
	if attached > 0 {
		if err := h.ledger.Apply(ctx, []contract.Transfer{h.attachedIn(call)}); err != nil {
			return nil, err
		}
	}

	out, err := op(call)
	if err != nil {
		if attached > 0 {
			if rbErr := h.ledger.Apply(ctx, []contract.Transfer{h.attachedOut(call)}); rbErr != nil {
				h.logger.Error("attached amount rollback failed", "err", rbErr, "sender", sender, "amount", attached)
			}
		}
		return nil, err
	}

	h.record(ctx, kind, call, out)
	return out, nil
}

func (h *Host) attachedIn(call contract.Call) contract.Transfer {
	return contract.Transfer{
		Token:  contract.Token{Kind: contract.KindNative},
		From:   call.Sender,
		To:     h.contract.Address,
		Amount: call.Amount,
	}
}

func (h *Host) attachedOut(call contract.Call) contract.Transfer {
	tr := h.attachedIn(call)
	tr.From, tr.To = tr.To, tr.From
	return tr
}

// record journals the applied transition and refreshes the state snapshot.
// Persistence here is observability and restart recovery, not part of the
// transition itself: state and ledger are already consistent, so a write
// failure is logged and the call still succeeds.
func (h *Host) record(ctx context.Context, kind string, call contract.Call, data any) {
	payload, err := json.Marshal(map[string]any{
		"kind":   kind,
		"sender": call.Sender,
		"amount": call.Amount,
		"at":     call.Now,
		"data":   data,
	})
	if err != nil {
		h.logger.Error("transition payload marshal failed", "err", err, "kind", kind)
		return
	}

	digest := sha3.NewLegacyKeccak256()
	_, _ = digest.Write(payload)

	rec := Transition{
		ID:        uuid.NewString(),
		Kind:      kind,
		Payload:   payload,
		Hash:      digest.Sum(nil),
		AppliedAt: call.Now,
	}
	if h.transitions != nil {
		if err := h.transitions.Append(ctx, rec); err != nil {
			h.logger.Error("transition journal append failed", "err", err, "kind", kind)
		}
	}
	if h.states != nil {
		snapshot, err := h.contract.State.Snapshot()
		if err != nil {
			h.logger.Error("state snapshot marshal failed", "err", err)
		} else if err := h.states.Save(ctx, snapshot); err != nil {
			h.logger.Error("state snapshot save failed", "err", err)
		}
	}
	if h.events != nil {
		switch kind {
		case KindLoanCreated, KindLoanCancelled:
			h.events.Publish("loans", payload)
		case KindDealMade, KindDealClosed:
			h.events.Publish("deals", payload)
		}
	}
}

// AcceptTransfer is the no-op entry point: it takes an incidental native
// transfer into contract custody and does nothing else.
func (h *Host) AcceptTransfer(ctx context.Context, sender string, attached uint64) error {
	_, err := h.run(ctx, KindTransferAccepted, sender, attached, func(call contract.Call) (any, error) {
		return map[string]any{}, nil
	})
	return err
}

func (h *Host) Withdraw(ctx context.Context, sender string, attached uint64, to string, tokenID, amount uint64) error {
	_, err := h.run(ctx, KindWithdrawal, sender, attached, func(call contract.Call) (any, error) {
		if err := h.contract.Withdraw(ctx, call, to, tokenID, amount); err != nil {
			return nil, err
		}
		return map[string]any{"to": to, "token_id": tokenID, "value": amount}, nil
	})
	return err
}

func (h *Host) AddAdmin(ctx context.Context, sender string, attached uint64, address string) error {
	_, err := h.run(ctx, KindAdminAdded, sender, attached, func(call contract.Call) (any, error) {
		if err := h.contract.AddAdmin(call, address); err != nil {
			return nil, err
		}
		return map[string]any{"address": address}, nil
	})
	return err
}

func (h *Host) RemoveAdmin(ctx context.Context, sender string, attached uint64, address string) error {
	_, err := h.run(ctx, KindAdminRemoved, sender, attached, func(call contract.Call) (any, error) {
		if err := h.contract.RemoveAdmin(call, address); err != nil {
			return nil, err
		}
		return map[string]any{"address": address}, nil
	})
	return err
}

func (h *Host) SetDelegate(ctx context.Context, sender string, attached uint64, delegate *string) error {
	_, err := h.run(ctx, KindDelegateSet, sender, attached, func(call contract.Call) (any, error) {
		if err := h.contract.SetDelegate(ctx, call, delegate); err != nil {
			return nil, err
		}
		return map[string]any{"delegate": delegate}, nil
	})
	return err
}

func (h *Host) SetPause(ctx context.Context, sender string, attached uint64, pause bool) error {
	_, err := h.run(ctx, KindPauseSet, sender, attached, func(call contract.Call) (any, error) {
		if err := h.contract.SetPause(call, pause); err != nil {
			return nil, err
		}
		return map[string]any{"pause": pause}, nil
	})
	return err
}

func (h *Host) SetDurationBounds(ctx context.Context, sender string, attached uint64, min, max time.Duration) error {
	_, err := h.run(ctx, KindBoundsSet, sender, attached, func(call contract.Call) (any, error) {
		if err := h.contract.SetDurationBounds(call, min, max); err != nil {
			return nil, err
		}
		return map[string]any{"min": min.String(), "max": max.String()}, nil
	})
	return err
}

func (h *Host) AddToken(ctx context.Context, sender string, attached uint64, in contract.AddTokenInput) (*contract.Token, error) {
	out, err := h.run(ctx, KindTokenAdded, sender, attached, func(call contract.Call) (any, error) {
		return h.contract.AddToken(call, in)
	})
	if err != nil {
		return nil, err
	}
	return out.(*contract.Token), nil
}

func (h *Host) SetTokenActive(ctx context.Context, sender string, attached uint64, id uint64, active bool) error {
	_, err := h.run(ctx, KindTokenActiveSet, sender, attached, func(call contract.Call) (any, error) {
		if err := h.contract.SetTokenActive(call, id, active); err != nil {
			return nil, err
		}
		return map[string]any{"id": id, "active": active}, nil
	})
	return err
}

func (h *Host) AddLoan(ctx context.Context, sender string, attached uint64, in contract.AddLoanInput) (*contract.Loan, error) {
	out, err := h.run(ctx, KindLoanCreated, sender, attached, func(call contract.Call) (any, error) {
		return h.contract.AddLoan(ctx, call, in)
	})
	if err != nil {
		return nil, err
	}
	return out.(*contract.Loan), nil
}

func (h *Host) CancelLoan(ctx context.Context, sender string, attached uint64, id uint64) error {
	_, err := h.run(ctx, KindLoanCancelled, sender, attached, func(call contract.Call) (any, error) {
		if err := h.contract.CancelLoan(ctx, call, id); err != nil {
			return nil, err
		}
		return map[string]any{"id": id}, nil
	})
	return err
}

func (h *Host) MakeDeal(ctx context.Context, sender string, attached uint64, id uint64) (*contract.Deal, error) {
	out, err := h.run(ctx, KindDealMade, sender, attached, func(call contract.Call) (any, error) {
		return h.contract.MakeDeal(ctx, call, id)
	})
	if err != nil {
		return nil, err
	}
	return out.(*contract.Deal), nil
}

func (h *Host) CloseDeal(ctx context.Context, sender string, attached uint64, id uint64) error {
	_, err := h.run(ctx, KindDealClosed, sender, attached, func(call contract.Call) (any, error) {
		if err := h.contract.CloseDeal(ctx, call, id); err != nil {
			return nil, err
		}
		return map[string]any{"id": id}, nil
	})
	return err
}

// Read accessors below copy under the call lock so handlers never observe a
// transition in progress.

func (h *Host) IsAdmin(address string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.contract.State.Admins[address]
}

func (h *Host) Tokens() []contract.Token {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]contract.Token, 0, len(h.contract.State.Tokens))
	for _, t := range h.contract.State.Tokens {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (h *Host) Loans() []contract.Loan {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]contract.Loan, 0, len(h.contract.State.Loans))
	for _, l := range h.contract.State.Loans {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (h *Host) Loan(id uint64) (contract.Loan, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.contract.State.Loans[id]
	if !ok {
		return contract.Loan{}, false
	}
	return *l, true
}

func (h *Host) Deals() []contract.Deal {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]contract.Deal, 0, len(h.contract.State.Deals))
	for _, d := range h.contract.State.Deals {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (h *Host) Deal(id uint64) (contract.Deal, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	d, ok := h.contract.State.Deals[id]
	if !ok {
		return contract.Deal{}, false
	}
	return *d, true
}

func (h *Host) Paused() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.contract.State.Pause
}
