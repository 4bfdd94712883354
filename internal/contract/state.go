package contract

import (
	"encoding/json"
	"time"
)

const (
	defaultMinDuration = 7 * 24 * time.Hour
	defaultMaxDuration = 180 * 24 * time.Hour
)

// State is the full persisted surface of the contract. It is owned by exactly
// one Contract instance; operations mutate it only under the host's call
// serialization, so no locking happens at this level.
//
// Id counters are monotonic and never reused: token ids start at 0, loan and
// deal ids at 1. Deleting a loan or deal leaves a gap, never a recycled id.
type State struct {
	Creator     string            `json:"creator"`
	Pause       bool              `json:"pause"`
	Delegate    *string           `json:"delegate,omitempty"`
	Admins      map[string]bool   `json:"admins"`
	MinDuration time.Duration     `json:"min_duration"`
	MaxDuration time.Duration     `json:"max_duration"`
	NextTokenID uint64            `json:"next_token_id"`
	Tokens      map[uint64]*Token `json:"tokens"`
	LastLoanID  uint64            `json:"last_loan_id"`
	Loans       map[uint64]*Loan  `json:"loans"`
	LastDealID  uint64            `json:"last_deal_id"`
	Deals       map[uint64]*Deal  `json:"deals"`
}

// NewState returns the bootstrap state: the creator is the sole admin and can
// never be removed, nothing is paused, and the deal duration bounds start at
// 7 and 180 days.
func NewState(creator string) *State {
	return &State{
		Creator:     creator,
		Admins:      map[string]bool{creator: true},
		MinDuration: defaultMinDuration,
		MaxDuration: defaultMaxDuration,
		Tokens:      map[uint64]*Token{},
		Loans:       map[uint64]*Loan{},
		Deals:       map[uint64]*Deal{},
	}
}

// Snapshot serializes the whole state for persistence.
func (s *State) Snapshot() ([]byte, error) {
	return json.Marshal(s)
}

// RestoreState rebuilds a state container from a snapshot produced by
// Snapshot. Nil maps are re-initialized so a snapshot taken before any
// tokens or loans existed restores cleanly.
func RestoreState(snapshot []byte) (*State, error) {
	st := &State{}
	if err := json.Unmarshal(snapshot, st); err != nil {
		return nil, err
	}
	if st.Admins == nil {
		st.Admins = map[string]bool{}
	}
	if st.Tokens == nil {
		st.Tokens = map[uint64]*Token{}
	}
	if st.Loans == nil {
		st.Loans = map[uint64]*Loan{}
	}
	if st.Deals == nil {
		st.Deals = map[uint64]*Deal{}
	}
	return st, nil
}

// Contract binds the state container to the ledger that moves value and to
// the contract's own custody address.
type Contract struct {
	Address string
	State   *State

	ledger Ledger
}

func New(address string, state *State, ledger Ledger) *Contract {
	return &Contract{Address: address, State: state, ledger: ledger}
}

// adminCall runs the shared preamble of admin entry points: no attached
// native value, sender must be an admin.
func (c *Contract) adminCall(call Call) error {
	if call.Amount != 0 {
		return ErrIllegalTxAmount
	}
	if !c.State.Admins[call.Sender] {
		return ErrAccessDenied
	}
	return nil
}
