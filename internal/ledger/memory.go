package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/opdev7/LendTez/internal/contract"
)

const nativeKey = "native"

// Memory is an in-process ledger: the balance rail for local runs and tests.
// Apply validates the whole batch against staged balances before committing,
// so a failing batch leaves every balance untouched.
type Memory struct {
	mu       sync.Mutex
	balances map[string]map[string]uint64 // asset key -> owner -> balance
	delegate *string
}

func NewMemory() *Memory {
	return &Memory{balances: map[string]map[string]uint64{}}
}

func assetKey(t contract.Token) string {
	if t.Kind == contract.KindNative {
		return nativeKey
	}
	return fmt.Sprintf("%s/%d", t.Address, t.SubID)
}

func (m *Memory) Apply(_ context.Context, transfers []contract.Transfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	type slot struct{ asset, owner string }
	staged := map[slot]uint64{}
	get := func(s slot) uint64 {
		if v, ok := staged[s]; ok {
			return v
		}
		return m.balances[s.asset][s.owner]
	}

	for _, tr := range transfers {
		key := assetKey(tr.Token)
		from := slot{key, tr.From}
		have := get(from)
		if have < tr.Amount {
			return fmt.Errorf("insufficient balance: %s holds %d of %s, needs %d", tr.From, have, key, tr.Amount)
		}
		staged[from] = have - tr.Amount
		to := slot{key, tr.To}
		staged[to] = get(to) + tr.Amount
	}

	for s, v := range staged {
		owners, ok := m.balances[s.asset]
		if !ok {
			owners = map[string]uint64{}
			m.balances[s.asset] = owners
		}
		owners[s.owner] = v
	}
	return nil
}

func (m *Memory) NativeBalance(_ context.Context, owner string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[nativeKey][owner], nil
}

func (m *Memory) SetDelegate(_ context.Context, delegate *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delegate = delegate
	return nil
}

func (m *Memory) Delegate() *string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.delegate
}

// Credit mints balance out of thin air; seeding for tests and local runs.
func (m *Memory) Credit(t contract.Token, owner string, amount uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := assetKey(t)
	owners, ok := m.balances[key]
	if !ok {
		owners = map[string]uint64{}
		m.balances[key] = owners
	}
	owners[owner] += amount
}

// Balance reads one holding; test assertions.
func (m *Memory) Balance(t contract.Token, owner string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[assetKey(t)][owner]
}
