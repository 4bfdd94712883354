package contract_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/opdev7/LendTez/internal/contract"
	"github.com/opdev7/LendTez/internal/ledger"
)

const (
	creator      = "tz1creator"
	adminAddr    = "tz1admin"
	borrower     = "tz1borrower"
	creditor     = "tz1creditor"
	outsider     = "tz1outsider"
	contractAddr = "KT1contract"
)

const day = 24 * time.Hour

var t0 = time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC)

var nativeAsset = contract.Token{Kind: contract.KindNative}

// newFixture builds a contract with the creator as sole admin and a catalog
// of native (id 0), a single-pair token (id 1) and a multi-asset token (id 2).
func newFixture(t *testing.T) (*contract.Contract, *ledger.Memory) {
	t.Helper()
	mem := ledger.NewMemory()
	c := contract.New(contractAddr, contract.NewState(creator), mem)

	call := contract.Call{Sender: creator, Now: t0}
	tokens := []contract.AddTokenInput{
		{Name: "XTZ", Address: contractAddr, Kind: contract.KindNative, Decimals: 6},
		{Name: "tokT", Address: "KT1tokT", Kind: contract.KindFungible, Decimals: 8},
		{Name: "tokM", Address: "KT1tokM", Kind: contract.KindMultiAsset, SubID: 3, Decimals: 0},
	}
	for _, in := range tokens {
		if _, err := c.AddToken(call, in); err != nil {
			t.Fatalf("AddToken(%s): %v", in.Name, err)
		}
	}
	return c, mem
}

// deliver mimics the host moving an attached native amount into contract
// custody before the entry point runs.
func deliver(t *testing.T, mem *ledger.Memory, from string, amount uint64) {
	t.Helper()
	err := mem.Apply(context.Background(), []contract.Transfer{
		{Token: nativeAsset, From: from, To: contractAddr, Amount: amount},
	})
	if err != nil {
		t.Fatalf("deliver attached: %v", err)
	}
}

func wantErr(t *testing.T, got, want error) {
	t.Helper()
	if !errors.Is(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
