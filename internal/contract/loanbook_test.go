package contract_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/opdev7/LendTez/internal/contract"
)

var (
	tokT = contract.Token{Kind: contract.KindFungible, Address: "KT1tokT"}
	tokM = contract.Token{Kind: contract.KindMultiAsset, Address: "KT1tokM", SubID: 3}
)

func TestAddLoanValidation(t *testing.T) {
	c, _ := newFixture(t)
	ctx := context.Background()
	call := contract.Call{Sender: borrower, Now: t0}
	base := contract.AddLoanInput{
		LoanTokenID:    1,
		LoanAmount:     1_000,
		Reward:         50,
		DepositTokenID: 2,
		DepositAmount:  0,
		Duration:       30 * day,
	}

	cases := []struct {
		name   string
		mutate func(*contract.AddLoanInput)
		call   contract.Call
		want   error
	}{
		{"unknown loan token", func(in *contract.AddLoanInput) { in.LoanTokenID = 99 }, call, contract.ErrIllegalArgument},
		{"zero loan amount", func(in *contract.AddLoanInput) { in.LoanAmount = 0 }, call, contract.ErrIllegalArgument},
		{"same token both sides", func(in *contract.AddLoanInput) { in.DepositTokenID = 1 }, call, contract.ErrIllegalArgument},
		{"unknown deposit token", func(in *contract.AddLoanInput) { in.DepositTokenID = 99 }, call, contract.ErrIllegalArgument},
		{"too short", func(in *contract.AddLoanInput) { in.Duration = 6 * day }, call, contract.ErrIllegalArgument},
		{"too long", func(in *contract.AddLoanInput) { in.Duration = 181 * day }, call, contract.ErrIllegalArgument},
		{"validity in the past", func(in *contract.AddLoanInput) { v := t0.Add(-time.Second); in.Validity = &v }, call, contract.ErrIllegalArgument},
		{"validity now", func(in *contract.AddLoanInput) { v := t0; in.Validity = &v }, call, contract.ErrIllegalArgument},
		{"attached with token deposit", func(in *contract.AddLoanInput) {}, contract.Call{Sender: borrower, Amount: 1, Now: t0}, contract.ErrIllegalTxAmount},
	}
	for _, tc := range cases {
		in := base
		tc.mutate(&in)
		if _, err := c.AddLoan(ctx, tc.call, in); !errors.Is(err, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
	if len(c.State.Loans) != 0 || c.State.LastLoanID != 0 {
		t.Fatalf("rejected requests left state behind: %d loans, last id %d", len(c.State.Loans), c.State.LastLoanID)
	}

	if err := c.SetTokenActive(contract.Call{Sender: creator, Now: t0}, 1, false); err != nil {
		t.Fatalf("SetTokenActive: %v", err)
	}
	_, err := c.AddLoan(ctx, call, base)
	wantErr(t, err, contract.ErrIllegalArgument) // loan token inactive

	if err := c.SetPause(contract.Call{Sender: creator, Now: t0}, true); err != nil {
		t.Fatalf("SetPause: %v", err)
	}
	_, err = c.AddLoan(ctx, call, base)
	wantErr(t, err, contract.ErrPaused)
}

func TestAddLoanNativeDeposit(t *testing.T) {
	c, mem := newFixture(t)
	ctx := context.Background()
	in := contract.AddLoanInput{
		LoanTokenID:    1,
		LoanAmount:     100_000_000,
		Reward:         5_000_000,
		DepositTokenID: 0,
		DepositAmount:  15_000_000,
		Duration:       30 * day,
	}

	// The attached amount must match the declared deposit exactly.
	_, err := c.AddLoan(ctx, contract.Call{Sender: borrower, Amount: 14_999_999, Now: t0}, in)
	wantErr(t, err, contract.ErrIllegalTxAmount)
	_, err = c.AddLoan(ctx, contract.Call{Sender: borrower, Amount: 15_000_001, Now: t0}, in)
	wantErr(t, err, contract.ErrIllegalTxAmount)

	mem.Credit(nativeAsset, borrower, 15_000_000)
	deliver(t, mem, borrower, 15_000_000)
	loan, err := c.AddLoan(ctx, contract.Call{Sender: borrower, Amount: 15_000_000, Now: t0}, in)
	if err != nil {
		t.Fatalf("AddLoan: %v", err)
	}

	if loan.ID != 1 || c.State.LastLoanID != 1 {
		t.Fatalf("loan id = %d, last = %d", loan.ID, c.State.LastLoanID)
	}
	if loan.Borrower != borrower || loan.DepositAmount != 15_000_000 {
		t.Fatalf("loan record mismatch: %+v", loan)
	}
	if got := c.State.Tokens[0].LockedAmount; got != 15_000_000 {
		t.Fatalf("locked = %d", got)
	}
	if got := mem.Balance(nativeAsset, contractAddr); got != 15_000_000 {
		t.Fatalf("contract custody = %d", got)
	}
}

func TestAddLoanTokenDepositPullsFromBorrower(t *testing.T) {
	c, mem := newFixture(t)
	ctx := context.Background()
	in := contract.AddLoanInput{
		LoanTokenID:    0,
		LoanAmount:     1_000_000,
		DepositTokenID: 2,
		DepositAmount:  40,
		Duration:       14 * day,
	}

	// Pull fails when the borrower holds nothing; no state must move.
	_, err := c.AddLoan(ctx, contract.Call{Sender: borrower, Now: t0}, in)
	if err == nil {
		t.Fatalf("expected ledger failure")
	}
	if len(c.State.Loans) != 0 || c.State.Tokens[2].LockedAmount != 0 {
		t.Fatalf("failed pull mutated state")
	}

	mem.Credit(tokM, borrower, 100)
	loan, err := c.AddLoan(ctx, contract.Call{Sender: borrower, Now: t0}, in)
	if err != nil {
		t.Fatalf("AddLoan: %v", err)
	}
	if got := mem.Balance(tokM, contractAddr); got != 40 {
		t.Fatalf("contract custody = %d", got)
	}
	if got := mem.Balance(tokM, borrower); got != 60 {
		t.Fatalf("borrower balance = %d", got)
	}
	if got := c.State.Tokens[2].LockedAmount; got != 40 {
		t.Fatalf("locked = %d", got)
	}
	if loan.ID != 1 {
		t.Fatalf("loan id = %d", loan.ID)
	}
}

func TestAddLoanRejectsWrappingAmounts(t *testing.T) {
	c, _ := newFixture(t)
	ctx := context.Background()
	call := contract.Call{Sender: borrower, Now: t0}

	// Loan amount plus reward must fit in uint64, or the repayment total
	// would wrap below the principal.
	_, err := c.AddLoan(ctx, call, contract.AddLoanInput{
		LoanTokenID:    1,
		LoanAmount:     math.MaxUint64,
		Reward:         1,
		DepositTokenID: 2,
		Duration:       30 * day,
	})
	wantErr(t, err, contract.ErrIllegalArgument)

	// Same for the deposit asset's locked counter.
	c.State.Tokens[2].LockedAmount = math.MaxUint64 - 10
	_, err = c.AddLoan(ctx, call, contract.AddLoanInput{
		LoanTokenID:    1,
		LoanAmount:     1_000,
		DepositTokenID: 2,
		DepositAmount:  11,
		Duration:       30 * day,
	})
	wantErr(t, err, contract.ErrIllegalArgument)
	if len(c.State.Loans) != 0 {
		t.Fatalf("rejected request was recorded")
	}
}

func TestAddLoanZeroDeposit(t *testing.T) {
	c, _ := newFixture(t)
	loan, err := c.AddLoan(context.Background(), contract.Call{Sender: borrower, Now: t0}, contract.AddLoanInput{
		LoanTokenID:    1,
		LoanAmount:     500,
		DepositTokenID: 2,
		Duration:       10 * day,
	})
	if err != nil {
		t.Fatalf("AddLoan: %v", err)
	}
	if loan.DepositAmount != 0 || c.State.Tokens[2].LockedAmount != 0 {
		t.Fatalf("zero deposit moved escrow")
	}
}

func TestCancelLoanRefundsDeposit(t *testing.T) {
	c, mem := newFixture(t)
	ctx := context.Background()

	mem.Credit(tokT, borrower, 1_000)
	loan, err := c.AddLoan(ctx, contract.Call{Sender: borrower, Now: t0}, contract.AddLoanInput{
		LoanTokenID:    0,
		LoanAmount:     2_000_000,
		DepositTokenID: 1,
		DepositAmount:  1_000,
		Duration:       30 * day,
	})
	if err != nil {
		t.Fatalf("AddLoan: %v", err)
	}

	wantErr(t, c.CancelLoan(ctx, contract.Call{Sender: borrower, Amount: 1, Now: t0}, loan.ID), contract.ErrIllegalTxAmount)
	wantErr(t, c.CancelLoan(ctx, contract.Call{Sender: borrower, Now: t0}, 999), contract.ErrIllegalArgument)
	wantErr(t, c.CancelLoan(ctx, contract.Call{Sender: outsider, Now: t0}, loan.ID), contract.ErrAccessDenied)

	if err := c.CancelLoan(ctx, contract.Call{Sender: borrower, Now: t0}, loan.ID); err != nil {
		t.Fatalf("CancelLoan: %v", err)
	}
	if got := mem.Balance(tokT, borrower); got != 1_000 {
		t.Fatalf("borrower balance = %d", got)
	}
	if got := mem.Balance(tokT, contractAddr); got != 0 {
		t.Fatalf("contract custody = %d", got)
	}
	if c.State.Tokens[1].LockedAmount != 0 || len(c.State.Loans) != 0 {
		t.Fatalf("cancel left escrow state behind")
	}
	wantErr(t, c.CancelLoan(ctx, contract.Call{Sender: borrower, Now: t0}, loan.ID), contract.ErrIllegalArgument)
}

func TestCancelLoanByAdmin(t *testing.T) {
	c, mem := newFixture(t)
	ctx := context.Background()

	mem.Credit(nativeAsset, borrower, 500)
	deliver(t, mem, borrower, 500)
	loan, err := c.AddLoan(ctx, contract.Call{Sender: borrower, Amount: 500, Now: t0}, contract.AddLoanInput{
		LoanTokenID:    1,
		LoanAmount:     10_000,
		DepositTokenID: 0,
		DepositAmount:  500,
		Duration:       30 * day,
	})
	if err != nil {
		t.Fatalf("AddLoan: %v", err)
	}

	// The refund goes to the borrower, not to the cancelling admin.
	if err := c.CancelLoan(ctx, contract.Call{Sender: creator, Now: t0}, loan.ID); err != nil {
		t.Fatalf("CancelLoan: %v", err)
	}
	if got := mem.Balance(nativeAsset, borrower); got != 500 {
		t.Fatalf("borrower balance = %d", got)
	}
	if got := mem.Balance(nativeAsset, creator); got != 0 {
		t.Fatalf("admin pocketed the refund: %d", got)
	}
}
