package contract

import "context"

// Transfer is one planned value movement. For native currency the contract is
// the mover and From is always the contract address; for tokens the transfer
// is executed on the token's own ledger between From and To.
type Transfer struct {
	Token  Token
	From   string
	To     string
	Amount uint64
}

// Ledger is the host-environment boundary for moving value and delegating
// idle native balance. Apply is all-or-nothing: either every transfer in the
// batch takes effect or none do, so a multi-leg settlement can never be
// observed half done.
type Ledger interface {
	Apply(ctx context.Context, transfers []Transfer) error
	NativeBalance(ctx context.Context, owner string) (uint64, error)
	SetDelegate(ctx context.Context, delegate *string) error
}

// depositRelease plans the escrow refund leg for a loan request or deal being
// resolved. A zero deposit needs no transfer.
func (c *Contract) depositRelease(to string, tokenID, amount uint64) []Transfer {
	if amount == 0 {
		return nil
	}
	return []Transfer{{Token: *c.State.Tokens[tokenID], From: c.Address, To: to, Amount: amount}}
}

// unlockDeposit decrements the deposit asset's locked counter after the
// refund leg has been applied.
func (c *Contract) unlockDeposit(tokenID, amount uint64) {
	if amount > 0 {
		c.State.Tokens[tokenID].LockedAmount -= amount
	}
}
