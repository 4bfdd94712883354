package contract

import (
	"context"
	"time"
)

// AddAdmin adds an address to the admin set.
func (c *Contract) AddAdmin(call Call, address string) error {
	if err := c.adminCall(call); err != nil {
		return err
	}
	if c.State.Admins[address] {
		return illegalArg("address")
	}
	c.State.Admins[address] = true
	return nil
}

// RemoveAdmin removes an address from the admin set. The creator is a
// permanent member and can never be removed, not even by itself.
func (c *Contract) RemoveAdmin(call Call, address string) error {
	if err := c.adminCall(call); err != nil {
		return err
	}
	if address == c.State.Creator {
		return illegalArg("address")
	}
	if !c.State.Admins[address] {
		return illegalArg("address")
	}
	delete(c.State.Admins, address)
	return nil
}

// SetPause toggles creation of new loan requests and new deals. Writing the
// value already in effect is rejected, not silently ignored.
func (c *Contract) SetPause(call Call, pause bool) error {
	if err := c.adminCall(call); err != nil {
		return err
	}
	if c.State.Pause == pause {
		return illegalArg("pause")
	}
	c.State.Pause = pause
	return nil
}

// SetDurationBounds replaces the [min,max] bounds future loan requests must
// fit in. Existing loans and deals are unaffected.
func (c *Contract) SetDurationBounds(call Call, min, max time.Duration) error {
	if err := c.adminCall(call); err != nil {
		return err
	}
	if c.State.MinDuration == min && c.State.MaxDuration == max {
		return illegalArg("min,max")
	}
	if min <= 0 || min > max {
		return illegalArg("min")
	}
	c.State.MinDuration = min
	c.State.MaxDuration = max
	return nil
}

// SetDelegate records the delegation target for idle native balance and
// informs the host environment. Purely informational for escrow accounting.
func (c *Contract) SetDelegate(ctx context.Context, call Call, delegate *string) error {
	if err := c.adminCall(call); err != nil {
		return err
	}
	if sameDelegate(c.State.Delegate, delegate) {
		return illegalArg("delegate")
	}
	if err := c.ledger.SetDelegate(ctx, delegate); err != nil {
		return err
	}
	c.State.Delegate = delegate
	return nil
}

func sameDelegate(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// AddToken registers an asset in the catalog and assigns it the next token
// id. The external token is not probed for existence; a bogus descriptor is
// an operational risk the admins accept.
func (c *Contract) AddToken(call Call, in AddTokenInput) (*Token, error) {
	if err := c.adminCall(call); err != nil {
		return nil, err
	}
	if in.Kind != KindNative && in.Kind != KindFungible && in.Kind != KindMultiAsset {
		return nil, illegalArg("kind")
	}
	t := &Token{
		ID:       c.State.NextTokenID,
		Name:     in.Name,
		Address:  in.Address,
		Kind:     in.Kind,
		SubID:    in.SubID,
		Decimals: in.Decimals,
		Active:   true,
	}
	c.State.Tokens[t.ID] = t
	c.State.NextTokenID++
	return t, nil
}

// SetTokenActive flips a token's active flag. Deactivating a token blocks new
// loan requests against it; escrow already held stays valid.
func (c *Contract) SetTokenActive(call Call, id uint64, active bool) error {
	if err := c.adminCall(call); err != nil {
		return err
	}
	t, ok := c.State.Tokens[id]
	if !ok {
		return illegalArg("id")
	}
	if t.Active == active {
		return illegalArg("active")
	}
	t.Active = active
	return nil
}

// Withdraw sends native currency not locked as escrow out of the contract.
// This is the only path that moves native value without a loan or deal record
// behind it, so the free-balance check is what keeps escrow untouchable.
func (c *Contract) Withdraw(ctx context.Context, call Call, to string, tokenID, amount uint64) error {
	if err := c.adminCall(call); err != nil {
		return err
	}
	t, ok := c.State.Tokens[tokenID]
	if !ok || t.Kind != KindNative {
		return illegalArg("id")
	}
	if amount == 0 {
		return illegalArg("amount")
	}
	balance, err := c.ledger.NativeBalance(ctx, c.Address)
	if err != nil {
		return err
	}
	if balance < t.LockedAmount+amount {
		return illegalArg("amount")
	}
	return c.ledger.Apply(ctx, []Transfer{{Token: *t, From: c.Address, To: to, Amount: amount}})
}
