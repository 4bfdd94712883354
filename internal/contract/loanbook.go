package contract

import "context"

// AddLoan creates a loan request and takes the deposit into escrow. A native
// deposit must arrive as the call's attached amount, exactly; a token deposit
// requires a zero attached amount and is pulled from the borrower (who must
// have pre-authorized the contract on the token's own ledger).
func (c *Contract) AddLoan(ctx context.Context, call Call, in AddLoanInput) (*Loan, error) {
	if c.State.Pause {
		return nil, ErrPaused
	}
	loanToken, ok := c.State.Tokens[in.LoanTokenID]
	if !ok {
		return nil, illegalArg("loan_token_id")
	}
	if !loanToken.Active {
		return nil, illegalArg("loan_token")
	}
	if in.LoanAmount == 0 {
		return nil, illegalArg("loan_amount")
	}
	// Amounts are uint64 minor units; a repayment total that wraps would let
	// the borrower owe less than the principal.
	if in.LoanAmount+in.Reward < in.LoanAmount {
		return nil, illegalArg("reward")
	}
	if in.LoanTokenID == in.DepositTokenID {
		return nil, illegalArg("deposit_token")
	}
	depositToken, ok := c.State.Tokens[in.DepositTokenID]
	if !ok {
		return nil, illegalArg("deposit_token_id")
	}
	if !depositToken.Active {
		return nil, illegalArg("deposit_token")
	}
	if in.Duration < c.State.MinDuration || in.Duration > c.State.MaxDuration {
		return nil, illegalArg("duration")
	}
	if in.Validity != nil && !in.Validity.After(call.Now) {
		return nil, illegalArg("validity")
	}
	if depositToken.LockedAmount+in.DepositAmount < depositToken.LockedAmount {
		return nil, illegalArg("deposit_amount")
	}

	if depositToken.Kind == KindNative {
		if call.Amount != in.DepositAmount {
			return nil, ErrIllegalTxAmount
		}
	} else {
		if call.Amount != 0 {
			return nil, ErrIllegalTxAmount
		}
		if in.DepositAmount > 0 {
			pull := Transfer{Token: *depositToken, From: call.Sender, To: c.Address, Amount: in.DepositAmount}
			if err := c.ledger.Apply(ctx, []Transfer{pull}); err != nil {
				return nil, err
			}
		}
	}

	depositToken.LockedAmount += in.DepositAmount
	c.State.LastLoanID++
	loan := &Loan{
		ID:             c.State.LastLoanID,
		CreatedAt:      call.Now,
		Borrower:       call.Sender,
		LoanTokenID:    in.LoanTokenID,
		LoanAmount:     in.LoanAmount,
		Reward:         in.Reward,
		DepositTokenID: in.DepositTokenID,
		DepositAmount:  in.DepositAmount,
		Duration:       in.Duration,
		Validity:       in.Validity,
	}
	c.State.Loans[loan.ID] = loan
	return loan, nil
}

// CancelLoan deletes an unfunded loan request and refunds the deposit to the
// borrower. Only the borrower or an admin may cancel.
func (c *Contract) CancelLoan(ctx context.Context, call Call, id uint64) error {
	if call.Amount != 0 {
		return ErrIllegalTxAmount
	}
	loan, ok := c.State.Loans[id]
	if !ok {
		return illegalArg("id")
	}
	if call.Sender != loan.Borrower && !c.State.Admins[call.Sender] {
		return ErrAccessDenied
	}
	refund := c.depositRelease(loan.Borrower, loan.DepositTokenID, loan.DepositAmount)
	if len(refund) > 0 {
		if err := c.ledger.Apply(ctx, refund); err != nil {
			return err
		}
	}
	c.unlockDeposit(loan.DepositTokenID, loan.DepositAmount)
	delete(c.State.Loans, id)
	return nil
}
