package contract

import "context"

// MakeDeal funds a loan request and converts it into an active deal. The loan
// amount is delivered to the borrower within the same call: a native loan
// arrives as the creditor's attached amount and is forwarded, a token loan is
// pulled from the creditor to the borrower. The escrowed deposit carries
// forward into the deal untouched, so no locked counter moves here.
func (c *Contract) MakeDeal(ctx context.Context, call Call, id uint64) (*Deal, error) {
	if c.State.Pause {
		return nil, ErrPaused
	}
	loan, ok := c.State.Loans[id]
	if !ok {
		return nil, illegalArg("id")
	}
	if call.Sender == loan.Borrower {
		return nil, illegalArg("sender")
	}
	if loan.Validity != nil && !loan.Validity.After(call.Now) {
		return nil, illegalArg("now")
	}

	loanToken := c.State.Tokens[loan.LoanTokenID]
	var delivery Transfer
	if loanToken.Kind == KindNative {
		if call.Amount != loan.LoanAmount {
			return nil, ErrIllegalTxAmount
		}
		delivery = Transfer{Token: *loanToken, From: c.Address, To: loan.Borrower, Amount: loan.LoanAmount}
	} else {
		if call.Amount != 0 {
			return nil, ErrIllegalTxAmount
		}
		delivery = Transfer{Token: *loanToken, From: call.Sender, To: loan.Borrower, Amount: loan.LoanAmount}
	}
	if err := c.ledger.Apply(ctx, []Transfer{delivery}); err != nil {
		return nil, err
	}

	c.State.LastDealID++
	deal := &Deal{
		ID:             c.State.LastDealID,
		CreatedAt:      call.Now,
		Borrower:       loan.Borrower,
		Creditor:       call.Sender,
		LoanTokenID:    loan.LoanTokenID,
		LoanAmount:     loan.LoanAmount,
		Reward:         loan.Reward,
		DepositTokenID: loan.DepositTokenID,
		DepositAmount:  loan.DepositAmount,
		Expiry:         call.Now.Add(loan.Duration),
	}
	c.State.Deals[deal.ID] = deal
	delete(c.State.Loans, id)
	return deal, nil
}

// CloseDeal is the single finalization transition, with two outcomes.
//
// Borrower repayment: the borrower delivers loan amount plus reward to the
// creditor (attached native, forwarded; or tokens pulled borrower->creditor)
// and gets the deposit back. Allowed before or after expiry.
//
// Default settlement: the creditor or an admin closes a deal whose expiry has
// passed; the deposit goes to the creditor and no loan-asset moves. Early
// settlement by a non-borrower is refused.
//
// Both legs of the borrower path run in one ledger batch so the repayment and
// the refund commit or fail together.
func (c *Contract) CloseDeal(ctx context.Context, call Call, id uint64) error {
	deal, ok := c.State.Deals[id]
	if !ok {
		return illegalArg("id")
	}
	if call.Sender != deal.Borrower && call.Sender != deal.Creditor && !c.State.Admins[call.Sender] {
		return ErrAccessDenied
	}

	var transfers []Transfer
	var depositTo string
	if call.Sender == deal.Borrower {
		loanToken := c.State.Tokens[deal.LoanTokenID]
		due := deal.LoanAmount + deal.Reward
		if loanToken.Kind == KindNative {
			if call.Amount != due {
				return ErrIllegalTxAmount
			}
			transfers = append(transfers, Transfer{Token: *loanToken, From: c.Address, To: deal.Creditor, Amount: due})
		} else {
			if call.Amount != 0 {
				return ErrIllegalTxAmount
			}
			transfers = append(transfers, Transfer{Token: *loanToken, From: deal.Borrower, To: deal.Creditor, Amount: due})
		}
		depositTo = deal.Borrower
	} else {
		if !deal.Expiry.Before(call.Now) {
			return ErrAccessDenied
		}
		depositTo = deal.Creditor
	}

	transfers = append(transfers, c.depositRelease(depositTo, deal.DepositTokenID, deal.DepositAmount)...)
	if len(transfers) > 0 {
		if err := c.ledger.Apply(ctx, transfers); err != nil {
			return err
		}
	}
	c.unlockDeposit(deal.DepositTokenID, deal.DepositAmount)
	delete(c.State.Deals, id)
	return nil
}
