package contract

import "time"

// TokenKind selects the transfer mechanism for an asset in the catalog.
type TokenKind uint8

const (
	// KindNative is the chain-native currency. The contract itself is always
	// the mover: native value only enters via the amount attached to a call.
	KindNative TokenKind = iota
	// KindFungible is the single-pair token standard (one source, one
	// destination, one value per transfer message).
	KindFungible
	// KindMultiAsset is the batched multi-recipient token standard; transfers
	// carry a sub id selecting the asset within the token contract.
	KindMultiAsset
)

// Token is one catalog entry for an asset the contract can custody.
// LockedAmount is the running total escrowed by all live loan requests and
// deals denominated in this asset.
type Token struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	Kind         TokenKind `json:"kind"`
	SubID        uint64    `json:"sub_id"`
	Decimals     uint32    `json:"decimals"`
	Active       bool      `json:"active"`
	LockedAmount uint64    `json:"locked_amount"`
}

// Loan is a borrower's open offer to borrow against a posted deposit.
// The deposit is already in contract custody while the loan is live.
type Loan struct {
	ID             uint64        `json:"id"`
	CreatedAt      time.Time     `json:"created_at"`
	Borrower       string        `json:"borrower"`
	LoanTokenID    uint64        `json:"loan_token_id"`
	LoanAmount     uint64        `json:"loan_amount"`
	Reward         uint64        `json:"reward"`
	DepositTokenID uint64        `json:"deposit_token_id"`
	DepositAmount  uint64        `json:"deposit_amount"`
	Duration       time.Duration `json:"duration"`
	Validity       *time.Time    `json:"validity,omitempty"`
}

// Deal is a funded loan request: an active two-party obligation that expires
// at Expiry. The deposit escrowed by the originating loan request carries
// forward unchanged.
type Deal struct {
	ID             uint64    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Borrower       string    `json:"borrower"`
	Creditor       string    `json:"creditor"`
	LoanTokenID    uint64    `json:"loan_token_id"`
	LoanAmount     uint64    `json:"loan_amount"`
	Reward         uint64    `json:"reward"`
	DepositTokenID uint64    `json:"deposit_token_id"`
	DepositAmount  uint64    `json:"deposit_amount"`
	Expiry         time.Time `json:"exp"`
}

// Call carries what the host environment supplies for one entry-point call:
// the authenticated sender, the attached native amount (already delivered
// into contract custody), and the current timestamp.
type Call struct {
	Sender string
	Amount uint64
	Now    time.Time
}

// AddTokenInput describes a catalog entry to register. The contract performs
// no existence check against the external token; bookkeeping only.
type AddTokenInput struct {
	Name     string    `json:"name"`
	Address  string    `json:"address"`
	Kind     TokenKind `json:"kind"`
	SubID    uint64    `json:"sub_id"`
	Decimals uint32    `json:"decimals"`
}

// AddLoanInput describes a loan request to create.
type AddLoanInput struct {
	LoanTokenID    uint64        `json:"loan_token_id"`
	LoanAmount     uint64        `json:"loan_amount"`
	Reward         uint64        `json:"reward"`
	DepositTokenID uint64        `json:"deposit_token_id"`
	DepositAmount  uint64        `json:"deposit_amount"`
	Duration       time.Duration `json:"duration"`
	Validity       *time.Time    `json:"validity,omitempty"`
}
