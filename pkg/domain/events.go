package domain

import "github.com/holiman/uint256"

type EventType string

const (
	EventTransfer         EventType = "TRANSFER"
	EventApproval         EventType = "APPROVAL"
	EventConfirmation     EventType = "CONFIRMATION"
	EventFungibleTransfer EventType = "FT_TRANSFER"
	EventFungibleApproval EventType = "FT_APPROVAL"
	EventEvicted          EventType = "EVICTED"
)

// PayoutLeg is one payee's share of a sale amount.
type PayoutLeg struct {
	Payee  Address      `json:"payee"`
	Amount *uint256.Int `json:"amount"`
}

// Event is the single reply type emitted by every mutating operation.
// Exactly the fields relevant to the Type are populated; the rest stay
// nil so journal payloads round-trip byte-for-byte.
type Event struct {
	Type     EventType    `json:"type"`
	TokenID  *TokenID     `json:"token_id,omitempty"`
	From     *Address     `json:"from,omitempty"`
	To       *Address     `json:"to,omitempty"`
	Owner    *Address     `json:"owner,omitempty"`
	Operator *Address     `json:"operator,omitempty"`
	Spender  *Address     `json:"spender,omitempty"`
	Amount   *uint256.Int `json:"amount,omitempty"`
	Payouts  []PayoutLeg  `json:"payouts,omitempty"`
	Role     Role         `json:"role,omitempty"`
	Wallet   *Address     `json:"wallet,omitempty"`
	Value    *bool        `json:"value,omitempty"`
	Closed   bool         `json:"closed,omitempty"`
	Rejected bool         `json:"rejected,omitempty"`
	TxHash   string       `json:"tx_hash,omitempty"`
}

func NewTransferEvent(tokenID TokenID, from, to Address, amount *uint256.Int, payouts []PayoutLeg) Event {
	id := tokenID
	return Event{
		Type:    EventTransfer,
		TokenID: &id,
		From:    &from,
		To:      &to,
		Amount:  amount,
		Payouts: payouts,
	}
}

func NewApprovalEvent(tokenID TokenID, owner, operator Address) Event {
	id := tokenID
	return Event{
		Type:     EventApproval,
		TokenID:  &id,
		Owner:    &owner,
		Operator: &operator,
	}
}

func NewConfirmationEvent(role Role, wallet Address, value, closed, rejected bool) Event {
	v := value
	return Event{
		Type:     EventConfirmation,
		Role:     role,
		Wallet:   &wallet,
		Value:    &v,
		Closed:   closed,
		Rejected: rejected,
	}
}

func NewFungibleTransferEvent(from, to Address, amount *uint256.Int) Event {
	return Event{
		Type:   EventFungibleTransfer,
		From:   &from,
		To:     &to,
		Amount: amount,
	}
}

func NewFungibleApprovalEvent(owner, spender Address, amount *uint256.Int) Event {
	return Event{
		Type:    EventFungibleApproval,
		Owner:   &owner,
		Spender: &spender,
		Amount:  amount,
	}
}

func NewEvictedEvent(txHash string) Event {
	return Event{Type: EventEvicted, TxHash: txHash}
}
