package dispatch

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/Axel-C19/OpenMarket/pkg/domain"
	"github.com/Axel-C19/OpenMarket/services/escrow/internal/journal"
)

type ActionType string

const (
	ActionMint             ActionType = "MINT"
	ActionTransfer         ActionType = "TRANSFER"
	ActionApprove          ActionType = "APPROVE"
	ActionDelegatedApprove ActionType = "DELEGATED_APPROVE"
	ActionBurn             ActionType = "BURN"
	ActionConfirmEscrow    ActionType = "CONFIRM_ESCROW"
	ActionMintFT           ActionType = "MINT_FT"
	ActionBurnFT           ActionType = "BURN_FT"
	ActionTransferFT       ActionType = "TRANSFER_FT"
	ActionApproveFT        ActionType = "APPROVE_FT"
	ActionEvict            ActionType = "EVICT_JOURNAL_ENTRY"
)

// Action is one decoded inbound variant. Only the fields the Type
// needs are set; validate reports which are missing.
type Action struct {
	Type       ActionType                `json:"type"`
	TokenID    *domain.TokenID           `json:"token_id,omitempty"`
	Metadata   *domain.TokenMetadata     `json:"metadata,omitempty"`
	From       *domain.Address           `json:"from,omitempty"`
	To         *domain.Address           `json:"to,omitempty"`
	Operator   *domain.Address           `json:"operator,omitempty"`
	Spender    *domain.Address           `json:"spender,omitempty"`
	SaleAmount *uint256.Int              `json:"sale_amount,omitempty"`
	Amount     *uint256.Int              `json:"amount,omitempty"`
	Value      *bool                     `json:"value,omitempty"`
	Approval   *domain.DelegatedApproval `json:"approval,omitempty"`
	Evict      *journal.Key              `json:"evict,omitempty"`
}

// Request is a mutating action plus the caller identity and the
// caller-supplied nonce that keys the journal entry.
type Request struct {
	Caller domain.Address `json:"caller"`
	Nonce  uint64         `json:"nonce"`
	Action Action         `json:"action"`
}

func (r Request) validate() error {
	if r.Caller.IsZero() {
		return fmt.Errorf("%w: caller is required", domain.ErrMalformedRequest)
	}
	a := r.Action
	switch a.Type {
	case ActionMint:
		return require(a.TokenID != nil, "token_id")
	case ActionTransfer:
		return require(a.TokenID != nil && a.From != nil && a.To != nil, "token_id, from, to")
	case ActionApprove:
		return require(a.TokenID != nil && a.Operator != nil, "token_id, operator")
	case ActionDelegatedApprove:
		return require(a.Approval != nil, "approval")
	case ActionBurn:
		return require(a.TokenID != nil, "token_id")
	case ActionConfirmEscrow:
		return require(a.Value != nil, "value")
	case ActionMintFT, ActionBurnFT:
		return require(a.Amount != nil, "amount")
	case ActionTransferFT:
		return require(a.To != nil && a.Amount != nil, "to, amount")
	case ActionApproveFT:
		return require(a.Spender != nil && a.Amount != nil, "spender, amount")
	case ActionEvict:
		return require(a.Evict != nil, "evict")
	default:
		return fmt.Errorf("%w: unknown action type %q", domain.ErrMalformedRequest, a.Type)
	}
}

func require(ok bool, fields string) error {
	if !ok {
		return fmt.Errorf("%w: missing %s", domain.ErrMalformedRequest, fields)
	}
	return nil
}
