package domain

import "github.com/Axel-C19/OpenMarket/pkg/signature"

// ApprovalPayload is the canonical message a signer commits to when
// approving an operator off-band. Signing tools and the verifier both
// build it from the same fields.
type ApprovalPayload struct {
	TokenID  TokenID `json:"token_id"`
	Operator Address `json:"approved_operator"`
	Nonce    uint64  `json:"nonce"`
}

// DelegatedApproval is validated and consumed within one request; it
// has no stored lifecycle.
type DelegatedApproval struct {
	TokenID  TokenID            `json:"token_id"`
	Operator Address            `json:"approved_operator"`
	Signer   Address            `json:"signer"`
	Nonce    uint64             `json:"nonce"`
	Envelope signature.Envelope `json:"signature"`
}

// Payload reconstructs the signed message from the approval's fields.
func (d DelegatedApproval) Payload() ApprovalPayload {
	return ApprovalPayload{TokenID: d.TokenID, Operator: d.Operator, Nonce: d.Nonce}
}
