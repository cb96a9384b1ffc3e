package registry

import (
	"encoding/base64"
	"fmt"
	"sort"

	"github.com/holiman/uint256"

	"github.com/Axel-C19/OpenMarket/pkg/domain"
	"github.com/Axel-C19/OpenMarket/pkg/payout"
	"github.com/Axel-C19/OpenMarket/pkg/signature"
)

// Token is one unique asset. Records are never deleted: burn
// reassigns the token to the burn sentinel so history stays auditable.
type Token struct {
	ID       domain.TokenID
	Owner    domain.Address
	Approved map[domain.Address]struct{}
	Metadata *domain.TokenMetadata
}

// VerifyFunc checks a detached signature envelope over a payload.
type VerifyFunc func(payload any, env signature.Envelope) (signature.VerifyResult, error)

// Registry owns token ownership, per-token operator approvals and the
// owner inverse index. The forward map and the index are mutated
// inside the same operation and are never observable out of sync.
type Registry struct {
	tokens    map[domain.TokenID]*Token
	byOwner   map[domain.Address]map[domain.TokenID]struct{}
	royalties domain.RoyaltyTable
	verify    VerifyFunc
}

func New(royalties domain.RoyaltyTable, verify VerifyFunc) (*Registry, error) {
	if err := royalties.Validate(); err != nil {
		return nil, err
	}
	if verify == nil {
		verify = signature.Verify
	}
	return &Registry{
		tokens:    make(map[domain.TokenID]*Token),
		byOwner:   make(map[domain.Address]map[domain.TokenID]struct{}),
		royalties: royalties,
		verify:    verify,
	}, nil
}

func (r *Registry) Mint(tokenID domain.TokenID, metadata *domain.TokenMetadata, initiator domain.Address) (domain.Event, error) {
	if initiator.IsZero() {
		return domain.Event{}, fmt.Errorf("%w: mint to zero address", domain.ErrInvalidDestination)
	}
	if _, ok := r.tokens[tokenID]; ok {
		return domain.Event{}, fmt.Errorf("%w: token %d", domain.ErrAlreadyExists, tokenID)
	}
	r.tokens[tokenID] = &Token{
		ID:       tokenID,
		Owner:    initiator,
		Approved: make(map[domain.Address]struct{}),
		Metadata: metadata,
	}
	r.index(initiator, tokenID)
	return domain.NewTransferEvent(tokenID, domain.ZeroAddress, initiator, nil, nil), nil
}

// Transfer moves ownership and clears every operator approval for the
// token. When a sale amount is supplied the royalty split is computed
// and carried on the event.
func (r *Registry) Transfer(tokenID domain.TokenID, from, to domain.Address, saleAmount *uint256.Int) (domain.Event, error) {
	token, ok := r.tokens[tokenID]
	if !ok {
		return domain.Event{}, fmt.Errorf("%w: token %d", domain.ErrUnknownToken, tokenID)
	}
	if token.Owner != from {
		return domain.Event{}, fmt.Errorf("%w: token %d is not held by %s", domain.ErrNotOwner, tokenID, from)
	}
	if to.IsZero() {
		return domain.Event{}, fmt.Errorf("%w: transfer to zero address", domain.ErrInvalidDestination)
	}

	var payouts []domain.PayoutLeg
	if saleAmount != nil {
		legs, err := payout.Split(saleAmount, r.royalties, from)
		if err != nil {
			return domain.Event{}, err
		}
		payouts = legs
	}

	r.move(token, to)
	return domain.NewTransferEvent(tokenID, from, to, cloneAmount(saleAmount), payouts), nil
}

// Burn reassigns the token to the burn sentinel. The record survives.
func (r *Registry) Burn(tokenID domain.TokenID, caller domain.Address) (domain.Event, error) {
	token, ok := r.tokens[tokenID]
	if !ok {
		return domain.Event{}, fmt.Errorf("%w: token %d", domain.ErrUnknownToken, tokenID)
	}
	if token.Owner != caller {
		return domain.Event{}, fmt.Errorf("%w: token %d", domain.ErrNotOwner, tokenID)
	}
	from := token.Owner
	r.move(token, domain.BurnAddress)
	return domain.NewTransferEvent(tokenID, from, domain.BurnAddress, nil, nil), nil
}

// Approve adds operator to the token's approved set. Several
// operators may be approved at once; a transfer clears them all.
func (r *Registry) Approve(tokenID domain.TokenID, operator, caller domain.Address) (domain.Event, error) {
	token, ok := r.tokens[tokenID]
	if !ok {
		return domain.Event{}, fmt.Errorf("%w: token %d", domain.ErrUnknownToken, tokenID)
	}
	if token.Owner != caller {
		return domain.Event{}, fmt.Errorf("%w: only the owner may approve", domain.ErrUnauthorized)
	}
	if operator.IsZero() {
		return domain.Event{}, fmt.Errorf("%w: approve zero address", domain.ErrInvalidDestination)
	}
	token.Approved[operator] = struct{}{}
	return domain.NewApprovalEvent(tokenID, caller, operator), nil
}

// DelegatedApprove validates the signer's detached signature over the
// canonical approval payload, then behaves exactly like Approve with
// the signer as caller. The signer address must be the ed25519 public
// key that produced the signature.
func (r *Registry) DelegatedApprove(da domain.DelegatedApproval) (domain.Event, error) {
	if _, err := r.verify(da.Payload(), da.Envelope); err != nil {
		return domain.Event{}, fmt.Errorf("%w: %v", domain.ErrBadSignature, err)
	}
	pub, err := base64.StdEncoding.DecodeString(da.Envelope.PublicKey)
	if err != nil || len(pub) != len(domain.Address{}) {
		return domain.Event{}, fmt.Errorf("%w: malformed public key", domain.ErrBadSignature)
	}
	var signerKey domain.Address
	copy(signerKey[:], pub)
	if signerKey != da.Signer {
		return domain.Event{}, fmt.Errorf("%w: signature not by declared signer", domain.ErrBadSignature)
	}
	return r.Approve(da.TokenID, da.Operator, da.Signer)
}

func (r *Registry) OwnerOf(tokenID domain.TokenID) (domain.Address, error) {
	token, ok := r.tokens[tokenID]
	if !ok {
		return domain.Address{}, fmt.Errorf("%w: token %d", domain.ErrUnknownToken, tokenID)
	}
	return token.Owner, nil
}

// IsApproved reports whether candidate may act on the token: it is
// the owner or sits in the approved set.
func (r *Registry) IsApproved(tokenID domain.TokenID, candidate domain.Address) (bool, error) {
	token, ok := r.tokens[tokenID]
	if !ok {
		return false, fmt.Errorf("%w: token %d", domain.ErrUnknownToken, tokenID)
	}
	if token.Owner == candidate {
		return true, nil
	}
	_, approved := token.Approved[candidate]
	return approved, nil
}

func (r *Registry) ApprovedOperators(tokenID domain.TokenID) ([]domain.Address, error) {
	token, ok := r.tokens[tokenID]
	if !ok {
		return nil, fmt.Errorf("%w: token %d", domain.ErrUnknownToken, tokenID)
	}
	out := make([]domain.Address, 0, len(token.Approved))
	for op := range token.Approved {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

func (r *Registry) MetadataOf(tokenID domain.TokenID) (*domain.TokenMetadata, error) {
	token, ok := r.tokens[tokenID]
	if !ok {
		return nil, fmt.Errorf("%w: token %d", domain.ErrUnknownToken, tokenID)
	}
	return token.Metadata, nil
}

func (r *Registry) TokensForOwner(owner domain.Address) []domain.TokenID {
	set := r.byOwner[owner]
	out := make([]domain.TokenID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r *Registry) TokenCount() int { return len(r.tokens) }

func (r *Registry) Royalties() domain.RoyaltyTable {
	out := make(domain.RoyaltyTable, len(r.royalties))
	copy(out, r.royalties)
	return out
}

func (r *Registry) move(token *Token, to domain.Address) {
	r.unindex(token.Owner, token.ID)
	token.Owner = to
	token.Approved = make(map[domain.Address]struct{})
	r.index(to, token.ID)
}

func (r *Registry) index(owner domain.Address, tokenID domain.TokenID) {
	set, ok := r.byOwner[owner]
	if !ok {
		set = make(map[domain.TokenID]struct{})
		r.byOwner[owner] = set
	}
	set[tokenID] = struct{}{}
}

func (r *Registry) unindex(owner domain.Address, tokenID domain.TokenID) {
	set, ok := r.byOwner[owner]
	if !ok {
		return
	}
	delete(set, tokenID)
	if len(set) == 0 {
		delete(r.byOwner, owner)
	}
}

func cloneAmount(a *uint256.Int) *uint256.Int {
	if a == nil {
		return nil
	}
	return a.Clone()
}
