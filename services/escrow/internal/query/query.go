package query

import (
	"context"

	"github.com/Axel-C19/OpenMarket/pkg/domain"
	"github.com/Axel-C19/OpenMarket/services/escrow/internal/dispatch"
)

// Projection answers read-only questions about contract state. Every
// accessor goes through the dispatcher's lock, so a query sees one
// consistent point in time and never a half-applied action.
type Projection struct {
	d    *dispatch.Dispatcher
	name string
}

func New(d *dispatch.Dispatcher, contractName string) *Projection {
	return &Projection{d: d, name: contractName}
}

// PartyView mirrors one escrow party; Confirmation nil means unvoted.
type PartyView struct {
	Wallet       domain.Address `json:"wallet"`
	Confirmation *bool          `json:"confirmation"`
}

type ContractStateView struct {
	Name       string    `json:"name"`
	Seller     PartyView `json:"seller"`
	Client     PartyView `json:"client"`
	Closed     bool      `json:"closed"`
	Rejected   bool      `json:"rejected"`
	TokenCount int       `json:"token_count"`
	JournalLen int       `json:"journal_len"`
}

func (p *Projection) ContractState(ctx context.Context) (ContractStateView, error) {
	state, tokenCount, journalLen, err := p.d.StateSummary(ctx)
	if err != nil {
		return ContractStateView{}, err
	}
	return ContractStateView{
		Name:       p.name,
		Seller:     PartyView{Wallet: state.Seller.Wallet, Confirmation: state.Seller.Confirmation},
		Client:     PartyView{Wallet: state.Client.Wallet, Confirmation: state.Client.Confirmation},
		Closed:     state.Closed,
		Rejected:   state.Rejected,
		TokenCount: tokenCount,
		JournalLen: journalLen,
	}, nil
}

type TokenView struct {
	TokenID  domain.TokenID        `json:"token_id"`
	Owner    domain.Address        `json:"owner"`
	Burned   bool                  `json:"burned"`
	Approved []domain.Address      `json:"approved"`
	Metadata *domain.TokenMetadata `json:"metadata,omitempty"`
}

func (p *Projection) Token(tokenID domain.TokenID) (TokenView, error) {
	owner, approved, metadata, err := p.d.TokenInfo(tokenID)
	if err != nil {
		return TokenView{}, err
	}
	return TokenView{
		TokenID:  tokenID,
		Owner:    owner,
		Burned:   owner.IsBurn(),
		Approved: approved,
		Metadata: metadata,
	}, nil
}

func (p *Projection) TokensForOwner(owner domain.Address) []domain.TokenID {
	return p.d.TokensForOwner(owner)
}

func (p *Projection) IsApproved(tokenID domain.TokenID, candidate domain.Address) (bool, error) {
	return p.d.IsApproved(tokenID, candidate)
}

type BalanceView struct {
	Account domain.Address `json:"account"`
	Balance string         `json:"balance"`
}

func (p *Projection) Balance(account domain.Address) BalanceView {
	return BalanceView{Account: account, Balance: p.d.BalanceOf(account).Dec()}
}

func (p *Projection) TotalSupply() string {
	return p.d.TotalSupply().Dec()
}
