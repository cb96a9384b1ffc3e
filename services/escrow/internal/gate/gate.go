package gate

import (
	"fmt"

	"github.com/Axel-C19/OpenMarket/pkg/domain"
)

// Party is one side of the agreement. A nil Confirmation means the
// party has not voted; a cast vote is final.
type Party struct {
	Wallet       domain.Address `json:"wallet"`
	Confirmation *bool          `json:"confirmation,omitempty"`
}

// State is a point-in-time copy of the gate, safe to hand out.
type State struct {
	Seller   Party `json:"seller"`
	Client   Party `json:"client"`
	Closed   bool  `json:"closed"`
	Rejected bool  `json:"rejected"`
}

// Gate is the seller/client confirmation state machine. It closes
// exactly once, the moment both parties have confirmed true. A false
// vote from either side leaves it permanently rejected instead.
type Gate struct {
	seller   Party
	client   Party
	closed   bool
	rejected bool
}

func New(seller, client domain.Address) *Gate {
	return &Gate{
		seller: Party{Wallet: seller},
		client: Party{Wallet: client},
	}
}

// Confirm casts the vote for role. The caller wallet must match the
// role's registered wallet and the party must not have voted yet.
func (g *Gate) Confirm(role domain.Role, wallet domain.Address, value bool) (domain.Event, error) {
	party := g.party(role)
	if party == nil {
		return domain.Event{}, fmt.Errorf("%w: unknown role %q", domain.ErrUnauthorized, role)
	}
	if party.Wallet != wallet {
		return domain.Event{}, fmt.Errorf("%w: wallet does not hold role %s", domain.ErrUnauthorized, role)
	}
	if g.closed {
		return domain.Event{}, fmt.Errorf("%w: agreement already closed", domain.ErrAlreadyVoted)
	}
	if party.Confirmation != nil {
		return domain.Event{}, fmt.Errorf("%w: role %s", domain.ErrAlreadyVoted, role)
	}

	v := value
	party.Confirmation = &v
	if !value {
		g.rejected = true
	}
	if g.bothConfirmedTrue() {
		g.closed = true
	}
	return domain.NewConfirmationEvent(role, wallet, value, g.closed, g.rejected), nil
}

func (g *Gate) bothConfirmedTrue() bool {
	return g.seller.Confirmation != nil && *g.seller.Confirmation &&
		g.client.Confirmation != nil && *g.client.Confirmation
}

func (g *Gate) party(role domain.Role) *Party {
	switch role {
	case domain.RoleSeller:
		return &g.seller
	case domain.RoleClient:
		return &g.client
	default:
		return nil
	}
}

func (g *Gate) Closed() bool   { return g.closed }
func (g *Gate) Rejected() bool { return g.rejected }

func (g *Gate) SellerWallet() domain.Address { return g.seller.Wallet }
func (g *Gate) ClientWallet() domain.Address { return g.client.Wallet }

func (g *Gate) Snapshot() State {
	copyParty := func(p Party) Party {
		out := Party{Wallet: p.Wallet}
		if p.Confirmation != nil {
			v := *p.Confirmation
			out.Confirmation = &v
		}
		return out
	}
	return State{
		Seller:   copyParty(g.seller),
		Client:   copyParty(g.client),
		Closed:   g.closed,
		Rejected: g.rejected,
	}
}
