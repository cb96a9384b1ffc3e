package guard

import "github.com/Axel-C19/OpenMarket/pkg/domain"

// Guard holds the two registered party wallets and answers pure
// caller-identity questions. It owns no other state; ownership and
// approval facts are passed in by the caller.
type Guard struct {
	seller domain.Address
	client domain.Address
}

func New(seller, client domain.Address) Guard {
	return Guard{seller: seller, client: client}
}

func (g Guard) IsSeller(caller domain.Address) bool { return caller == g.seller }
func (g Guard) IsClient(caller domain.Address) bool { return caller == g.client }

// IsParty reports whether caller is one of the two contract parties.
// Parties are the only actors allowed to evict journal entries.
func (g Guard) IsParty(caller domain.Address) bool {
	return g.IsSeller(caller) || g.IsClient(caller)
}

// Role resolves the role a wallet holds, if any.
func (g Guard) Role(wallet domain.Address) (domain.Role, bool) {
	switch wallet {
	case g.seller:
		return domain.RoleSeller, true
	case g.client:
		return domain.RoleClient, true
	default:
		return "", false
	}
}

// RoleWallet is the inverse of Role.
func (g Guard) RoleWallet(role domain.Role) (domain.Address, bool) {
	switch role {
	case domain.RoleSeller:
		return g.seller, true
	case domain.RoleClient:
		return g.client, true
	default:
		return domain.Address{}, false
	}
}

// IsOwner and IsOwnerOrApproved are the token-scoped predicates; the
// owner and approval set come from the registry lookup the caller
// already holds.
func IsOwner(owner, caller domain.Address) bool { return owner == caller }

func IsOwnerOrApproved(owner, caller domain.Address, approved map[domain.Address]struct{}) bool {
	if IsOwner(owner, caller) {
		return true
	}
	_, ok := approved[caller]
	return ok
}
