package registry

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/Axel-C19/OpenMarket/pkg/domain"
)

// AllowanceKey keys the spend allowance one owner grants one spender.
// A single composite-keyed map replaces nested per-owner maps so an
// allowance check and its decrement happen against one entry.
type AllowanceKey struct {
	Owner   domain.Address
	Spender domain.Address
}

// Ledger is the fungible-balance sibling of the token registry.
// Overdrafts are rejected: every debit checks the balance (or the
// allowance) before mutating anything.
type Ledger struct {
	balances    map[domain.Address]*uint256.Int
	allowances  map[AllowanceKey]*uint256.Int
	totalSupply *uint256.Int
}

func NewLedger() *Ledger {
	return &Ledger{
		balances:    make(map[domain.Address]*uint256.Int),
		allowances:  make(map[AllowanceKey]*uint256.Int),
		totalSupply: uint256.NewInt(0),
	}
}

func (l *Ledger) Mint(to domain.Address, amount *uint256.Int) (domain.Event, error) {
	if to.IsZero() {
		return domain.Event{}, fmt.Errorf("%w: mint to zero address", domain.ErrInvalidDestination)
	}
	if amount == nil {
		return domain.Event{}, fmt.Errorf("%w: amount required", domain.ErrMalformedRequest)
	}
	l.credit(to, amount)
	l.totalSupply = new(uint256.Int).Add(l.totalSupply, amount)
	return domain.NewFungibleTransferEvent(domain.ZeroAddress, to, amount.Clone()), nil
}

func (l *Ledger) Burn(from domain.Address, amount *uint256.Int) (domain.Event, error) {
	if amount == nil {
		return domain.Event{}, fmt.Errorf("%w: amount required", domain.ErrMalformedRequest)
	}
	if err := l.debit(from, amount); err != nil {
		return domain.Event{}, err
	}
	l.totalSupply = new(uint256.Int).Sub(l.totalSupply, amount)
	return domain.NewFungibleTransferEvent(from, domain.ZeroAddress, amount.Clone()), nil
}

// Transfer moves amount from one balance to another. The caller must
// be the source account or hold a sufficient allowance from it; a
// spent allowance is checked and decremented as one step.
func (l *Ledger) Transfer(from, to domain.Address, amount *uint256.Int, caller domain.Address) (domain.Event, error) {
	if from.IsZero() || to.IsZero() {
		return domain.Event{}, fmt.Errorf("%w: zero address", domain.ErrInvalidDestination)
	}
	if amount == nil {
		return domain.Event{}, fmt.Errorf("%w: amount required", domain.ErrMalformedRequest)
	}
	// Check the balance before touching the allowance so a failed
	// transfer leaves both untouched.
	if balance, ok := l.balances[from]; !ok || balance.Lt(amount) {
		return domain.Event{}, fmt.Errorf("%w: account %s", domain.ErrInsufficientBalance, from)
	}
	if caller != from {
		if err := l.spendAllowance(from, caller, amount); err != nil {
			return domain.Event{}, err
		}
	}
	if err := l.debit(from, amount); err != nil {
		return domain.Event{}, err
	}
	l.credit(to, amount)
	return domain.NewFungibleTransferEvent(from, to, amount.Clone()), nil
}

// Approve sets (not adds to) the allowance owner grants spender.
func (l *Ledger) Approve(owner, spender domain.Address, amount *uint256.Int) (domain.Event, error) {
	if spender.IsZero() {
		return domain.Event{}, fmt.Errorf("%w: approve zero address", domain.ErrInvalidDestination)
	}
	if amount == nil {
		return domain.Event{}, fmt.Errorf("%w: amount required", domain.ErrMalformedRequest)
	}
	l.allowances[AllowanceKey{Owner: owner, Spender: spender}] = amount.Clone()
	return domain.NewFungibleApprovalEvent(owner, spender, amount.Clone()), nil
}

func (l *Ledger) BalanceOf(account domain.Address) *uint256.Int {
	if balance, ok := l.balances[account]; ok {
		return balance.Clone()
	}
	return uint256.NewInt(0)
}

func (l *Ledger) Allowance(owner, spender domain.Address) *uint256.Int {
	if allowance, ok := l.allowances[AllowanceKey{Owner: owner, Spender: spender}]; ok {
		return allowance.Clone()
	}
	return uint256.NewInt(0)
}

func (l *Ledger) TotalSupply() *uint256.Int { return l.totalSupply.Clone() }

func (l *Ledger) credit(account domain.Address, amount *uint256.Int) {
	balance, ok := l.balances[account]
	if !ok {
		balance = uint256.NewInt(0)
	}
	l.balances[account] = new(uint256.Int).Add(balance, amount)
}

func (l *Ledger) debit(account domain.Address, amount *uint256.Int) error {
	balance, ok := l.balances[account]
	if !ok || balance.Lt(amount) {
		return fmt.Errorf("%w: account %s", domain.ErrInsufficientBalance, account)
	}
	l.balances[account] = new(uint256.Int).Sub(balance, amount)
	return nil
}

func (l *Ledger) spendAllowance(owner, spender domain.Address, amount *uint256.Int) error {
	key := AllowanceKey{Owner: owner, Spender: spender}
	allowance, ok := l.allowances[key]
	if !ok || allowance.Lt(amount) {
		return fmt.Errorf("%w: allowance of %s for %s", domain.ErrInsufficientBalance, owner, spender)
	}
	l.allowances[key] = new(uint256.Int).Sub(allowance, amount)
	return nil
}
