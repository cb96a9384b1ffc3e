package gate

import (
	"errors"
	"testing"

	"github.com/Axel-C19/OpenMarket/pkg/domain"
)

func addr(b byte) domain.Address {
	var a domain.Address
	a[0] = b
	return a
}

func TestBothConfirmTrueCloses(t *testing.T) {
	seller, client := addr(1), addr(2)
	g := New(seller, client)

	event, err := g.Confirm(domain.RoleSeller, seller, true)
	if err != nil {
		t.Fatalf("seller confirm: %v", err)
	}
	if event.Closed {
		t.Fatalf("one confirmation must not close the gate")
	}
	if g.Closed() {
		t.Fatalf("gate closed early")
	}

	event, err = g.Confirm(domain.RoleClient, client, true)
	if err != nil {
		t.Fatalf("client confirm: %v", err)
	}
	if !event.Closed || !g.Closed() {
		t.Fatalf("gate must close when both confirm true")
	}
	if g.Rejected() {
		t.Fatalf("closed gate must not be rejected")
	}
}

func TestFalseVoteRejectsWithoutClosing(t *testing.T) {
	seller, client := addr(1), addr(2)
	g := New(seller, client)

	if _, err := g.Confirm(domain.RoleSeller, seller, true); err != nil {
		t.Fatalf("seller confirm: %v", err)
	}
	event, err := g.Confirm(domain.RoleClient, client, false)
	if err != nil {
		t.Fatalf("client confirm: %v", err)
	}
	if event.Closed || g.Closed() {
		t.Fatalf("a false vote must never close the gate")
	}
	if !event.Rejected || !g.Rejected() {
		t.Fatalf("a false vote must reject the agreement")
	}
}

func TestVoteIsFinal(t *testing.T) {
	seller, client := addr(1), addr(2)
	g := New(seller, client)

	if _, err := g.Confirm(domain.RoleSeller, seller, true); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if _, err := g.Confirm(domain.RoleSeller, seller, false); !errors.Is(err, domain.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}
	// The recorded vote is unchanged.
	if conf := g.Snapshot().Seller.Confirmation; conf == nil || !*conf {
		t.Fatalf("re-vote mutated the stored confirmation")
	}
}

func TestClosedGateAcceptsNothing(t *testing.T) {
	seller, client := addr(1), addr(2)
	g := New(seller, client)
	mustConfirm(t, g, domain.RoleSeller, seller, true)
	mustConfirm(t, g, domain.RoleClient, client, true)

	if _, err := g.Confirm(domain.RoleSeller, seller, true); !errors.Is(err, domain.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted after close, got %v", err)
	}
	if !g.Closed() {
		t.Fatalf("closed must stay true")
	}
}

func TestWrongWalletForRole(t *testing.T) {
	seller, client := addr(1), addr(2)
	g := New(seller, client)

	if _, err := g.Confirm(domain.RoleSeller, client, true); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := g.Confirm("auditor", seller, true); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown role, got %v", err)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	seller, client := addr(1), addr(2)
	g := New(seller, client)
	mustConfirm(t, g, domain.RoleSeller, seller, true)

	snap := g.Snapshot()
	*snap.Seller.Confirmation = false

	if conf := g.Snapshot().Seller.Confirmation; conf == nil || !*conf {
		t.Fatalf("mutating a snapshot leaked into the gate")
	}
}

func mustConfirm(t *testing.T, g *Gate, role domain.Role, wallet domain.Address, value bool) {
	t.Helper()
	if _, err := g.Confirm(role, wallet, value); err != nil {
		t.Fatalf("confirm %s: %v", role, err)
	}
}
