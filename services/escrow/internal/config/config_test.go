package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Axel-C19/OpenMarket/pkg/domain"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contract.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func testAddr(b byte) domain.Address {
	var a domain.Address
	a[0] = b
	return a
}

func TestLoadManifestAndResolve(t *testing.T) {
	seller, client, payee := testAddr(1), testAddr(2), testAddr(3)
	path := writeManifest(t, `
name: deed-escrow
seller: `+seller.String()+`
client: `+client.String()+`
royalties:
  - payee: `+payee.String()+`
    basisPoints: 500
`)

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Name != "deed-escrow" {
		t.Fatalf("name = %q", m.Name)
	}

	gotSeller, gotClient, table, err := m.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if gotSeller != seller || gotClient != client {
		t.Fatalf("party wallets wrong")
	}
	if len(table) != 1 || table[0].Payee != payee || table[0].BasisPoints != 500 {
		t.Fatalf("table = %+v", table)
	}
}

func TestResolveRejectsBadAddresses(t *testing.T) {
	m := Manifest{Seller: "not-an-address", Client: testAddr(2).String()}
	if _, _, _, err := m.Resolve(); !errors.Is(err, domain.ErrBadAddress) {
		t.Fatalf("expected ErrBadAddress, got %v", err)
	}
}

func TestResolveRejectsOverfullTable(t *testing.T) {
	m := Manifest{
		Seller: testAddr(1).String(),
		Client: testAddr(2).String(),
	}
	m.Royalties = []struct {
		Payee       string `yaml:"payee"`
		BasisPoints uint16 `yaml:"basisPoints"`
	}{
		{Payee: testAddr(3).String(), BasisPoints: 9000},
		{Payee: testAddr(4).String(), BasisPoints: 1500},
	}
	if _, _, _, err := m.Resolve(); !errors.Is(err, domain.ErrInvalidTable) {
		t.Fatalf("expected ErrInvalidTable, got %v", err)
	}
}

func TestLoadMissingManifest(t *testing.T) {
	if _, err := LoadManifest(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing manifest")
	}
}
