package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/Axel-C19/OpenMarket/pkg/domain"
)

// Config is the service's environment-driven configuration.
type Config struct {
	ServicePort  string `env:"SERVICE_PORT" envDefault:"8082"`
	DatabaseURL  string `env:"DATABASE_URL"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogConsole   bool   `env:"LOG_CONSOLE" envDefault:"false"`
	ManifestPath string `env:"CONTRACT_MANIFEST" envDefault:"configs/contract.yaml"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Manifest describes one escrow agreement: the two party wallets and
// the royalty table applied on sales. It is read once at boot.
type Manifest struct {
	Name      string `yaml:"name"`
	Seller    string `yaml:"seller"`
	Client    string `yaml:"client"`
	Royalties []struct {
		Payee       string `yaml:"payee"`
		BasisPoints uint16 `yaml:"basisPoints"`
	} `yaml:"royalties"`
}

func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}

// Resolve parses and validates the manifest's addresses and table.
func (m Manifest) Resolve() (seller, client domain.Address, table domain.RoyaltyTable, err error) {
	seller, err = domain.ParseAddress(m.Seller)
	if err != nil {
		return domain.Address{}, domain.Address{}, nil, fmt.Errorf("seller: %w", err)
	}
	client, err = domain.ParseAddress(m.Client)
	if err != nil {
		return domain.Address{}, domain.Address{}, nil, fmt.Errorf("client: %w", err)
	}
	if seller.IsZero() || client.IsZero() {
		return domain.Address{}, domain.Address{}, nil, fmt.Errorf("party wallets must be non-zero")
	}
	for _, r := range m.Royalties {
		payee, perr := domain.ParseAddress(r.Payee)
		if perr != nil {
			return domain.Address{}, domain.Address{}, nil, fmt.Errorf("royalty payee %q: %w", r.Payee, perr)
		}
		table = append(table, domain.RoyaltyShare{Payee: payee, BasisPoints: r.BasisPoints})
	}
	if err := table.Validate(); err != nil {
		return domain.Address{}, domain.Address{}, nil, err
	}
	return seller, client, table, nil
}
