package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/holiman/uint256"

	"github.com/Axel-C19/OpenMarket/pkg/domain"
	"github.com/Axel-C19/OpenMarket/pkg/payout"
	"github.com/Axel-C19/OpenMarket/pkg/signature"
)

const usage = `usage:
  omctl key gen
  omctl payout split --amount <n> --royalty <payee:bp>[,<payee:bp>...] [--beneficiary <addr>]
  omctl approval sign --key <ed25519 seed hex> --token <id> --operator <addr> --nonce <n>
  omctl approval verify --file <path>`

func main() {
	if len(os.Args) < 2 {
		fail(usage)
	}
	switch os.Args[1] {
	case "key":
		runKey(os.Args[2:])
	case "payout":
		runPayout(os.Args[2:])
	case "approval":
		runApproval(os.Args[2:])
	default:
		fail(usage)
	}
}

func runKey(args []string) {
	if len(args) < 1 || args[0] != "gen" {
		fail(usage)
	}
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		fail(fmt.Sprintf("generate key: %v", err))
	}
	var wallet domain.Address
	copy(wallet[:], pub)
	emit(map[string]any{
		"seed":   hex.EncodeToString(priv.Seed()),
		"wallet": wallet.String(),
	})
}

func runPayout(args []string) {
	if len(args) < 1 || args[0] != "split" {
		fail(usage)
	}
	fs := flag.NewFlagSet("payout split", flag.ExitOnError)
	amountFlag := fs.String("amount", "", "sale amount (decimal)")
	royaltyFlag := fs.String("royalty", "", "comma-separated payee:basis_points pairs")
	beneficiaryFlag := fs.String("beneficiary", "", "fallback payee for an empty table")
	_ = fs.Parse(args[1:])

	amount, err := uint256.FromDecimal(*amountFlag)
	if err != nil {
		fail(fmt.Sprintf("bad --amount: %v", err))
	}
	table, err := parseRoyaltyTable(*royaltyFlag)
	if err != nil {
		fail(err.Error())
	}
	var beneficiary domain.Address
	if *beneficiaryFlag != "" {
		beneficiary, err = domain.ParseAddress(*beneficiaryFlag)
		if err != nil {
			fail(fmt.Sprintf("bad --beneficiary: %v", err))
		}
	}

	legs, err := payout.Split(amount, table, beneficiary)
	if err != nil {
		fail(err.Error())
	}
	out := make([]map[string]string, 0, len(legs))
	for _, leg := range legs {
		out = append(out, map[string]string{
			"payee":  leg.Payee.String(),
			"amount": leg.Amount.Dec(),
		})
	}
	emit(map[string]any{"amount": amount.Dec(), "splits": out})
}

func runApproval(args []string) {
	if len(args) < 1 {
		fail(usage)
	}
	switch args[0] {
	case "sign":
		runApprovalSign(args[1:])
	case "verify":
		runApprovalVerify(args[1:])
	default:
		fail(usage)
	}
}

func runApprovalSign(args []string) {
	fs := flag.NewFlagSet("approval sign", flag.ExitOnError)
	keyFlag := fs.String("key", "", "ed25519 seed, hex")
	tokenFlag := fs.Uint64("token", 0, "token id")
	operatorFlag := fs.String("operator", "", "operator address")
	nonceFlag := fs.Uint64("nonce", 0, "approval nonce")
	_ = fs.Parse(args)

	seed, err := hex.DecodeString(strings.TrimSpace(*keyFlag))
	if err != nil || len(seed) != ed25519.SeedSize {
		fail("bad --key: want 32-byte hex seed")
	}
	priv := ed25519.NewKeyFromSeed(seed)
	operator, err := domain.ParseAddress(*operatorFlag)
	if err != nil {
		fail(fmt.Sprintf("bad --operator: %v", err))
	}

	var signer domain.Address
	copy(signer[:], priv.Public().(ed25519.PublicKey))

	payload := domain.ApprovalPayload{
		TokenID:  domain.TokenID(*tokenFlag),
		Operator: operator,
		Nonce:    *nonceFlag,
	}
	env, err := signature.Sign(payload, priv, time.Now())
	if err != nil {
		fail(fmt.Sprintf("sign: %v", err))
	}
	emit(domain.DelegatedApproval{
		TokenID:  payload.TokenID,
		Operator: payload.Operator,
		Signer:   signer,
		Nonce:    payload.Nonce,
		Envelope: env,
	})
}

func runApprovalVerify(args []string) {
	fs := flag.NewFlagSet("approval verify", flag.ExitOnError)
	fileFlag := fs.String("file", "", "path to a delegated approval json")
	_ = fs.Parse(args)

	data, err := os.ReadFile(*fileFlag)
	if err != nil {
		fail(fmt.Sprintf("read --file: %v", err))
	}
	var da domain.DelegatedApproval
	if err := json.Unmarshal(data, &da); err != nil {
		fail(fmt.Sprintf("decode approval: %v", err))
	}

	payload := domain.ApprovalPayload{TokenID: da.TokenID, Operator: da.Operator, Nonce: da.Nonce}
	result, err := signature.Verify(payload, da.Envelope)
	if err != nil {
		emit(map[string]any{"valid": false, "error": err.Error()})
		os.Exit(1)
	}
	emit(map[string]any{
		"valid":     true,
		"signer":    da.Signer.String(),
		"issued_at": result.IssuedAt.Format(time.RFC3339Nano),
	})
}

func parseRoyaltyTable(s string) (domain.RoyaltyTable, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var table domain.RoyaltyTable
	for _, pair := range strings.Split(s, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("bad --royalty entry %q: want payee:basis_points", pair)
		}
		payee, err := domain.ParseAddress(parts[0])
		if err != nil {
			return nil, fmt.Errorf("bad payee %q: %v", parts[0], err)
		}
		bp, err := strconv.ParseUint(parts[1], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("bad basis points %q: %v", parts[1], err)
		}
		table = append(table, domain.RoyaltyShare{Payee: payee, BasisPoints: uint16(bp)})
	}
	return table, nil
}

func emit(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(2)
}
