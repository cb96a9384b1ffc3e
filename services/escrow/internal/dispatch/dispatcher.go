package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"github.com/Axel-C19/OpenMarket/pkg/domain"
	"github.com/Axel-C19/OpenMarket/services/escrow/internal/gate"
	"github.com/Axel-C19/OpenMarket/services/escrow/internal/guard"
	"github.com/Axel-C19/OpenMarket/services/escrow/internal/journal"
	"github.com/Axel-C19/OpenMarket/services/escrow/internal/registry"
)

// Recorder receives the durable side channel of processed actions:
// the append-only event trail and the escrow snapshot. Failures are
// logged, not surfaced — the journal entry is already the source of
// truth by the time the recorder runs.
type Recorder interface {
	AppendEvent(ctx context.Context, txHash string, event domain.Event) error
	SaveEscrowSnapshot(ctx context.Context, state gate.State) error
}

// Dispatcher routes inbound actions to the journal, gate, registry
// and ledger. It is the single execution context: one mutex, one
// action in flight, so no component underneath needs to be reentrant.
type Dispatcher struct {
	mu       sync.Mutex
	log      zerolog.Logger
	journal  *journal.Journal
	gate     *gate.Gate
	registry *registry.Registry
	ledger   *registry.Ledger
	guard    guard.Guard
	recorder Recorder
}

type Config struct {
	Log      zerolog.Logger
	Journal  *journal.Journal
	Gate     *gate.Gate
	Registry *registry.Registry
	Ledger   *registry.Ledger
	Guard    guard.Guard
	Recorder Recorder
}

func New(cfg Config) *Dispatcher {
	return &Dispatcher{
		log:      cfg.Log,
		journal:  cfg.Journal,
		gate:     cfg.Gate,
		registry: cfg.Registry,
		ledger:   cfg.Ledger,
		guard:    cfg.Guard,
		recorder: cfg.Recorder,
	}
}

// Handle processes one mutating request. The journal makes redelivery
// safe: a key seen before returns its stored event with replayed=true
// and no side effects. Authorization and validation run before the
// journal records anything, so only successful completions are ever
// memoized.
func (d *Dispatcher) Handle(ctx context.Context, req Request) (domain.Event, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	event, replayed, err := d.handleLocked(ctx, req)

	var logEvent *zerolog.Event
	if err != nil {
		_, code := Code(err)
		logEvent = d.log.Warn().Str("error_code", code).Err(err)
	} else {
		logEvent = d.log.Info()
	}
	logEvent.
		Str("action", string(req.Action.Type)).
		Str("caller", req.Caller.String()).
		Uint64("nonce", req.Nonce).
		Bool("replayed", replayed).
		Msg("action processed")

	return event, replayed, err
}

func (d *Dispatcher) handleLocked(ctx context.Context, req Request) (domain.Event, bool, error) {
	if err := req.validate(); err != nil {
		return domain.Event{}, false, err
	}

	if req.Action.Type == ActionEvict {
		return d.evictLocked(ctx, req)
	}

	// Role checks that do not depend on registry state happen here,
	// outside compute, so the journal never sees them.
	if req.Action.Type == ActionConfirmEscrow {
		if _, ok := d.guard.Role(req.Caller); !ok {
			return domain.Event{}, false, fmt.Errorf("%w: caller holds no escrow role", domain.ErrUnauthorized)
		}
	}

	key := journal.Key{Caller: req.Caller, Nonce: req.Nonce}
	event, replayed, err := d.journal.Process(ctx, key, func() (domain.Event, error) {
		return d.apply(req)
	})
	if err != nil {
		return domain.Event{}, false, err
	}
	if !replayed {
		d.record(ctx, event)
	}
	return event, replayed, nil
}

func (d *Dispatcher) apply(req Request) (domain.Event, error) {
	a := req.Action
	switch a.Type {
	case ActionMint:
		return d.registry.Mint(*a.TokenID, a.Metadata, req.Caller)

	case ActionTransfer:
		if err := d.transferAllowed(*a.TokenID, req.Caller); err != nil {
			return domain.Event{}, err
		}
		return d.registry.Transfer(*a.TokenID, *a.From, *a.To, a.SaleAmount)

	case ActionApprove:
		return d.registry.Approve(*a.TokenID, *a.Operator, req.Caller)

	case ActionDelegatedApprove:
		return d.registry.DelegatedApprove(*a.Approval)

	case ActionBurn:
		return d.registry.Burn(*a.TokenID, req.Caller)

	case ActionConfirmEscrow:
		role, _ := d.guard.Role(req.Caller)
		return d.gate.Confirm(role, req.Caller, *a.Value)

	case ActionMintFT:
		return d.ledger.Mint(req.Caller, a.Amount)

	case ActionBurnFT:
		return d.ledger.Burn(req.Caller, a.Amount)

	case ActionTransferFT:
		from := req.Caller
		if a.From != nil {
			from = *a.From
		}
		return d.ledger.Transfer(from, *a.To, a.Amount, req.Caller)

	case ActionApproveFT:
		return d.ledger.Approve(req.Caller, *a.Spender, a.Amount)

	default:
		return domain.Event{}, fmt.Errorf("%w: unknown action type %q", domain.ErrMalformedRequest, a.Type)
	}
}

// transferAllowed enforces the escrow gate and the caller's standing
// on the token before any transfer-class mutation.
func (d *Dispatcher) transferAllowed(tokenID domain.TokenID, caller domain.Address) error {
	if !d.gate.Closed() {
		if d.gate.Rejected() {
			return fmt.Errorf("%w: %w", domain.ErrEscrowNotClosed, domain.ErrEscrowRejected)
		}
		return fmt.Errorf("%w: confirmations pending", domain.ErrEscrowNotClosed)
	}
	ok, err := d.registry.IsApproved(tokenID, caller)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: caller is neither owner nor approved", domain.ErrUnauthorized)
	}
	return nil
}

// evictLocked runs outside the journal: recording an eviction would
// mean writing to the journal from inside its own compute. A retried
// evict therefore reports NotFound, which is already the documented
// outcome for evicting an absent key.
func (d *Dispatcher) evictLocked(ctx context.Context, req Request) (domain.Event, bool, error) {
	if !d.guard.IsParty(req.Caller) {
		return domain.Event{}, false, fmt.Errorf("%w: only a contract party may evict", domain.ErrUnauthorized)
	}
	target := *req.Action.Evict
	if err := d.journal.Evict(ctx, target); err != nil {
		return domain.Event{}, false, err
	}
	event := domain.NewEvictedEvent(target.TxHash())
	d.record(ctx, event)
	return event, false, nil
}

func (d *Dispatcher) record(ctx context.Context, event domain.Event) {
	if d.recorder == nil {
		return
	}
	if err := d.recorder.AppendEvent(ctx, event.TxHash, event); err != nil {
		d.log.Warn().Err(err).Msg("event trail append failed")
	}
	if event.Type == domain.EventConfirmation {
		if err := d.recorder.SaveEscrowSnapshot(ctx, d.gate.Snapshot()); err != nil {
			d.log.Warn().Err(err).Msg("escrow snapshot save failed")
		}
	}
}

// Read-only accessors. Each takes the dispatcher lock so a reader
// observes a consistent snapshot, never a half-applied action.

func (d *Dispatcher) OwnerOf(tokenID domain.TokenID) (domain.Address, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.registry.OwnerOf(tokenID)
}

func (d *Dispatcher) IsApproved(tokenID domain.TokenID, candidate domain.Address) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.registry.IsApproved(tokenID, candidate)
}

func (d *Dispatcher) ApprovedOperators(tokenID domain.TokenID) ([]domain.Address, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.registry.ApprovedOperators(tokenID)
}

func (d *Dispatcher) MetadataOf(tokenID domain.TokenID) (*domain.TokenMetadata, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.registry.MetadataOf(tokenID)
}

func (d *Dispatcher) TokensForOwner(owner domain.Address) []domain.TokenID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.registry.TokensForOwner(owner)
}

func (d *Dispatcher) EscrowState() gate.State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gate.Snapshot()
}

func (d *Dispatcher) BalanceOf(account domain.Address) *uint256.Int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ledger.BalanceOf(account)
}

func (d *Dispatcher) TotalSupply() *uint256.Int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ledger.TotalSupply()
}

func (d *Dispatcher) Allowance(owner, spender domain.Address) *uint256.Int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ledger.Allowance(owner, spender)
}

func (d *Dispatcher) JournalLen(ctx context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.journal.Len(ctx)
}

func (d *Dispatcher) TokenCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.registry.TokenCount()
}

// TokenInfo bundles the per-token facts under one lock acquisition so
// the caller sees them from the same instant.
func (d *Dispatcher) TokenInfo(tokenID domain.TokenID) (domain.Address, []domain.Address, *domain.TokenMetadata, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	owner, err := d.registry.OwnerOf(tokenID)
	if err != nil {
		return domain.Address{}, nil, nil, err
	}
	approved, err := d.registry.ApprovedOperators(tokenID)
	if err != nil {
		return domain.Address{}, nil, nil, err
	}
	metadata, err := d.registry.MetadataOf(tokenID)
	if err != nil {
		return domain.Address{}, nil, nil, err
	}
	return owner, approved, metadata, nil
}

// StateSummary is the contract-level counterpart of TokenInfo.
func (d *Dispatcher) StateSummary(ctx context.Context) (gate.State, int, int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	journalLen, err := d.journal.Len(ctx)
	if err != nil {
		return gate.State{}, 0, 0, err
	}
	return d.gate.Snapshot(), d.registry.TokenCount(), journalLen, nil
}
