package journal

import (
	"context"
	"fmt"

	"github.com/Axel-C19/OpenMarket/pkg/canonhash"
	"github.com/Axel-C19/OpenMarket/pkg/domain"
)

// Key identifies one logical request. The transport may deliver the
// same request more than once; everything keyed by Key is processed
// at most once.
type Key struct {
	Caller domain.Address `json:"caller"`
	Nonce  uint64         `json:"nonce"`
}

// TxHash is the stable audit handle for a key, exposed to callers for
// eviction bookkeeping and event trails.
func (k Key) TxHash() string {
	h, _, _ := canonhash.SumHex(k)
	return h
}

// Store holds completed entries. A key is written at most once; Put
// must keep the first event when the key already exists.
type Store interface {
	Get(ctx context.Context, key Key) (domain.Event, bool, error)
	Put(ctx context.Context, key Key, event domain.Event) error
	Delete(ctx context.Context, key Key) (bool, error)
	Len(ctx context.Context) (int, error)
}

type Journal struct {
	store Store
}

func New(store Store) *Journal { return &Journal{store: store} }

// Process replays the stored event for key if one exists, without
// running compute. Otherwise it runs compute exactly once and records
// the result — but only on success, so a failed attempt can be
// retried under the same key. The second return reports a replay.
func (j *Journal) Process(ctx context.Context, key Key, compute func() (domain.Event, error)) (domain.Event, bool, error) {
	cached, found, err := j.store.Get(ctx, key)
	if err != nil {
		return domain.Event{}, false, fmt.Errorf("journal get: %w", err)
	}
	if found {
		return cached, true, nil
	}
	event, err := compute()
	if err != nil {
		return domain.Event{}, false, err
	}
	event.TxHash = key.TxHash()
	if err := j.store.Put(ctx, key, event); err != nil {
		return domain.Event{}, false, fmt.Errorf("journal put: %w", err)
	}
	return event, false, nil
}

// Evict frees the storage for key. It does not reverse the mutation
// the entry recorded.
func (j *Journal) Evict(ctx context.Context, key Key) error {
	deleted, err := j.store.Delete(ctx, key)
	if err != nil {
		return fmt.Errorf("journal delete: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: journal entry %s", domain.ErrNotFound, key.TxHash())
	}
	return nil
}

func (j *Journal) Len(ctx context.Context) (int, error) {
	return j.store.Len(ctx)
}
