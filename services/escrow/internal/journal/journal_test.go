package journal

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Axel-C19/OpenMarket/pkg/domain"
)

func addr(b byte) domain.Address {
	var a domain.Address
	a[0] = b
	return a
}

func TestProcessComputesOnceAndReplays(t *testing.T) {
	j := New(NewMemoryStore())
	key := Key{Caller: addr(1), Nonce: 7}

	computed := 0
	compute := func() (domain.Event, error) {
		computed++
		return domain.NewTransferEvent(1, domain.ZeroAddress, addr(1), nil, nil), nil
	}

	first, replayed, err := j.Process(context.Background(), key, compute)
	if err != nil {
		t.Fatalf("first process: %v", err)
	}
	if replayed {
		t.Fatalf("first call must not be a replay")
	}

	second, replayed, err := j.Process(context.Background(), key, compute)
	if err != nil {
		t.Fatalf("second process: %v", err)
	}
	if !replayed {
		t.Fatalf("second call must be a replay")
	}
	if computed != 1 {
		t.Fatalf("compute ran %d times, want 1", computed)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("replay returned a different event:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if first.TxHash == "" || first.TxHash != key.TxHash() {
		t.Fatalf("event tx hash %q does not match key hash %q", first.TxHash, key.TxHash())
	}
}

func TestProcessDoesNotMemoizeFailures(t *testing.T) {
	j := New(NewMemoryStore())
	key := Key{Caller: addr(2), Nonce: 1}

	attempts := 0
	failing := func() (domain.Event, error) {
		attempts++
		return domain.Event{}, domain.ErrNotOwner
	}

	if _, _, err := j.Process(context.Background(), key, failing); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	// The same nonce retried after the failure must run compute again.
	event, replayed, err := j.Process(context.Background(), key, func() (domain.Event, error) {
		attempts++
		return domain.NewApprovalEvent(3, addr(2), addr(9)), nil
	})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if replayed {
		t.Fatalf("retry after failure must not replay")
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}
	if event.Type != domain.EventApproval {
		t.Fatalf("unexpected event type %s", event.Type)
	}
}

func TestEvict(t *testing.T) {
	j := New(NewMemoryStore())
	key := Key{Caller: addr(3), Nonce: 42}

	if err := j.Evict(context.Background(), key); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for absent key, got %v", err)
	}

	if _, _, err := j.Process(context.Background(), key, func() (domain.Event, error) {
		return domain.NewTransferEvent(1, addr(3), addr(4), nil, nil), nil
	}); err != nil {
		t.Fatalf("process: %v", err)
	}

	if err := j.Evict(context.Background(), key); err != nil {
		t.Fatalf("evict: %v", err)
	}

	// After eviction the key is processable again.
	ran := false
	if _, replayed, err := j.Process(context.Background(), key, func() (domain.Event, error) {
		ran = true
		return domain.NewTransferEvent(1, addr(3), addr(5), nil, nil), nil
	}); err != nil || replayed {
		t.Fatalf("process after evict: replayed=%v err=%v", replayed, err)
	}
	if !ran {
		t.Fatalf("compute must run again after eviction")
	}
}

func TestMemoryStoreFirstWriteWins(t *testing.T) {
	st := NewMemoryStore()
	key := Key{Caller: addr(4), Nonce: 1}
	first := domain.NewApprovalEvent(1, addr(4), addr(5))
	second := domain.NewApprovalEvent(1, addr(4), addr(6))

	if err := st.Put(context.Background(), key, first); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := st.Put(context.Background(), key, second); err != nil {
		t.Fatalf("second put: %v", err)
	}
	got, found, err := st.Get(context.Background(), key)
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if !reflect.DeepEqual(got, first) {
		t.Fatalf("second put overwrote the entry: %+v", got)
	}

	n, err := st.Len(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("len = %d err=%v, want 1", n, err)
	}
}

func TestKeyHashStableAndDistinct(t *testing.T) {
	a := Key{Caller: addr(1), Nonce: 7}
	b := Key{Caller: addr(1), Nonce: 8}
	c := Key{Caller: addr(2), Nonce: 7}

	if a.TxHash() != (Key{Caller: addr(1), Nonce: 7}).TxHash() {
		t.Fatalf("hash must be deterministic")
	}
	if a.TxHash() == b.TxHash() || a.TxHash() == c.TxHash() {
		t.Fatalf("distinct keys must hash differently")
	}
}
