package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Axel-C19/OpenMarket/pkg/domain"
	"github.com/Axel-C19/OpenMarket/services/escrow/internal/gate"
	"github.com/Axel-C19/OpenMarket/services/escrow/internal/journal"
)

// Store is the Postgres persistence for the contract: the durable
// journal, the append-only event trail and the escrow snapshot.
type Store struct{ DB *pgxpool.Pool }

func New(db *pgxpool.Pool) *Store { return &Store{DB: db} }

func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.DB.Exec(ctx, `
CREATE TABLE IF NOT EXISTS journal_entries(
  caller     text NOT NULL,
  nonce      bigint NOT NULL,
  tx_hash    text NOT NULL,
  event      jsonb NOT NULL,
  created_at timestamptz NOT NULL DEFAULT now(),
  PRIMARY KEY (caller, nonce)
);
CREATE TABLE IF NOT EXISTS contract_events(
  seq        bigserial PRIMARY KEY,
  tx_hash    text NOT NULL,
  type       text NOT NULL,
  payload    jsonb NOT NULL,
  created_at timestamptz NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS escrow_snapshot(
  id                  int PRIMARY KEY,
  seller              text NOT NULL,
  client              text NOT NULL,
  seller_confirmation boolean,
  client_confirmation boolean,
  closed              boolean NOT NULL,
  rejected            boolean NOT NULL,
  updated_at          timestamptz NOT NULL DEFAULT now()
);`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Get implements journal.Store.
func (s *Store) Get(ctx context.Context, key journal.Key) (domain.Event, bool, error) {
	var payload []byte
	err := s.DB.QueryRow(ctx, `SELECT event FROM journal_entries WHERE caller=$1 AND nonce=$2`,
		key.Caller.String(), int64(key.Nonce)).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Event{}, false, nil
	}
	if err != nil {
		return domain.Event{}, false, err
	}
	var event domain.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return domain.Event{}, false, fmt.Errorf("decode journal event: %w", err)
	}
	return event, true, nil
}

// Put implements journal.Store. ON CONFLICT DO NOTHING keeps the
// first event when the key already exists.
func (s *Store) Put(ctx context.Context, key journal.Key, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode journal event: %w", err)
	}
	_, err = s.DB.Exec(ctx, `
INSERT INTO journal_entries(caller,nonce,tx_hash,event)
VALUES($1,$2,$3,$4::jsonb)
ON CONFLICT (caller,nonce) DO NOTHING
`, key.Caller.String(), int64(key.Nonce), key.TxHash(), string(payload))
	return err
}

// Delete implements journal.Store.
func (s *Store) Delete(ctx context.Context, key journal.Key) (bool, error) {
	tag, err := s.DB.Exec(ctx, `DELETE FROM journal_entries WHERE caller=$1 AND nonce=$2`,
		key.Caller.String(), int64(key.Nonce))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Len implements journal.Store.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRow(ctx, `SELECT count(*) FROM journal_entries`).Scan(&n)
	return n, err
}

func (s *Store) AppendEvent(ctx context.Context, txHash string, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	_, err = s.DB.Exec(ctx, `INSERT INTO contract_events(tx_hash,type,payload) VALUES($1,$2,$3::jsonb)`,
		txHash, string(event.Type), string(payload))
	return err
}

func (s *Store) SaveEscrowSnapshot(ctx context.Context, state gate.State) error {
	_, err := s.DB.Exec(ctx, `
INSERT INTO escrow_snapshot(id,seller,client,seller_confirmation,client_confirmation,closed,rejected)
VALUES(1,$1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
  seller_confirmation=EXCLUDED.seller_confirmation,
  client_confirmation=EXCLUDED.client_confirmation,
  closed=EXCLUDED.closed,
  rejected=EXCLUDED.rejected,
  updated_at=now()
`, state.Seller.Wallet.String(), state.Client.Wallet.String(),
		state.Seller.Confirmation, state.Client.Confirmation, state.Closed, state.Rejected)
	return err
}

func (s *Store) ListEvents(ctx context.Context, limit int) ([]map[string]any, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.DB.Query(ctx, `SELECT seq,tx_hash,type,payload,created_at FROM contract_events ORDER BY seq DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []map[string]any
	for rows.Next() {
		var seq int64
		var txHash, typ string
		var payload []byte
		var at time.Time
		if err := rows.Scan(&seq, &txHash, &typ, &payload, &at); err != nil {
			return nil, err
		}
		var obj any
		_ = json.Unmarshal(payload, &obj)
		out = append(out, map[string]any{
			"seq": seq, "tx_hash": txHash, "type": typ, "payload": obj, "at": at.Format(time.RFC3339),
		})
	}
	return out, rows.Err()
}
