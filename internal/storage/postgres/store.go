package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sponsorFlow/internal/model"
)

// Store provides Postgres persistence for the display/reporting boundary.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// PutTransferBatch inserts transfer attempt records.
func (s *Store) PutTransferBatch(ctx context.Context, records []model.TransferRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO transfer_attempts (
				chain_id, owner_address, smart_account, pool_address, token_address,
				recipient, amount, fee, outcome, failure_kind, failure_detail, prepared_at, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now())
		`,
			int64(r.ChainID),
			r.Owner,
			r.SmartAccount,
			r.Pool,
			r.Token,
			r.Recipient,
			r.Amount,
			r.Fee,
			r.Outcome,
			r.FailureKind,
			r.FailureDetail,
			r.PreparedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertPoolEconomics inserts or updates the latest economics snapshot for a pool.
func (s *Store) UpsertPoolEconomics(ctx context.Context, chainID uint64, poolAddress string, econ model.PoolEconomics) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pool_economics (
			chain_id, pool_address, fee_pct, apy, discount_pct, volume, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,now(),now())
		ON CONFLICT (chain_id, pool_address)
		DO UPDATE SET
			fee_pct = EXCLUDED.fee_pct,
			apy = EXCLUDED.apy,
			discount_pct = EXCLUDED.discount_pct,
			volume = EXCLUDED.volume,
			updated_at = now()
	`,
		int64(chainID),
		poolAddress,
		econ.FeePct,
		econ.APY,
		econ.DiscountPct,
		econ.Volume,
	)
	return err
}
