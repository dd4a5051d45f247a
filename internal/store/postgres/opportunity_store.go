package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arbscan/arbwatch/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore using PostgreSQL.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// NewOpportunityStore creates a new OpportunityStore backed by the given
// connection pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

// Insert stores a detected opportunity.
func (s *OpportunityStore) Insert(ctx context.Context, dec domain.Decision) error {
	const query = `
		INSERT INTO opportunities (
			id, pair, buy_venue, sell_venue,
			buy_price, sell_price, gross_profit_usd, net_profit_usd,
			evaluated_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9
		)`

	_, err := s.pool.Exec(ctx, query,
		dec.ID, dec.Pair, dec.BuyVenue, dec.SellVenue,
		dec.BuyPrice, dec.SellPrice, dec.GrossProfit, dec.NetProfit,
		dec.EvaluatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert opportunity %s: %w", dec.ID, err)
	}
	return nil
}

// ListRecent returns the most recent opportunities ordered by evaluation time.
func (s *OpportunityStore) ListRecent(ctx context.Context, limit int) ([]domain.Decision, error) {
	query := `
		SELECT id, pair, buy_venue, sell_venue,
		       buy_price, sell_price, gross_profit_usd, net_profit_usd,
		       evaluated_at
		FROM opportunities
		ORDER BY evaluated_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list opportunities: %w", err)
	}
	defer rows.Close()

	var out []domain.Decision
	for rows.Next() {
		dec := domain.Decision{Outcome: domain.OutcomeOpportunity}
		if err := rows.Scan(
			&dec.ID, &dec.Pair, &dec.BuyVenue, &dec.SellVenue,
			&dec.BuyPrice, &dec.SellPrice, &dec.GrossProfit, &dec.NetProfit,
			&dec.EvaluatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity: %w", err)
		}
		out = append(out, dec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate opportunities: %w", err)
	}
	return out, nil
}

// Compile-time interface check.
var _ domain.OpportunityStore = (*OpportunityStore)(nil)
