package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"maklarsystem/internal/bidding/domain"
	id "maklarsystem/pkg/domain"
	"maklarsystem/pkg/platform/sentinel"
	"maklarsystem/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

// Migrate creates the bids table and its indexes when missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate bids schema: %w", err)
	}
	return nil
}

const defaultTxTimeout = 5 * time.Second

// Postgres persists bids in PostgreSQL.
type Postgres struct {
	db        *sql.DB
	txTimeout time.Duration
}

// PostgresOption configures a Postgres store.
type PostgresOption func(*Postgres)

// WithTxTimeout bounds WithinListing when the caller's context has no
// deadline.
func WithTxTimeout(d time.Duration) PostgresOption {
	return func(s *Postgres) {
		if d > 0 {
			s.txTimeout = d
		}
	}
}

func NewPostgres(db *sql.DB, opts ...PostgresOption) *Postgres {
	s := &Postgres{db: db, txTimeout: defaultTxTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

const bidColumns = `id, listing_id, bidder_id, amount, status, placed_at, updated_at`

// WithinListing runs fn in a SERIALIZABLE transaction holding a
// transaction-scoped advisory lock on the listing. Serialization failures
// surface as sentinel.ErrConflict.
func (s *Postgres) WithinListing(ctx context.Context, listingID id.ListingID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}

	err := tx.Run(ctx, s.db, sql.LevelSerializable, func(ctx context.Context) error {
		if _, err := tx.Pick(ctx, s.db).ExecContext(ctx,
			`SELECT pg_advisory_xact_lock(hashtext($1))`, listingID.String()); err != nil {
			return fmt.Errorf("lock listing %s: %w", listingID, err)
		}
		return fn(ctx)
	})
	return translate(err)
}

func (s *Postgres) Insert(ctx context.Context, bid *domain.Bid) error {
	_, err := tx.Pick(ctx, s.db).ExecContext(ctx, `
		INSERT INTO bids (`+bidColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.UUID(bid.ID), uuid.UUID(bid.ListingID), uuid.UUID(bid.BidderID),
		bid.Amount, string(bid.Status), bid.PlacedAt, bid.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert bid: %w", translate(err))
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, bid *domain.Bid) error {
	res, err := tx.Pick(ctx, s.db).ExecContext(ctx, `
		UPDATE bids SET status = $2, updated_at = $3
		WHERE id = $1
	`, uuid.UUID(bid.ID), string(bid.Status), bid.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update bid: %w", translate(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update bid rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("bid %s: %w", bid.ID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, bidID id.BidID) (*domain.Bid, error) {
	row := tx.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+bidColumns+` FROM bids WHERE id = $1`, uuid.UUID(bidID))
	b, err := scanBid(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bid %s: %w", bidID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find bid: %w", err)
	}
	return b, nil
}

// HighestActive reads the leading active bid. Inside WithinListing the row
// is locked FOR UPDATE until the transaction ends.
func (s *Postgres) HighestActive(ctx context.Context, listingID id.ListingID) (*domain.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids
		WHERE listing_id = $1 AND status = $2
		ORDER BY amount DESC, placed_at ASC
		LIMIT 1`
	if _, inTx := tx.From(ctx); inTx {
		query += ` FOR UPDATE`
	}
	row := tx.Pick(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(listingID), string(domain.StatusActive))
	b, err := scanBid(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no active bid on listing %s: %w", listingID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find highest bid: %w", translate(err))
	}
	return b, nil
}

func (s *Postgres) ListByListing(ctx context.Context, listingID id.ListingID, statuses ...domain.Status) ([]*domain.Bid, error) {
	filter := make([]string, len(statuses))
	for i, st := range statuses {
		filter[i] = string(st)
	}
	rows, err := tx.Pick(ctx, s.db).QueryContext(ctx, `
		SELECT `+bidColumns+` FROM bids
		WHERE listing_id = $1 AND (cardinality($2::text[]) = 0 OR status = ANY($2::text[]))
		ORDER BY placed_at ASC, id ASC
	`, uuid.UUID(listingID), pq.Array(filter))
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", translate(err))
	}
	defer rows.Close()

	out := make([]*domain.Bid, 0)
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bid: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bids: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBid(row scanner) (*domain.Bid, error) {
	var (
		bidID, listingID, bidderID uuid.UUID
		status                     string
		b                          domain.Bid
	)
	if err := row.Scan(&bidID, &listingID, &bidderID, &b.Amount, &status, &b.PlacedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.ID = id.BidID(bidID)
	b.ListingID = id.ListingID(listingID)
	b.BidderID = id.BidderID(bidderID)
	b.Status = domain.Status(status)
	return &b, nil
}

// Postgres error codes mapped onto sentinels.
const (
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
	pqUniqueViolation      = "23505"
)

func translate(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqSerializationFailure, pqDeadlockDetected, pqUniqueViolation:
		return fmt.Errorf("%w: %s", sentinel.ErrConflict, pqErr.Message)
	default:
		return err
	}
}
