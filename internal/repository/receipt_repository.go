package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/ManourasM/TavernAI-sub000/internal/model"
)

// ReceiptRepo is the MySQL-backed receipt archive.  The line snapshot
// is stored as a JSON blob: receipts are read-only history, never
// queried per line.
type ReceiptRepo struct {
	db *sql.DB
}

// NewReceiptRepo returns a ReceiptRepo bound to the given database.
func NewReceiptRepo(db *sql.DB) *ReceiptRepo { return &ReceiptRepo{db: db} }

// SaveReceipt inserts one finalized receipt.  This insert is the
// ledger's durability point for finalize.
func (r *ReceiptRepo) SaveReceipt(ctx context.Context, rc *model.Receipt) error {
	lines, err := json.Marshal(rc.Lines)
	if err != nil {
		return err
	}
	const q = `INSERT INTO receipts (id, table_label, people, bread, lines_json, total, has_unpriced, opened_at, closed_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, q,
		rc.ID, rc.Table, nullInt(rc.People), rc.Bread, lines, rc.Total.String(), rc.HasUnpriced, rc.OpenedAt, rc.ClosedAt)
	return err
}

// GetByID returns one archived receipt.
func (r *ReceiptRepo) GetByID(ctx context.Context, id string) (*model.Receipt, error) {
	const q = `SELECT id, table_label, people, bread, lines_json, total, has_unpriced, opened_at, closed_at
	           FROM receipts WHERE id = ?`
	rc, err := scanReceipt(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rc, err
}

// List returns a filtered page of receipts, newest first, plus the
// total number of matches.
func (r *ReceiptRepo) List(ctx context.Context, f ReceiptFilter) ([]model.Receipt, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	if f.Table != "" {
		where += ` AND table_label = ?`
		args = append(args, f.Table)
	}
	if f.From != nil {
		where += ` AND closed_at >= ?`
		args = append(args, *f.From)
	}
	if f.To != nil {
		where += ` AND closed_at <= ?`
		args = append(args, *f.To)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM receipts`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT id, table_label, people, bread, lines_json, total, has_unpriced, opened_at, closed_at
	      FROM receipts` + where + ` ORDER BY closed_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Receipt
	for rows.Next() {
		rc, err := scanReceipt(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *rc)
	}
	return out, total, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReceipt(row rowScanner) (*model.Receipt, error) {
	var (
		rc       model.Receipt
		people   sql.NullInt64
		lines    []byte
		totalStr string
	)
	if err := row.Scan(&rc.ID, &rc.Table, &people, &rc.Bread, &lines, &totalStr, &rc.HasUnpriced, &rc.OpenedAt, &rc.ClosedAt); err != nil {
		return nil, err
	}
	if people.Valid {
		p := int(people.Int64)
		rc.People = &p
	}
	if err := json.Unmarshal(lines, &rc.Lines); err != nil {
		return nil, err
	}
	if err := rc.Total.UnmarshalText([]byte(totalStr)); err != nil {
		return nil, err
	}
	return &rc, nil
}

func nullInt(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
