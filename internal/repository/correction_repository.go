package repository

import (
	"context"
	"database/sql"

	"github.com/ManourasM/TavernAI-sub000/internal/model"
)

// CorrectionRepo is the MySQL-backed correction store.  One row per
// normalized key; a newer correction for the same key overwrites the
// old one in place.
type CorrectionRepo struct {
	db *sql.DB
}

// NewCorrectionRepo returns a CorrectionRepo bound to the given database.
func NewCorrectionRepo(db *sql.DB) *CorrectionRepo { return &CorrectionRepo{db: db} }

// Upsert stores a correction rule, last write wins.
func (r *CorrectionRepo) Upsert(ctx context.Context, rule model.CorrectionRule) error {
	const q = `INSERT INTO correction_rules (rule_key, raw_text, predicted_item_id, corrected_item_id, created_at)
	           VALUES (?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE
	             raw_text = VALUES(raw_text),
	             predicted_item_id = VALUES(predicted_item_id),
	             corrected_item_id = VALUES(corrected_item_id),
	             created_at = VALUES(created_at)`
	_, err := r.db.ExecContext(ctx, q,
		rule.Key, rule.RawText, nullStr(rule.PredictedItemID), rule.CorrectedItemID, rule.CreatedAt)
	return err
}

// All returns every rule, used to warm the in-memory table at startup.
func (r *CorrectionRepo) All(ctx context.Context) ([]model.CorrectionRule, error) {
	const q = `SELECT rule_key, raw_text, predicted_item_id, corrected_item_id, created_at FROM correction_rules`
	return r.scanRules(ctx, q)
}

// List returns a filtered page of rules, newest first, plus the total
// number of matches.
func (r *CorrectionRepo) List(ctx context.Context, f CorrectionFilter) ([]model.CorrectionRule, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	if f.From != nil {
		where += ` AND created_at >= ?`
		args = append(args, *f.From)
	}
	if f.To != nil {
		where += ` AND created_at <= ?`
		args = append(args, *f.To)
	}
	if f.CorrectedItemID != "" {
		where += ` AND corrected_item_id = ?`
		args = append(args, f.CorrectedItemID)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM correction_rules`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT rule_key, raw_text, predicted_item_id, corrected_item_id, created_at
	      FROM correction_rules` + where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, f.Offset)
	rules, err := r.scanRules(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	return rules, total, nil
}

func (r *CorrectionRepo) scanRules(ctx context.Context, q string, args ...interface{}) ([]model.CorrectionRule, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CorrectionRule
	for rows.Next() {
		var (
			rule      model.CorrectionRule
			predicted sql.NullString
		)
		if err := rows.Scan(&rule.Key, &rule.RawText, &predicted, &rule.CorrectedItemID, &rule.CreatedAt); err != nil {
			return nil, err
		}
		if predicted.Valid {
			rule.PredictedItemID = predicted.String
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
