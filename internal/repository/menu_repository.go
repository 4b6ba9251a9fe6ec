package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/ManourasM/TavernAI-sub000/internal/model"
)

// MenuRepo is the MySQL-backed MenuRepository.  Versions are append
// only: items are never updated in place, a new upload creates a new
// version row plus a fresh item set, so historical order lines keep a
// stable reference.
type MenuRepo struct {
	db *sql.DB
}

// NewMenuRepo returns a MenuRepo bound to the given database.
func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{db: db} }

// LatestVersion returns the newest menu version and its items.
func (r *MenuRepo) LatestVersion(ctx context.Context) (model.MenuVersion, []model.MenuItem, error) {
	const q = `SELECT id, created_at, note FROM menu_versions ORDER BY created_at DESC, id DESC LIMIT 1`
	var v model.MenuVersion
	err := r.db.QueryRowContext(ctx, q).Scan(&v.ID, &v.CreatedAt, &v.Note)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MenuVersion{}, nil, ErrNoMenu
	}
	if err != nil {
		return model.MenuVersion{}, nil, err
	}
	items, err := r.itemsForVersion(ctx, v.ID)
	if err != nil {
		return model.MenuVersion{}, nil, err
	}
	return v, items, nil
}

func (r *MenuRepo) itemsForVersion(ctx context.Context, versionID uint64) ([]model.MenuItem, error) {
	const q = `SELECT external_id, menu_version_id, name, price, station, unit_kind, hidden
	           FROM menu_items WHERE menu_version_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, versionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.MenuItem
	for rows.Next() {
		var (
			it       model.MenuItem
			priceStr string
			unit     string
		)
		if err := rows.Scan(&it.ID, &it.VersionID, &it.Name, &priceStr, &it.Station, &unit, &it.Hidden); err != nil {
			return nil, err
		}
		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			return nil, err
		}
		it.Price = price
		it.Unit = model.UnitKind(unit)
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListVersions returns all menu versions, newest first.
func (r *MenuRepo) ListVersions(ctx context.Context) ([]model.MenuVersion, error) {
	const q = `SELECT id, created_at, note FROM menu_versions ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MenuVersion
	for rows.Next() {
		var v model.MenuVersion
		if err := rows.Scan(&v.ID, &v.CreatedAt, &v.Note); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// CreateVersion inserts a new version and its item rows in one
// transaction.  The caller decides when to swap the active catalog.
func (r *MenuRepo) CreateVersion(ctx context.Context, note string, items []model.MenuItem) (model.MenuVersion, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.MenuVersion{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `INSERT INTO menu_versions (note) VALUES (?)`, note)
	if err != nil {
		return model.MenuVersion{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.MenuVersion{}, err
	}

	const ins = `INSERT INTO menu_items (external_id, menu_version_id, name, price, station, unit_kind, hidden)
	             VALUES (?, ?, ?, ?, ?, ?, ?)`
	for _, it := range items {
		if _, err := tx.ExecContext(ctx, ins,
			it.ID, id, it.Name, it.Price.String(), it.Station, string(it.Unit), it.Hidden); err != nil {
			return model.MenuVersion{}, err
		}
	}

	var v model.MenuVersion
	if err := tx.QueryRowContext(ctx,
		`SELECT id, created_at, note FROM menu_versions WHERE id = ?`, id).
		Scan(&v.ID, &v.CreatedAt, &v.Note); err != nil {
		return model.MenuVersion{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.MenuVersion{}, err
	}
	committed = true
	return v, nil
}
