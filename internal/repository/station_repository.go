package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ManourasM/TavernAI-sub000/internal/model"
)

// StationRepo is the MySQL-backed station registry.  Stations are
// admin-configurable at runtime; the broadcaster and the menu resolve
// them by key, never through a compile-time enum.
type StationRepo struct {
	db *sql.DB
}

// NewStationRepo returns a StationRepo bound to the given database.
func NewStationRepo(db *sql.DB) *StationRepo { return &StationRepo{db: db} }

// List returns every station ordered by creation.
func (r *StationRepo) List(ctx context.Context) ([]model.Station, error) {
	const q = `SELECT id, slug, name, catch_all, active, created_at FROM stations ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Station
	for rows.Next() {
		var st model.Station
		if err := rows.Scan(&st.ID, &st.Key, &st.Name, &st.CatchAll, &st.Active, &st.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// Create inserts a new station and populates its generated fields.
func (r *StationRepo) Create(ctx context.Context, st *model.Station) error {
	const q = `INSERT INTO stations (slug, name, catch_all, active) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, st.Key, st.Name, st.CatchAll, st.Active)
	if err != nil {
		// 1062 = ER_DUP_ENTRY on the slug unique index
		if strings.Contains(err.Error(), "1062") {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	st.ID = uint64(id)
	const sel = `SELECT created_at FROM stations WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, st.ID).Scan(&st.CreatedAt)
}

// SetActive toggles a station; inactive stations refuse new
// subscriptions but keep their history.
func (r *StationRepo) SetActive(ctx context.Context, key string, active bool) error {
	const q = `UPDATE stations SET active = ? WHERE slug = ?`
	res, err := r.db.ExecContext(ctx, q, active, key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Seed inserts the default stations on an empty table so a fresh
// deployment can route orders immediately.
func (r *StationRepo) Seed(ctx context.Context) error {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stations`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	defaults := []model.Station{
		{Key: model.StationKitchen, Name: "Κουζίνα", Active: true},
		{Key: model.StationGrill, Name: "Ψησταριά", Active: true},
		{Key: model.StationDrinks, Name: "Ποτά", Active: true},
		{Key: model.StationWaiter, Name: "Σερβιτόρος", CatchAll: true, Active: true},
	}
	for i := range defaults {
		if err := r.Create(ctx, &defaults[i]); err != nil {
			return err
		}
	}
	return nil
}
