package repository

import (
	"context"
	"time"

	"github.com/ManourasM/TavernAI-sub000/internal/model"
)

// MenuRepository stores append-only menu versions and their items.
type MenuRepository interface {
	// LatestVersion returns the newest version with its items, or
	// ErrNoMenu when nothing has been uploaded yet.
	LatestVersion(ctx context.Context) (model.MenuVersion, []model.MenuItem, error)
	// ListVersions returns all versions, newest first.
	ListVersions(ctx context.Context) ([]model.MenuVersion, error)
	// CreateVersion appends a new version holding the given items.
	CreateVersion(ctx context.Context, note string, items []model.MenuItem) (model.MenuVersion, error)
}

// StationRepository stores the runtime station registry.
type StationRepository interface {
	List(ctx context.Context) ([]model.Station, error)
	Create(ctx context.Context, st *model.Station) error
	SetActive(ctx context.Context, key string, active bool) error
	// Seed inserts the default stations when the table is empty.
	Seed(ctx context.Context) error
}

// CorrectionFilter narrows correction listing; zero values mean "any".
type CorrectionFilter struct {
	From            *time.Time
	To              *time.Time
	CorrectedItemID string
	Limit           int
	Offset          int
}

// CorrectionRepository stores human correction rules, keyed by
// normalized raw text.  Upsert overwrites older rules for the key.
type CorrectionRepository interface {
	Upsert(ctx context.Context, rule model.CorrectionRule) error
	// All returns every rule for warm-loading the in-memory table.
	All(ctx context.Context) ([]model.CorrectionRule, error)
	// List returns a filtered page plus the total match count.
	List(ctx context.Context, f CorrectionFilter) ([]model.CorrectionRule, int, error)
}

// ReceiptFilter narrows receipt history listing.
type ReceiptFilter struct {
	Table  string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// ReceiptRepository archives finalized sessions.
type ReceiptRepository interface {
	SaveReceipt(ctx context.Context, r *model.Receipt) error
	GetByID(ctx context.Context, id string) (*model.Receipt, error)
	List(ctx context.Context, f ReceiptFilter) ([]model.Receipt, int, error)
}
