package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ManourasM/TavernAI-sub000/internal/model"
)

// In-memory implementations of the repository interfaces.  Used by the
// test suites; they honor the same contracts as the MySQL versions.

// MemoryMenuRepo keeps menu versions in a slice, newest last.
type MemoryMenuRepo struct {
	mu       sync.Mutex
	versions []model.MenuVersion
	items    map[uint64][]model.MenuItem
	nextID   uint64
}

func NewMemoryMenuRepo() *MemoryMenuRepo {
	return &MemoryMenuRepo{items: make(map[uint64][]model.MenuItem), nextID: 1}
}

func (r *MemoryMenuRepo) LatestVersion(ctx context.Context) (model.MenuVersion, []model.MenuItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.versions) == 0 {
		return model.MenuVersion{}, nil, ErrNoMenu
	}
	v := r.versions[len(r.versions)-1]
	return v, append([]model.MenuItem(nil), r.items[v.ID]...), nil
}

func (r *MemoryMenuRepo) ListVersions(ctx context.Context) ([]model.MenuVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]model.MenuVersion(nil), r.versions...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *MemoryMenuRepo) CreateVersion(ctx context.Context, note string, items []model.MenuItem) (model.MenuVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := model.MenuVersion{ID: r.nextID, CreatedAt: time.Now().UTC(), Note: note}
	r.nextID++
	copied := make([]model.MenuItem, len(items))
	copy(copied, items)
	for i := range copied {
		copied[i].VersionID = v.ID
	}
	r.versions = append(r.versions, v)
	r.items[v.ID] = copied
	return v, nil
}

// MemoryStationRepo keeps stations in insertion order.
type MemoryStationRepo struct {
	mu       sync.Mutex
	stations []model.Station
	nextID   uint64
}

func NewMemoryStationRepo() *MemoryStationRepo { return &MemoryStationRepo{nextID: 1} }

func (r *MemoryStationRepo) List(ctx context.Context) ([]model.Station, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Station(nil), r.stations...), nil
}

func (r *MemoryStationRepo) Create(ctx context.Context, st *model.Station) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.stations {
		if existing.Key == st.Key {
			return ErrDuplicate
		}
	}
	st.ID = r.nextID
	r.nextID++
	st.CreatedAt = time.Now().UTC()
	r.stations = append(r.stations, *st)
	return nil
}

func (r *MemoryStationRepo) SetActive(ctx context.Context, key string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.stations {
		if r.stations[i].Key == key {
			r.stations[i].Active = active
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryStationRepo) Seed(ctx context.Context) error {
	r.mu.Lock()
	empty := len(r.stations) == 0
	r.mu.Unlock()
	if !empty {
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

// MemoryCorrectionRepo keys rules by normalized text, last write wins.
type MemoryCorrectionRepo struct {
	mu    sync.Mutex
	rules map[string]model.CorrectionRule
}

func NewMemoryCorrectionRepo() *MemoryCorrectionRepo {
	return &MemoryCorrectionRepo{rules: make(map[string]model.CorrectionRule)}
}

func (r *MemoryCorrectionRepo) Upsert(ctx context.Context, rule model.CorrectionRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.Key] = rule
	return nil
}

func (r *MemoryCorrectionRepo) All(ctx context.Context) ([]model.CorrectionRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.CorrectionRule, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, rule)
	}
	return out, nil
}

func (r *MemoryCorrectionRepo) List(ctx context.Context, f CorrectionFilter) ([]model.CorrectionRule, int, error) {
	all, _ := r.All(ctx)
	var filtered []model.CorrectionRule
	for _, rule := range all {
		if f.From != nil && rule.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && rule.CreatedAt.After(*f.To) {
			continue
		}
		if f.CorrectedItemID != "" && rule.CorrectedItemID != f.CorrectedItemID {
			continue
		}
		filtered = append(filtered, rule)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].CreatedAt.After(filtered[j].CreatedAt) })
	total := len(filtered)
	filtered = page(filtered, f.Offset, f.Limit)
	return filtered, total, nil
}

// MemoryReceiptRepo archives receipts in a map.  FailNext makes the
// next save fail, letting tests exercise the finalize abort path.
type MemoryReceiptRepo struct {
	mu       sync.Mutex
	receipts map[string]model.Receipt
	order    []string
	FailNext error
}

func NewMemoryReceiptRepo() *MemoryReceiptRepo {
	return &MemoryReceiptRepo{receipts: make(map[string]model.Receipt)}
}

func (r *MemoryReceiptRepo) SaveReceipt(ctx context.Context, rc *model.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailNext != nil {
		err := r.FailNext
		r.FailNext = nil
		return err
	}
	r.receipts[rc.ID] = *rc
	r.order = append(r.order, rc.ID)
	return nil
}

func (r *MemoryReceiptRepo) GetByID(ctx context.Context, id string) (*model.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rc, ok := r.receipts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rc, nil
}

func (r *MemoryReceiptRepo) List(ctx context.Context, f ReceiptFilter) ([]model.Receipt, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var filtered []model.Receipt
	for i := len(r.order) - 1; i >= 0; i-- {
		rc := r.receipts[r.order[i]]
		if f.Table != "" && rc.Table != f.Table {
			continue
		}
		if f.From != nil && rc.ClosedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && rc.ClosedAt.After(*f.To) {
			continue
		}
		filtered = append(filtered, rc)
	}
	total := len(filtered)
	filtered = page(filtered, f.Offset, f.Limit)
	return filtered, total, nil
}

func page[T any](in []T, offset, limit int) []T {
	if limit <= 0 {
		limit = 50
	}
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if len(in) > limit {
		in = in[:limit]
	}
	return in
}

// Count reports how many receipts are archived.
func (r *MemoryReceiptRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.receipts)
}
