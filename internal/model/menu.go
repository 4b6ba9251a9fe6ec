package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnitKind describes how a menu item is priced and measured.
// Portion items are counted; weight items are priced per kilogram and
// volume items per liter.
type UnitKind string

const (
	UnitPortion UnitKind = "portion" // countable servings
	UnitWeight  UnitKind = "weight"  // priced per kilogram
	UnitVolume  UnitKind = "volume"  // priced per liter
)

// MenuVersion is one append-only snapshot of the menu.  Items always
// belong to exactly one version; the newest version is authoritative
// for new orders while historical order lines keep referencing the
// version they were priced against.
//
// Fields:
//  ID        – primary key identifier.
//  CreatedAt – creation timestamp (newest wins).
//  Note      – optional free-form description of the upload.
type MenuVersion struct {
	ID        uint64    `json:"id"`         // menu_versions.id
	CreatedAt time.Time `json:"created_at"` // menu_versions.created_at
	Note      string    `json:"note"`       // menu_versions.note
}

// MenuItem is a single orderable entry within a MenuVersion.
//
// Fields:
//  ID        – stable external key (e.g. "souvlaki_01") used by order
//              lines and correction rules.
//  VersionID – menu version this item belongs to.
//  Name      – display name as printed on the menu (Greek allowed).
//  Price     – decimal price; per portion, per kilogram or per liter
//              depending on Unit.
//  Station   – key of the station that prepares this item.
//  Unit      – pricing/measurement kind.
//  Hidden    – hidden items stay in the version for history but must
//              not be silently matched for new orders.
type MenuItem struct {
	ID        string          `json:"id"`         // menu_items.external_id
	VersionID uint64          `json:"version_id"` // menu_items.menu_version_id
	Name      string          `json:"name"`       // menu_items.name
	Price     decimal.Decimal `json:"price"`      // menu_items.price
	Station   string          `json:"station"`    // menu_items.station
	Unit      UnitKind        `json:"unit"`       // menu_items.unit_kind
	Hidden    bool            `json:"hidden"`     // menu_items.hidden
}
