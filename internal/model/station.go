package model

import "time"

// Default station keys seeded on first start.  The set is not closed:
// stations live in a runtime registry and admins may add more.
const (
	StationKitchen = "kitchen"
	StationGrill   = "grill"
	StationDrinks  = "drinks"
	StationWaiter  = "waiter"
)

// Station is a preparation area that subscribes to the order lines
// routed to it.  The waiter station is special: it is marked CatchAll
// and receives every delta regardless of the line's station.
//
// Fields:
//  ID        – primary key identifier.
//  Key       – unique slug used in WS subscriptions and MenuItem.Station.
//  Name      – human readable display name.
//  CatchAll  – receives all deltas (waiter view).
//  Active    – inactive stations reject new subscriptions.
//  CreatedAt – creation timestamp.
type Station struct {
	ID        uint64    `json:"id"`         // stations.id
	Key       string    `json:"key"`        // stations.slug
	Name      string    `json:"name"`       // stations.name
	CatchAll  bool      `json:"catch_all"`  // stations.catch_all
	Active    bool      `json:"active"`     // stations.active
	CreatedAt time.Time `json:"created_at"` // stations.created_at
}
