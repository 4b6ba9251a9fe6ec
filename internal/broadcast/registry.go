package broadcast

import (
	"sync"
)

// Registry tracks which clients belong to which station channel and
// routes events to them.  Connect/disconnect mutate the registry;
// broadcasts only read it, so delivery to different stations proceeds
// concurrently.  Catch-all stations (the waiter view) receive every
// delta regardless of the target station.
type Registry struct {
	mu       sync.RWMutex
	stations map[string]map[*Client]struct{}
	catchAll map[string]bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		stations: make(map[string]map[*Client]struct{}),
		catchAll: make(map[string]bool),
	}
}

// SetCatchAll marks the given station keys as receiving all deltas.
// Called at startup and whenever the station registry is reloaded.
func (r *Registry) SetCatchAll(keys []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catchAll = make(map[string]bool, len(keys))
	for _, k := range keys {
		r.catchAll[k] = true
	}
}

// Subscribe registers the client on its station channel.  The caller
// builds the init snapshot after registering and queues it with Send:
// a delta that lands in between is buffered on the client queue ahead
// of the init, which supersedes it.  Registering after the snapshot
// would instead lose that delta entirely.
func (r *Registry) Subscribe(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.stations[c.Station]
	if !ok {
		set = make(map[*Client]struct{})
		r.stations[c.Station] = set
	}
	set[c] = struct{}{}
}

// Unsubscribe removes and closes a client.
func (r *Registry) Unsubscribe(c *Client) {
	r.mu.Lock()
	if set, ok := r.stations[c.Station]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(r.stations, c.Station)
		}
	}
	r.mu.Unlock()
	c.Close()
}

// Broadcast delivers an event to one station channel plus every
// catch-all channel.  A client whose queue is full is dropped; the
// failure is isolated to that connection.
func (r *Registry) Broadcast(station string, ev Event) {
	r.deliver(func(key string) bool { return key == station || r.catchAll[key] }, ev)
}

// BroadcastAll delivers an event to every channel.
func (r *Registry) BroadcastAll(ev Event) {
	r.deliver(func(string) bool { return true }, ev)
}

func (r *Registry) deliver(match func(stationKey string) bool, ev Event) {
	var dead []*Client
	r.mu.RLock()
	for key, set := range r.stations {
		if !match(key) {
			continue
		}
		for c := range set {
			if !c.enqueue(ev) {
				dead = append(dead, c)
			}
		}
	}
	r.mu.RUnlock()
	for _, c := range dead {
		r.Unsubscribe(c)
	}
}

// Count reports the number of live connections on a station channel.
func (r *Registry) Count(station string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stations[station])
}
