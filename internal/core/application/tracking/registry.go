// Package tracking fans driver location reports out to live subscribers,
// such as customers following their delivery.
package tracking

import (
	"sync"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
)

// DefaultBuffer is the per-subscriber queue length. Updates for a subscriber
// whose queue is full are dropped; the next report supersedes them anyway.
const DefaultBuffer = 16

// Subscription receives the updates of one driver until it is cancelled.
type Subscription struct {
	id       uint64
	driverID kernel.UUID
	updates  chan ports.DriverLocationUpdate
}

// Updates is closed when the subscription is cancelled.
func (s *Subscription) Updates() <-chan ports.DriverLocationUpdate {
	return s.updates
}

func (s *Subscription) DriverID() kernel.UUID {
	return s.driverID
}

// Registry is a mutex-guarded map of driver id to subscribers. It implements
// ports.LocationBroadcaster.
type Registry struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[kernel.UUID]map[uint64]*Subscription
	buffer int
}

var _ ports.LocationBroadcaster = (*Registry)(nil)

func NewRegistry(buffer int) *Registry {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	return &Registry{
		subs:   make(map[kernel.UUID]map[uint64]*Subscription),
		buffer: buffer,
	}
}

// Subscribe registers interest in driverID. The caller must Unsubscribe.
func (r *Registry) Subscribe(driverID kernel.UUID) *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	sub := &Subscription{
		id:       r.nextID,
		driverID: driverID,
		updates:  make(chan ports.DriverLocationUpdate, r.buffer),
	}

	if r.subs[driverID] == nil {
		r.subs[driverID] = make(map[uint64]*Subscription)
	}
	r.subs[driverID][sub.id] = sub
	return sub
}

// Unsubscribe removes sub and closes its channel. Repeated calls are no-ops.
func (r *Registry) Unsubscribe(sub *Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byDriver, ok := r.subs[sub.driverID]
	if !ok {
		return
	}
	if _, ok = byDriver[sub.id]; !ok {
		return
	}

	delete(byDriver, sub.id)
	close(sub.updates)
	if len(byDriver) == 0 {
		delete(r.subs, sub.driverID)
	}
}

// Broadcast delivers update to every subscriber of its driver without blocking.
func (r *Registry) Broadcast(update ports.DriverLocationUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sub := range r.subs[update.DriverID] {
		select {
		case sub.updates <- update:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions for driverID.
func (r *Registry) Subscribers(driverID kernel.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs[driverID])
}
