// Package services provides domain services that coordinate several
// aggregates of the fulfillment domain.
//
// The package includes:
//   - OrderDispatcher: selects the tie-nearest available drivers for an order
//     that is ready for pickup and opens a pending delivery assignment to them
package services
