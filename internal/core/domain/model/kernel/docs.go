// Package kernel provides the shared value objects of the fulfillment domain.
//
// The package includes:
//   - UUID: identifier of orders, drivers, customers and restaurants
//   - Location: a validated latitude/longitude pair with haversine distance
//   - Money: a non-negative two-place decimal amount
//
// Value objects are immutable and safe for concurrent use. Zero values of
// UUID and Location are invalid and fail Validate.
package kernel
