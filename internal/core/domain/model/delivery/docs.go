// Package delivery provides the Assignment aggregate: the offer of one order's
// delivery to the tie-nearest candidate drivers and, once a candidate accepts,
// the binding to exactly one committed driver.
//
// Key business rules:
//   - One assignment per order
//   - The committed driver is set at most once and never changes afterwards
//   - Only candidates may accept, and only while the assignment is pending
//   - Delivered and Cancelled close the assignment and release the driver
//
// The in-memory checks here classify a claim attempt; the persistence adapter
// repeats them as a single conditional write so concurrent acceptors cannot
// both win.
package delivery
