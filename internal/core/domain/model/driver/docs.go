// Package driver provides the Driver entity: a delivery person's contact
// details, vehicle, last reported position and availability.
//
// Availability is owned by the claim protocol while a driver holds an active
// assignment. Drivers may toggle it themselves only when they hold none, which
// is how they go on and off shift.
package driver
