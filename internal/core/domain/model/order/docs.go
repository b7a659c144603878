// Package order provides the Order aggregate of the fulfillment service: the
// customer purchase, its catalog-priced line items, its monetary totals and
// its lifecycle state machine.
//
// The package includes:
//   - Order: The aggregate root; the only place where status and payment status change
//   - Status and PaymentStatus: Lifecycle enums with their legal edges
//   - Role and Actor: The closed set of parties that may act on an order
//   - LineItem, RestaurantOrder, Pricing and Totals: Order contents and amounts
//
// Key business rules:
//   - Status follows pending -> confirmed -> preparing -> ready_for_pickup -> on_the_way -> delivered,
//     and cancelled is reachable from every non-terminal status
//   - One permission table decides which role may take each edge; customers,
//     restaurants and drivers must also be a party to the order
//   - Totals are computed once at creation (subtotal + delivery fee + tax) and never recomputed
//   - Only the system actor records payment outcomes
package order
