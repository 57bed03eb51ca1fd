// Package domain contains the core domain model for the workshop service.
//
// This package defines:
//   - Entities: Mechanic, Vehicle, Owner and ServiceRequest records as the
//     persistence layer hands them over, relations already resolved
//   - Domain Errors: sentinel errors and DomainError for consistent mapping
//     to transport responses
//
// Rules for this package:
//   - No external dependencies except the standard library
//   - No infrastructure concerns (database, HTTP, etc.)
//   - Records are treated as read-only by the layers that project them
package domain
