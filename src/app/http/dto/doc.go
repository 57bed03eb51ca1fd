// Package dto contains Data Transfer Objects for HTTP requests and responses,
// and the mapper that converts between them and domain records.
//
// Inbound payloads arrive as untyped maps and are coerced into typed
// requests by Parse* functions. Outbound views are built by Project*
// functions that copy an explicit field subset out of a domain record;
// nothing is discovered by reflection, so a field only reaches the wire if
// a projection names it.
//
// Naming convention:
//   - Request types: <Action>Request (e.g., ContactRequest)
//   - Response types: <Resource>View or <Action>Response
//
// All functions in this package are pure and safe for concurrent use.
package dto
