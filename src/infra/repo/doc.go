// Package repo contains PostgreSQL implementations of repository interfaces.
//
// This package implements the ports defined in src/core/ports. Queries are
// built with squirrel and executed on the pgx pool. Every record returned
// by a repository has its relations loaded with joins in the same query, so
// callers never resolve relations lazily.
package repo
