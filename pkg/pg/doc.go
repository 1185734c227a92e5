// Package pg provides pgx connection pool helpers for the PostgreSQL-backed
// parts of the platform, primarily the durable queue storage.
//
// Connect builds a pgxpool.Pool from Config, retrying with a growing wait so
// services restarting together do not overwhelm the database. The error
// predicates (IsNotFoundError, IsDuplicateKeyError) keep SQLSTATE checks out
// of repository code.
package pg
