// Package postgres provides PostgreSQL implementations of the store
// interfaces. Every store accepts a store.DBTX so the same implementation
// runs against a plain connection pool or inside a transaction, and all
// database errors are translated into the store package's error taxonomy
// by MapError.
package postgres
