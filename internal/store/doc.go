// Package store defines the persistence interfaces for the application's
// entities along with the error taxonomy shared by all implementations.
// Concrete stores live in internal/platform/postgres; services depend only
// on the interfaces here so storage can be swapped or mocked in tests.
package store
