// Package store declares the persistence ports used by the auth engine and
// the error values adapters report through them. Implementations live in the
// postgres and sqlite sub-packages; avatar files are handled by package files.
package store
