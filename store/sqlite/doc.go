// Package sqlite implements the account and membership stores on an embedded
// SQLite database through sqlx. It suits single-node deployments and tests.
package sqlite
