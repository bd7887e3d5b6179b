// Package postgres implements the account and membership stores on
// PostgreSQL through database/sql and the pgx driver.
package postgres
