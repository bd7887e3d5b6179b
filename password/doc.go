// Package password hashes and verifies account passwords with Argon2id.
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Verification reads the cost parameters from the stored hash, so hashes made
// under older settings keep verifying. NeedsUpgrade reports when a stored hash
// is weaker than the current configuration.
//
// The package never trims or normalizes input and never sees storage.
package password
