// Package password hashes and verifies credentials with argon2id and encodes
// the result as a PHC string, so every stored hash carries its own parameters
// and verification never depends on the hasher's current configuration.
//
// # What this package must NOT do
//
//   - Decide credential policy: length and complexity rules belong to the
//     caller, not the hasher.
//   - Import any other authgate package.
package password
