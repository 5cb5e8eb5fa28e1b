// Package auth authenticates house users.
//
// Each configured house has one user whose password is stored as an
// Argon2id PHC string. A successful login yields a JWT access token
// scoped to that house; requests may also authenticate with HTTP Basic
// credentials. A principal may only act on its own house.
package auth
