// Package storage defines the persistence contracts for accounts, tasks and
// revoked sessions. Implementations live in subpackages.
package storage
