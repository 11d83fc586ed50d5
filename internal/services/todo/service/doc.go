// Package service implements the account and task use cases on top of the
// storage contracts. Handlers call these services; services never see HTTP.
package service
