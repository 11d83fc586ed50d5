// Package httpapi exposes the JSON REST API: sign-up, login and logout, the
// caller's profile, and owner-scoped task CRUD behind the access guard.
package httpapi
