// Package todo is the to-do list backend: account sign-up and login, signed
// session tokens, and per-user task CRUD.
//
// Subpackages:
//   - app: server wiring and lifecycle
//   - api/http: REST handlers, routing, and the access guard
//   - service: account and task use cases
//   - session: session token issuing and verification
//   - storage: persistence interfaces and the SQLite implementation
//   - user, task: domain models and validation rules
package todo
