// Package server assembles the to-do API process: the SQLite store, the
// account and task services, the HTTP listener, an optional gRPC health
// listener, and the background cleanup loop.
package server
