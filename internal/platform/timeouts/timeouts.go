// Package timeouts defines shared timeout constants used by the HTTP and gRPC
// listeners. Centralizing these values keeps the durations discoverable.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Read caps the time to read a full request including its body.
const Read = 15 * time.Second

// Write caps the time to write a response.
const Write = 15 * time.Second

// Idle bounds how long keep-alive connections stay open between requests.
const Idle = 60 * time.Second

// Shutdown limits how long servers wait for in-flight requests during
// graceful shutdown.
const Shutdown = 10 * time.Second
