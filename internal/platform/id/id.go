// Package id generates opaque identifiers for persisted records.
package id

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a random UUIDv4 rendered as 26 lowercase base32 characters.
func NewID() (string, error) {
	value, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return strings.ToLower(encoding.EncodeToString(value[:])), nil
}

var (
	sortableMu      sync.Mutex
	sortableEntropy = ulid.Monotonic(rand.Reader, 0)
)

// NewSortableID returns a lowercase ULID. IDs minted by one process sort in
// creation order, even within the same millisecond.
func NewSortableID() (string, error) {
	return newSortableIDAt(time.Now())
}

func newSortableIDAt(now time.Time) (string, error) {
	sortableMu.Lock()
	defer sortableMu.Unlock()
	value, err := ulid.New(ulid.Timestamp(now), sortableEntropy)
	if err != nil {
		return "", fmt.Errorf("generate ulid: %w", err)
	}
	return strings.ToLower(value.String()), nil
}
