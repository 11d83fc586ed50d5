package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/louisbranch/taskboard/internal/services/todo/session"
	"github.com/louisbranch/taskboard/internal/services/todo/storage"
	"github.com/louisbranch/taskboard/internal/services/todo/task"
	"github.com/louisbranch/taskboard/internal/services/todo/user"
)

type fakeUserStore struct {
	mu      sync.Mutex
	byID    map[string]storage.UserRecord
	getErr  error
	putErr  error
	creates int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byID: make(map[string]storage.UserRecord)}
}

func (s *fakeUserStore) GetUserByEmail(_ context.Context, email string) (storage.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return storage.UserRecord{}, s.getErr
	}
	for _, record := range s.byID {
		if record.Email == email {
			return record, nil
		}
	}
	return storage.UserRecord{}, storage.ErrNotFound
}

func (s *fakeUserStore) CreateUser(_ context.Context, record storage.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	for _, existing := range s.byID {
		if existing.Email == record.Email {
			return storage.ErrDuplicateEmail
		}
	}
	s.byID[record.ID] = record
	s.creates++
	return nil
}

func (s *fakeUserStore) GetUser(_ context.Context, userID string) (storage.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return storage.UserRecord{}, s.getErr
	}
	record, ok := s.byID[userID]
	if !ok {
		return storage.UserRecord{}, storage.ErrNotFound
	}
	return record, nil
}

func (s *fakeUserStore) UpdateUser(_ context.Context, userID string, patch user.ProfilePatch, updatedAt time.Time) (storage.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.byID[userID]
	if !ok {
		return storage.UserRecord{}, storage.ErrNotFound
	}
	if patch.Email != nil {
		for id, other := range s.byID {
			if id != userID && other.Email == *patch.Email {
				return storage.UserRecord{}, storage.ErrDuplicateEmail
			}
		}
	}
	record.User = record.User.Apply(patch, updatedAt)
	s.byID[userID] = record
	return record, nil
}

type fakeRevocationStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	err     error
}

func newFakeRevocationStore() *fakeRevocationStore {
	return &fakeRevocationStore{revoked: make(map[string]time.Time)}
}

func (s *fakeRevocationStore) RevokeSession(_ context.Context, tokenID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.revoked[tokenID] = expiresAt
	return nil
}

func (s *fakeRevocationStore) IsSessionRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.revoked[tokenID]
	return ok, nil
}

func (s *fakeRevocationStore) DeleteExpiredRevocations(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, expiresAt := range s.revoked {
		if !expiresAt.After(now) {
			delete(s.revoked, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeTaskStore struct {
	mu        sync.Mutex
	tasks     map[string]task.Task
	insertErr error
	listErr   error
	gets      int
	updates   int
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[string]task.Task)}
}

func (s *fakeTaskStore) InsertTask(_ context.Context, t task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.tasks[t.ID] = t
	return nil
}

func (s *fakeTaskStore) ListTasksByOwner(_ context.Context, ownerID string) ([]task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []task.Task
	for _, t := range s.tasks {
		if t.UserID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *fakeTaskStore) GetTask(_ context.Context, taskID, ownerID string) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	t, ok := s.tasks[taskID]
	if !ok || t.UserID != ownerID {
		return task.Task{}, storage.ErrNotFound
	}
	return t, nil
}

func (s *fakeTaskStore) UpdateTask(_ context.Context, taskID, ownerID string, patch task.Patch, updatedAt time.Time) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	t, ok := s.tasks[taskID]
	if !ok || t.UserID != ownerID {
		return task.Task{}, storage.ErrNotFound
	}
	t = t.Apply(patch, updatedAt)
	s.tasks[taskID] = t
	return t, nil
}

func (s *fakeTaskStore) DeleteTask(_ context.Context, taskID, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok || t.UserID != ownerID {
		return storage.ErrNotFound
	}
	delete(s.tasks, taskID)
	return nil
}

type failingIssuer struct{}

func (failingIssuer) Issue(string) (session.Token, error) {
	return session.Token{}, errors.New("signer offline")
}

func sequenceIDs(prefix string) func() (string, error) {
	var mu sync.Mutex
	next := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		next++
		return fmt.Sprintf("%s-%d", prefix, next), nil
	}
}
