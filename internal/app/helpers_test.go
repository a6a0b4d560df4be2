package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tasktracker/internal/logging"
	"tasktracker/internal/model"
	"tasktracker/internal/repository"
	"tasktracker/internal/repository/memrepo"
)

const testSecret = "test-secret"

func newTestCredentials() *CredentialService {
	creds := NewCredentialService(testSecret, 7*24*time.Hour)
	creds.SetHashCost(bcrypt.MinCost)
	return creds
}

type fakeDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newFakeDenylist() *fakeDenylist {
	return &fakeDenylist{revoked: make(map[string]time.Duration)}
}

func (f *fakeDenylist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.revoked[tokenID] = ttl
	return nil
}

func (f *fakeDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.revoked[tokenID]
	return ok, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.Activity
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, a model.Activity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, a)
	return nil
}

func (p *recordingPublisher) actions() []model.ActivityAction {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.ActivityAction, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Action)
	}
	return out
}

// racingUserRepo hides existing users from FindConflict to simulate two
// registrations passing the pre-check concurrently.
type racingUserRepo struct {
	repository.UserRepository
}

func (racingUserRepo) FindConflict(context.Context, string, string, string) (*model.User, error) {
	return nil, nil
}

type failingUserRepo struct {
	repository.UserRepository
}

var errStoreDown = errors.New("store down")

func (failingUserRepo) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, errStoreDown
}

func newAuthFixture() (*AuthService, repository.Store, *fakeDenylist) {
	store := memrepo.New()
	deny := newFakeDenylist()
	return NewAuthService(store.Users, newTestCredentials(), deny, logging.Discard()), store, deny
}

func strPtr(s string) *string { return &s }
