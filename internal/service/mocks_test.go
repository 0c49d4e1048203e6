package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/dayplan-app/dayplan-api/internal/domain"
	"github.com/dayplan-app/dayplan-api/internal/store"
	"github.com/google/uuid"
)

// In-memory store fakes for unit tests of non-transactional service paths.
// Transactional paths are exercised against PostgreSQL in the *_tx_test.go
// files.

type fakeBoardStore struct {
	mu     sync.Mutex
	boards map[uuid.UUID]*domain.Board
}

func newFakeBoardStore(boards ...*domain.Board) *fakeBoardStore {
	s := &fakeBoardStore{boards: make(map[uuid.UUID]*domain.Board)}
	for _, b := range boards {
		s.boards[b.ID] = b
	}
	return s
}

func (s *fakeBoardStore) Create(ctx context.Context, board *domain.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards[board.ID] = board
	return nil
}

func (s *fakeBoardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.boards[id]; ok {
		return b, nil
	}
	return nil, store.ErrBoardNotFound
}

func (s *fakeBoardStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Board
	for _, b := range s.boards {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeBoardStore) Update(ctx context.Context, board *domain.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.boards[board.ID]; !ok {
		return store.ErrBoardNotFound
	}
	s.boards[board.ID] = board
	return nil
}

func (s *fakeBoardStore) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	boards, _ := s.ListByOwner(ctx, ownerID)
	return len(boards), nil
}

func (s *fakeBoardStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.boards[id]; !ok {
		return store.ErrBoardNotFound
	}
	delete(s.boards, id)
	return nil
}

func (s *fakeBoardStore) WithTx(tx store.DBTX) store.BoardStore { return s }

type fakeTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task
}

func newFakeTaskStore(tasks ...*domain.Task) *fakeTaskStore {
	s := &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
	for _, task := range tasks {
		s.tasks[task.ID] = task
	}
	return s
}

func (s *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = task
	return nil
}

func (s *fakeTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[id]; ok {
		return t, nil
	}
	return nil, store.ErrTaskNotFound
}

func (s *fakeTaskStore) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Task
	for _, t := range s.tasks {
		if t.BoardID == boardID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeTaskStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return store.ErrTaskNotFound
	}
	t.Status = status
	return nil
}

func (s *fakeTaskStore) Update(ctx context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	s.tasks[task.ID] = task
	return nil
}

func (s *fakeTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *fakeTaskStore) WithTx(tx store.DBTX) store.TaskStore { return s }

type fakeIdentityStore struct {
	mu         sync.Mutex
	identities map[uuid.UUID]*domain.Identity
}

func newFakeIdentityStore(identities ...*domain.Identity) *fakeIdentityStore {
	s := &fakeIdentityStore{identities: make(map[uuid.UUID]*domain.Identity)}
	for _, id := range identities {
		s.identities[id.ID] = id
	}
	return s
}

func (s *fakeIdentityStore) Create(ctx context.Context, identity *domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.identities {
		if existing.Login == identity.Login {
			return store.ErrLoginExists
		}
	}
	s.identities[identity.ID] = identity
	return nil
}

func (s *fakeIdentityStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if identity, ok := s.identities[id]; ok {
		return identity, nil
	}
	return nil, store.ErrIdentityNotFound
}

func (s *fakeIdentityStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Identity, error) {
	return s.GetByID(ctx, id)
}

func (s *fakeIdentityStore) GetByFingerprint(ctx context.Context, fingerprint string) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, identity := range s.identities {
		if identity.KeyFingerprint == fingerprint {
			return identity, nil
		}
	}
	return nil, store.ErrIdentityNotFound
}

func (s *fakeIdentityStore) GetByLogin(ctx context.Context, login string) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, identity := range s.identities {
		if identity.Login == login {
			return identity, nil
		}
	}
	return nil, store.ErrIdentityNotFound
}

func (s *fakeIdentityStore) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, verifiedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.identities[id]
	if !ok {
		return store.ErrIdentityNotFound
	}
	identity.PaymentStatus = status
	identity.LastVerifiedAt = verifiedAt
	return nil
}

func (s *fakeIdentityStore) WithTx(tx store.DBTX) store.IdentityStore { return s }

type fakeRegistrationKeyStore struct {
	mu   sync.Mutex
	keys map[uuid.UUID]*domain.RegistrationKey
}

func newFakeRegistrationKeyStore() *fakeRegistrationKeyStore {
	return &fakeRegistrationKeyStore{keys: make(map[uuid.UUID]*domain.RegistrationKey)}
}

func (s *fakeRegistrationKeyStore) Create(ctx context.Context, key *domain.RegistrationKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key.ID] = key
	return nil
}

func (s *fakeRegistrationKeyStore) GetByFingerprint(ctx context.Context, fingerprint string) (*domain.RegistrationKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range s.keys {
		if key.KeyFingerprint == fingerprint && !key.Consumed() {
			return key, nil
		}
	}
	return nil, store.ErrRegistrationKeyNotFound
}

func (s *fakeRegistrationKeyStore) Consume(ctx context.Context, id uuid.UUID, identityID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, ok := s.keys[id]
	if !ok || key.Consumed() {
		return store.ErrRegistrationKeyNotFound
	}
	now := time.Now().UTC()
	key.ConsumedBy = &identityID
	key.ConsumedAt = &now
	return nil
}

func (s *fakeRegistrationKeyStore) WithTx(tx store.DBTX) store.RegistrationKeyStore { return s }

// fakeVerifier is a payment.Verifier returning a scripted result.
type fakeVerifier struct {
	mu     sync.Mutex
	status domain.PaymentStatus
	err    error
	calls  int
}

func (v *fakeVerifier) Check(ctx context.Context, login string) (domain.PaymentStatus, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	if v.err != nil {
		return "", v.err
	}
	return v.status, nil
}
