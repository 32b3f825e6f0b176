package service

import (
	"context"
	"sync"
	"testing"

	"messenger-be/internal/config"
	"messenger-be/internal/entity"
	"messenger-be/internal/pkg/logger"
	"messenger-be/internal/repository/contract"
	"messenger-be/internal/repository/memory"
	"messenger-be/internal/repository/unitofwork"
	"messenger-be/pkg/events"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type fixture struct {
	store      *memory.Store
	membership IMembershipService
	messages   IMessageService
	publisher  *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	store.AddUser(entity.User{Id: 1, Name: "Alice", Email: "alice@example.com"})
	store.AddUser(entity.User{Id: 2, Name: "Bob", Email: "bob@example.com"})
	store.AddUser(entity.User{Id: 3, Name: "Carol", Email: "carol@example.com"})

	factory := memory.NewRepositoryFactory(store)
	membership := NewMembershipService(factory, 0)
	publisher := &recordingPublisher{}
	messages := NewMessageService(factory, membership, publisher,
		config.HistoryConfig{DefaultLimit: 100, MaxLimit: 500}, logger.NewNopLogger())

	return &fixture{store: store, membership: membership, messages: messages, publisher: publisher}
}

func strPtr(s string) *string { return &s }

// conflictingFactory serves the memory store but makes every message insert
// fail with the given error.
type conflictingFactory struct {
	unitofwork.RepositoryFactory
	createErr error
}

func (f *conflictingFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &conflictingUnitOfWork{UnitOfWork: f.RepositoryFactory.NewUnitOfWork(ctx), createErr: f.createErr}
}

type conflictingUnitOfWork struct {
	unitofwork.UnitOfWork
	createErr error
}

func (u *conflictingUnitOfWork) MessageRepository() contract.MessageRepository {
	return &conflictingMessageRepository{MessageRepository: u.UnitOfWork.MessageRepository(), createErr: u.createErr}
}

type conflictingMessageRepository struct {
	contract.MessageRepository
	createErr error
}

func (r *conflictingMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	return r.createErr
}
