// Package memory is a process-local Datastore. It backs STORE_DRIVER=memory and
// the service tests, and enforces the same uniqueness rule as the postgres schema.
package memory

import (
	"context"
	"sync"
	"time"

	"messenger-be/internal/entity"
	"messenger-be/internal/repository/contract"
	"messenger-be/internal/repository/unitofwork"
)

type chatRow struct {
	chat    entity.Chat
	members []int64
}

type Store struct {
	mu sync.RWMutex

	users    map[int64]entity.User
	chats    map[int64]*chatRow
	groups   map[int64][]int64
	messages []*entity.Message
	events   []*entity.ChatEvent

	nextChatId    int64
	nextMessageId int64
	nextEventId   int64

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:  make(map[int64]entity.User),
		chats:  make(map[int64]*chatRow),
		groups: make(map[int64][]int64),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the timestamp source. Tests use it to force ties and reorderings.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) AddUser(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.Id] = u
}

// AddChat stores a chat with the given members and returns its id.
func (s *Store) AddChat(chatType string, name *string, memberIds ...int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertChat(chatType, name, memberIds)
}

func (s *Store) insertChat(chatType string, name *string, memberIds []int64) int64 {
	s.nextChatId++
	id := s.nextChatId
	s.chats[id] = &chatRow{
		chat:    entity.Chat{Id: id, Name: name, Type: chatType},
		members: append([]int64(nil), memberIds...),
	}
	return id
}

// AddMember appends a participant to an existing chat.
func (s *Store) AddMember(chatId, userId int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.chats[chatId]; ok {
		row.members = append(row.members, userId)
	}
}

// Events returns a copy of the journal.
func (s *Store) Events() []entity.ChatEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.ChatEvent, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, *e)
	}
	return out
}

// SeedDemo loads two users sharing a personal chat, for local runs without postgres.
func SeedDemo(s *Store) {
	s.AddUser(entity.User{Id: 1, Name: "Alice", Email: "alice@example.com"})
	s.AddUser(entity.User{Id: 2, Name: "Bob", Email: "bob@example.com"})
	s.AddChat(entity.ChatTypePersonal, nil, 1, 2)
}

// Unit of work

type repositoryFactory struct {
	store *Store
}

func NewRepositoryFactory(store *Store) unitofwork.RepositoryFactory {
	return &repositoryFactory{store: store}
}

func (f *repositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{store: f.store}
}

// unitOfWork is not transactional: every repository call is atomic on its own.
type unitOfWork struct {
	store *Store
}

func (u *unitOfWork) Begin(ctx context.Context) error { return nil }
func (u *unitOfWork) Commit() error                   { return nil }
func (u *unitOfWork) Rollback() error                 { return nil }

func (u *unitOfWork) UserRepository() contract.UserRepository {
	return &userRepository{store: u.store}
}

func (u *unitOfWork) ChatRepository() contract.ChatRepository {
	return &chatRepository{store: u.store}
}

func (u *unitOfWork) MessageRepository() contract.MessageRepository {
	return &messageRepository{store: u.store}
}

func (u *unitOfWork) ChatEventRepository() contract.ChatEventRepository {
	return &chatEventRepository{store: u.store}
}
