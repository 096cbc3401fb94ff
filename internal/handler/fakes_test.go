package handler

import (
	"context"
	"sync"

	"github.com/dineshkumaran1996/library-api/internal/model"
	"github.com/dineshkumaran1996/library-api/internal/queue"
	"github.com/dineshkumaran1996/library-api/internal/repository"
	"github.com/dineshkumaran1996/library-api/internal/utils"
)

// fakeUserStore implements UserStore (and the middleware resolver) in
// memory with the same uniqueness and hashing behavior as the SQL repo.
type fakeUserStore struct {
	mu    sync.Mutex
	seq   uint64
	users map[string]model.User // keyed by username
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]model.User{}}
}

func (s *fakeUserStore) Create(_ context.Context, username, email, password, role string, cost int) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; ok {
		return 0, repository.ErrUsernameExists
	}
	for _, u := range s.users {
		if u.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	s.seq++
	s.users[username] = model.User{
		ID:           s.seq,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	return s.seq, nil
}

func (s *fakeUserStore) GetByUsername(_ context.Context, username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

// fakeBookStore implements BookStore in memory, preserving the borrow
// and return semantics of the SQL repo, including the count floor.
type fakeBookStore struct {
	mu    sync.Mutex
	seq   uint64
	books map[uint64]model.Book
}

func newFakeBookStore() *fakeBookStore {
	return &fakeBookStore{books: map[uint64]model.Book{}}
}

func (s *fakeBookStore) Create(_ context.Context, title, description, author string, count int64) (model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	b := model.Book{ID: s.seq, Title: title, Description: description, Author: author, Count: count}
	s.books[b.ID] = b
	return b, nil
}

func (s *fakeBookStore) List(_ context.Context) ([]model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Book, 0, len(s.books))
	for id := uint64(1); id <= s.seq; id++ {
		if b, ok := s.books[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeBookStore) GetByID(_ context.Context, id uint64) (model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		return model.Book{}, repository.ErrBookNotFound
	}
	return b, nil
}

func (s *fakeBookStore) Update(_ context.Context, id uint64, title, description, author string, count int64) (model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		return model.Book{}, repository.ErrBookNotFound
	}
	b.Title, b.Description, b.Author, b.Count = title, description, author, count
	s.books[id] = b
	return b, nil
}

func (s *fakeBookStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.books[id]; !ok {
		return repository.ErrBookNotFound
	}
	delete(s.books, id)
	return nil
}

func (s *fakeBookStore) ListByBorrower(_ context.Context, userID uint64) ([]model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Book, 0)
	for id := uint64(1); id <= s.seq; id++ {
		if b, ok := s.books[id]; ok && b.BorrowerID != nil && *b.BorrowerID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeBookStore) Borrow(_ context.Context, bookID uint64, requester model.User) (model.Book, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[bookID]
	if !ok {
		return model.Book{}, 0, repository.ErrBookNotFound
	}
	if b.Count <= 0 {
		return model.Book{}, 0, repository.ErrBookUnavailable
	}
	b.Count--
	uid := requester.ID
	b.BorrowerID = &uid
	s.books[bookID] = b
	var held int64
	for _, bk := range s.books {
		if bk.BorrowerID != nil && *bk.BorrowerID == requester.ID {
			held++
		}
	}
	return b, held, nil
}

func (s *fakeBookStore) Return(_ context.Context, bookID uint64, _ model.User) (model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[bookID]
	if !ok {
		return model.Book{}, repository.ErrBookNotFound
	}
	b.Count++
	b.BorrowerID = nil
	s.books[bookID] = b
	return b, nil
}

// fakeLoanStore records the filter it was called with and returns a
// canned result, so tests can assert what the handler asked for.
type fakeLoanStore struct {
	lastFilter repository.LoanFilter
	result     []model.Loan
}

func (s *fakeLoanStore) Search(_ context.Context, f repository.LoanFilter) ([]model.Loan, error) {
	s.lastFilter = f
	return s.result, nil
}

// capturedEvents collects loan events a handler publishes.
type capturedEvents struct {
	mu     sync.Mutex
	events []queue.LoanEvent
}

func (p *capturedEvents) publish(_ context.Context, ev queue.LoanEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}
