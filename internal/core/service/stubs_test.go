package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/tasktrack/tasktrack-api/internal/core/domain"
)

type stubUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User

	updateErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[int64]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) conflicts(u *domain.User) bool {
	for id, other := range r.users {
		if id == u.ID {
			continue
		}
		if other.Username == u.Username ||
			(u.Email != "" && other.Email == u.Email) ||
			(u.Phone != "" && other.Phone == u.Phone) {
			return true
		}
	}
	return false
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflicts(user) {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = r.nextID
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	if _, ok := r.users[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	if r.conflicts(user) {
		return nil, domain.ErrUserExists
	}
	r.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) List(_ context.Context, offset, limit int) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := []*domain.User{}
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		out = append(out, cloneUser(r.users[ids[i]]))
	}
	return out, nil
}

type stubTaskRepo struct {
	nextID int64
	tasks  map[int64]*domain.Task

	createErr error
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{tasks: make(map[int64]*domain.Task)}
}

func cloneTask(t *domain.Task) *domain.Task {
	clone := *t
	return &clone
}

func (r *stubTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	stored := cloneTask(task)
	stored.ID = r.nextID
	r.tasks[stored.ID] = stored
	return cloneTask(stored), nil
}

func (r *stubTaskRepo) FindByID(_ context.Context, id int64) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (r *stubTaskRepo) Update(_ context.Context, task *domain.Task) (*domain.Task, error) {
	if _, ok := r.tasks[task.ID]; !ok {
		return nil, domain.ErrTaskNotFound
	}
	r.tasks[task.ID] = cloneTask(task)
	return cloneTask(task), nil
}

func (r *stubTaskRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *stubTaskRepo) List(_ context.Context) ([]*domain.Task, error) {
	out := make([]*domain.Task, 0, len(r.tasks))
	for id := int64(1); id <= r.nextID; id++ {
		if t, ok := r.tasks[id]; ok {
			out = append(out, cloneTask(t))
		}
	}
	return out, nil
}

type stubFileStore struct {
	saved   map[string][]byte
	saveErr error
	seq     int
}

func newStubFileStore() *stubFileStore {
	return &stubFileStore{saved: make(map[string][]byte)}
}

func (s *stubFileStore) Save(_ context.Context, kind, originalName string, content io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	s.seq++
	path := fmt.Sprintf("/uploads/%ss/%s-%d-%s", kind, kind, s.seq, originalName)
	s.saved[path] = data
	return path, nil
}

func (s *stubFileStore) Remove(_ context.Context, path string) error {
	if _, ok := s.saved[path]; !ok {
		return errors.New("no such file")
	}
	delete(s.saved, path)
	return nil
}

type stubCleanup struct {
	paths []string
}

func (c *stubCleanup) Enqueue(path string) { c.paths = append(c.paths, path) }

// stubThrottle counts failures under "<username>@<clientIP>".
type stubThrottle struct {
	fails      map[string]int
	max        int
	blockedErr error
}

func newStubThrottle(max int) *stubThrottle {
	return &stubThrottle{fails: make(map[string]int), max: max}
}

func throttleKey(username, clientIP string) string { return username + "@" + clientIP }

func (t *stubThrottle) Blocked(_ context.Context, username, clientIP string) (bool, error) {
	if t.blockedErr != nil {
		return false, t.blockedErr
	}
	return t.fails[throttleKey(username, clientIP)] >= t.max, nil
}

func (t *stubThrottle) Fail(_ context.Context, username, clientIP string) error {
	t.fails[throttleKey(username, clientIP)]++
	return nil
}

func (t *stubThrottle) Reset(_ context.Context, username, clientIP string) error {
	delete(t.fails, throttleKey(username, clientIP))
	return nil
}
