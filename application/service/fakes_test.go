package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/codeBunny2022/CentrAlignWebapp/domain/form"
	"github.com/codeBunny2022/CentrAlignWebapp/domain/store"
	"github.com/codeBunny2022/CentrAlignWebapp/domain/task"
	"github.com/codeBunny2022/CentrAlignWebapp/domain/user"
	"github.com/codeBunny2022/CentrAlignWebapp/infrastructure/provider"
	"github.com/codeBunny2022/CentrAlignWebapp/internal/database"
	"github.com/google/uuid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeTaskStore is an in-memory task.TaskStore.
type fakeTaskStore struct {
	mu         sync.Mutex
	tasks      map[int64]task.Task
	byDedup    map[string]int64
	sequence   int64
	saveErr    error
	findErr    error
	deleteErr  error
	dequeueErr error
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{
		tasks:   make(map[int64]task.Task),
		byDedup: make(map[string]int64),
	}
}

func (s *fakeTaskStore) Get(_ context.Context, id int64) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return task.Task{}, fmt.Errorf("%w: task id %d", database.ErrNotFound, id)
	}
	return t, nil
}

func (s *fakeTaskStore) FindPending(_ context.Context, options ...store.Option) ([]task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findErr != nil {
		return nil, s.findErr
	}

	result := s.sorted()
	q := store.Build(options...)
	if offset := q.OffsetValue(); offset > 0 {
		if offset >= len(result) {
			return []task.Task{}, nil
		}
		result = result[offset:]
	}
	if limit := q.LimitValue(); limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (s *fakeTaskStore) Save(_ context.Context, t task.Task) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveErr != nil {
		return task.Task{}, s.saveErr
	}

	now := time.Now()
	if existingID, ok := s.byDedup[t.DedupKey()]; ok {
		existing := s.tasks[existingID]
		updated := task.NewTaskWithID(
			existingID, t.DedupKey(), t.Operation(), t.Priority(), t.Payload(),
			existing.CreatedAt(), now,
		)
		s.tasks[existingID] = updated
		return updated, nil
	}

	s.sequence++
	saved := t.WithID(s.sequence).WithTimestamps(now, now)
	s.tasks[s.sequence] = saved
	s.byDedup[t.DedupKey()] = s.sequence
	return saved, nil
}

func (s *fakeTaskStore) SaveBulk(ctx context.Context, tasks []task.Task) ([]task.Task, error) {
	result := make([]task.Task, len(tasks))
	for i, t := range tasks {
		saved, err := s.Save(ctx, t)
		if err != nil {
			return nil, err
		}
		result[i] = saved
	}
	return result, nil
}

func (s *fakeTaskStore) Delete(_ context.Context, t task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.byDedup, t.DedupKey())
	delete(s.tasks, t.ID())
	return nil
}

func (s *fakeTaskStore) DeleteAll(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = make(map[int64]task.Task)
	s.byDedup = make(map[string]int64)
	return nil
}

func (s *fakeTaskStore) CountPending(_ context.Context, _ ...store.Option) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.tasks)), nil
}

func (s *fakeTaskStore) Dequeue(context.Context) (task.Task, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dequeueErr != nil {
		return task.Task{}, false, s.dequeueErr
	}
	ordered := s.sorted()
	if len(ordered) == 0 {
		return task.Task{}, false, nil
	}

	claimed := ordered[0]
	delete(s.byDedup, claimed.DedupKey())
	delete(s.tasks, claimed.ID())
	return claimed, true, nil
}

// sorted returns tasks by priority descending, then oldest first. Callers
// must hold the mutex.
func (s *fakeTaskStore) sorted() []task.Task {
	result := make([]task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Priority() != result[j].Priority() {
			return result[i].Priority() > result[j].Priority()
		}
		if !result[i].CreatedAt().Equal(result[j].CreatedAt()) {
			return result[i].CreatedAt().Before(result[j].CreatedAt())
		}
		return result[i].ID() < result[j].ID()
	})
	return result
}

// All returns every queued task (test helper).
func (s *fakeTaskStore) All() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		result = append(result, t)
	}
	return result
}

// fakeHandler records executions and returns a configurable result.
type fakeHandler struct {
	mu       sync.Mutex
	Calls    []map[string]any
	ReturnFn func(payload map[string]any) error
}

func newFakeHandler() *fakeHandler {
	return &fakeHandler{Calls: make([]map[string]any, 0)}
}

func (h *fakeHandler) Execute(_ context.Context, payload map[string]any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.Calls = append(h.Calls, payload)
	if h.ReturnFn != nil {
		return h.ReturnFn(payload)
	}
	return nil
}

func (h *fakeHandler) CallCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Calls)
}

func (h *fakeHandler) LastCall() map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.Calls) == 0 {
		return nil
	}
	return h.Calls[len(h.Calls)-1]
}

// fakeEmbedder implements retrieval.Embedder with canned vectors.
type fakeEmbedder struct {
	vectors [][]float64
	err     error
}

func (f fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := make([][]float64, len(texts))
	for i := range texts {
		if i < len(f.vectors) {
			result[i] = f.vectors[i]
		} else if len(f.vectors) > 0 {
			result[i] = f.vectors[0]
		}
	}
	return result, nil
}

func (f fakeEmbedder) Dimension() int {
	if len(f.vectors) > 0 {
		return len(f.vectors[0])
	}
	return 0
}

// fakeCandidateSource implements retrieval.CandidateSource with canned forms.
type fakeCandidateSource struct {
	candidates    []form.Form
	candidatesErr error
	recent        []form.Form
	recentErr     error
	recentCalls   int
}

func (f *fakeCandidateSource) FetchCandidates(_ context.Context, _ uuid.UUID, limit int) ([]form.Form, error) {
	if f.candidatesErr != nil {
		return nil, f.candidatesErr
	}
	if limit > 0 && limit < len(f.candidates) {
		return f.candidates[:limit], nil
	}
	return f.candidates, nil
}

func (f *fakeCandidateSource) RecentForms(_ context.Context, _ uuid.UUID, limit int) ([]form.Form, error) {
	f.recentCalls++
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	if limit > 0 && limit < len(f.recent) {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

// fakeEmbeddingStore implements retrieval.EmbeddingStore in memory.
type fakeEmbeddingStore struct {
	vectors map[int64][]float64
	saveErr error
	hasErr  error
}

func newFakeEmbeddingStore() *fakeEmbeddingStore {
	return &fakeEmbeddingStore{vectors: make(map[int64][]float64)}
}

func (f *fakeEmbeddingStore) Save(_ context.Context, formID int64, vector []float64) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.vectors[formID] = vector
	return nil
}

func (f *fakeEmbeddingStore) Has(_ context.Context, formID int64) (bool, error) {
	if f.hasErr != nil {
		return false, f.hasErr
	}
	_, ok := f.vectors[formID]
	return ok, nil
}

func (f *fakeEmbeddingStore) Delete(_ context.Context, formID int64) error {
	delete(f.vectors, formID)
	return nil
}

// fakeFormStore implements form.FormStore in memory.
type fakeFormStore struct {
	mu       sync.Mutex
	forms    map[uuid.UUID]form.Form
	sequence int64
	saveErr  error
	missing  []form.Form
}

func newFakeFormStore() *fakeFormStore {
	return &fakeFormStore{forms: make(map[uuid.UUID]form.Form)}
}

func (s *fakeFormStore) Save(_ context.Context, f form.Form) (form.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveErr != nil {
		return form.Form{}, s.saveErr
	}
	if f.ID() == 0 {
		s.sequence++
		f = f.WithID(s.sequence)
	}
	s.forms[f.UUID()] = f
	return f, nil
}

func (s *fakeFormStore) Get(_ context.Context, ownerID, formUUID uuid.UUID) (form.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.forms[formUUID]
	if !ok || f.OwnerID() != ownerID {
		return form.Form{}, fmt.Errorf("%w: form %s", database.ErrNotFound, formUUID)
	}
	return f, nil
}

func (s *fakeFormStore) List(_ context.Context, ownerID uuid.UUID, options ...store.Option) ([]form.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := store.Build(options...)
	var category string
	for _, c := range q.Conditions() {
		if c.Field() == "category" {
			category, _ = c.Value().(string)
		}
	}

	result := make([]form.Form, 0, len(s.forms))
	for _, f := range s.forms {
		if f.OwnerID() != ownerID {
			continue
		}
		if category != "" && f.Category().String() != category {
			continue
		}
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt().Equal(result[j].CreatedAt()) {
			return result[i].CreatedAt().After(result[j].CreatedAt())
		}
		return result[i].ID() > result[j].ID()
	})

	if offset := q.OffsetValue(); offset > 0 {
		if offset >= len(result) {
			return []form.Form{}, nil
		}
		result = result[offset:]
	}
	if limit := q.LimitValue(); limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (s *fakeFormStore) Count(_ context.Context, ownerID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, f := range s.forms {
		if f.OwnerID() == ownerID {
			count++
		}
	}
	return count, nil
}

func (s *fakeFormStore) Delete(_ context.Context, f form.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.forms[f.UUID()]; !ok {
		return fmt.Errorf("delete form: %w", database.ErrNotFound)
	}
	delete(s.forms, f.UUID())
	return nil
}

func (s *fakeFormStore) MissingEmbeddings(_ context.Context, limit int) ([]form.Form, error) {
	if limit > 0 && limit < len(s.missing) {
		return s.missing[:limit], nil
	}
	return s.missing, nil
}

// fakeUserStore implements user.UserStore in memory.
type fakeUserStore struct {
	mu       sync.Mutex
	byEmail  map[string]user.User
	sequence int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: make(map[string]user.User)}
}

func (s *fakeUserStore) Save(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID() == 0 {
		s.sequence++
		u = u.WithID(s.sequence)
	}
	s.byEmail[u.Email()] = u
	return u, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byEmail[user.NormalizeEmail(email)]
	if !ok {
		return user.User{}, fmt.Errorf("%w: user", database.ErrNotFound)
	}
	return u, nil
}

func (s *fakeUserStore) GetByUUID(_ context.Context, id uuid.UUID) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.byEmail {
		if u.UUID() == id {
			return u, nil
		}
	}
	return user.User{}, fmt.Errorf("%w: user %s", database.ErrNotFound, id)
}

func (s *fakeUserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.byEmail[user.NormalizeEmail(email)]
	return ok, nil
}

// fakeChat implements provider.TextGenerator with a canned response.
type fakeChat struct {
	response string
	err      error
	calls    int
	lastReq  provider.ChatCompletionRequest
}

func (f *fakeChat) ChatCompletion(_ context.Context, req provider.ChatCompletionRequest) (provider.ChatCompletionResponse, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return provider.ChatCompletionResponse{}, f.err
	}
	return provider.NewChatCompletionResponse(f.response, "stop", provider.NewUsage(0, 0, 0)), nil
}
