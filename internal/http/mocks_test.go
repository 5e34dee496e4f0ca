package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"blog-api/internal/domain"
	"blog-api/internal/repository"
	"blog-api/internal/service"
)

type mockAccountRepo struct {
	mu      sync.Mutex
	byID    map[string]domain.Account
	byEmail map[string]string
	err     error
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{
		byID:    make(map[string]domain.Account),
		byEmail: make(map[string]string),
	}
}

func (m *mockAccountRepo) put(a domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[a.ID] = a
	m.byEmail[a.Email] = a.ID
}

func (m *mockAccountRepo) FindByEmailOrProviderLink(_ context.Context, email, provider, providerID string) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.Account{}, m.err
	}
	if id, ok := m.byEmail[email]; ok {
		return m.byID[id], nil
	}
	for _, a := range m.byID {
		if a.HasLink(provider, providerID) {
			return a, nil
		}
	}
	return domain.Account{}, pgx.ErrNoRows
}

func (m *mockAccountRepo) Create(_ context.Context, a domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byEmail[a.Email]; ok {
		return repository.ErrDuplicateAccount
	}
	m.byID[a.ID] = a
	m.byEmail[a.Email] = a.ID
	return nil
}

func (m *mockAccountRepo) Update(_ context.Context, a domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	existing, ok := m.byID[a.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	a.IsVerified = a.IsVerified || existing.IsVerified
	m.byID[a.ID] = a
	return nil
}

func (m *mockAccountRepo) LinkAndVerify(_ context.Context, id string, link domain.ProviderLink, at time.Time) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.Account{}, m.err
	}
	a, ok := m.byID[id]
	if !ok {
		return domain.Account{}, pgx.ErrNoRows
	}
	a.ProviderLinks = append([]domain.ProviderLink(nil), a.ProviderLinks...)
	if _, linked := a.LinkFor(link.Provider); !linked {
		a.ProviderLinks = append(a.ProviderLinks, link)
	}
	a.IsVerified = true
	a.UpdatedAt = at
	m.byID[id] = a
	return a, nil
}

func (m *mockAccountRepo) GetByID(_ context.Context, id string) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.Account{}, m.err
	}
	a, ok := m.byID[id]
	if !ok {
		return domain.Account{}, pgx.ErrNoRows
	}
	return a, nil
}

func (m *mockAccountRepo) List(_ context.Context, q domain.PageQuery) ([]domain.Account, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	q = q.Normalize()
	var matched []domain.Account
	search := strings.ToLower(q.Search)
	for _, a := range m.byID {
		if search == "" || strings.Contains(strings.ToLower(a.Email), search) || strings.Contains(strings.ToLower(a.FullName), search) {
			matched = append(matched, a)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Email < matched[j].Email })
	total := len(matched)
	start := q.Offset()
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (m *mockAccountRepo) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID), m.err
}

func (m *mockAccountRepo) CountByRole(_ context.Context, role domain.Role) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.byID {
		if a.Role == role {
			n++
		}
	}
	return n, m.err
}

func (m *mockAccountRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	a, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(m.byID, id)
	delete(m.byEmail, a.Email)
	return nil
}

type mockBlogRepo struct {
	mu   sync.Mutex
	byID map[string]domain.Blog
	err  error
}

func newMockBlogRepo() *mockBlogRepo {
	return &mockBlogRepo{byID: make(map[string]domain.Blog)}
}

func (m *mockBlogRepo) slugTaken(slug, exceptID string) bool {
	for _, b := range m.byID {
		if b.Slug == slug && b.ID != exceptID {
			return true
		}
	}
	return false
}

func (m *mockBlogRepo) Create(_ context.Context, b domain.Blog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.slugTaken(b.Slug, "") {
		return repository.ErrDuplicateSlug
	}
	m.byID[b.ID] = b
	return nil
}

func (m *mockBlogRepo) Update(_ context.Context, b domain.Blog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byID[b.ID]; !ok {
		return pgx.ErrNoRows
	}
	if m.slugTaken(b.Slug, b.ID) {
		return repository.ErrDuplicateSlug
	}
	m.byID[b.ID] = b
	return nil
}

func (m *mockBlogRepo) GetByID(_ context.Context, id string) (domain.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.byID[id]
	if !ok {
		return domain.Blog{}, pgx.ErrNoRows
	}
	return b, nil
}

func (m *mockBlogRepo) GetBySlug(_ context.Context, slug string) (domain.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.byID {
		if b.Slug == slug {
			return b, nil
		}
	}
	return domain.Blog{}, pgx.ErrNoRows
}

func (m *mockBlogRepo) List(_ context.Context, q domain.PageQuery) ([]domain.Blog, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	q = q.Normalize()
	var matched []domain.Blog
	search := strings.ToLower(q.Search)
	for _, b := range m.byID {
		if search == "" || strings.Contains(strings.ToLower(b.Title), search) || strings.Contains(strings.ToLower(b.AuthorName), search) {
			matched = append(matched, b)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Slug < matched[j].Slug })
	total := len(matched)
	start := q.Offset()
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (m *mockBlogRepo) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID), m.err
}

func (m *mockBlogRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.byID, id)
	return nil
}

type testServer struct {
	router   *gin.Engine
	tokens   *service.TokenService
	accounts *mockAccountRepo
	blogs    *mockBlogRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens, err := service.NewTokenService("secret", "blog-api")
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	accounts := newMockAccountRepo()
	blogs := newMockBlogRepo()
	logger := zap.NewNop()
	resolver := service.NewIdentityResolver(logger, accounts)
	router := NewRouter(logger, RouterOptions{}, tokens,
		NewAuthHandler(logger, resolver, tokens),
		NewUserHandler(logger, accounts),
		NewBlogHandler(logger, blogs),
	)
	return &testServer{router: router, tokens: tokens, accounts: accounts, blogs: blogs}
}

func (s *testServer) token(t *testing.T, accountID string, role domain.Role) string {
	t.Helper()
	token, err := s.tokens.Mint(accountID, role)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return token
}

func performRequest(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}
