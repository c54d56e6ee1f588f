package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meublog/blog-api/internal/application"
	"github.com/meublog/blog-api/internal/domain/entity"
	"github.com/meublog/blog-api/internal/domain/repository"
	"github.com/meublog/blog-api/internal/interface/middleware"
	"github.com/meublog/blog-api/pkg/helpers"
	"github.com/meublog/blog-api/pkg/validation"
)

// ---- in-memory repositories -------------------------------------------------

type stubUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*entity.User
}

func newStubUserRepo() *stubUserRepo { return &stubUserRepo{users: map[string]*entity.User{}} }

func (r *stubUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.users {
		if e.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	r.seq++
	u.ID = "user-" + strconv.Itoa(r.seq)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = hash
	return nil
}

type stubArticleRepo struct {
	mu       sync.Mutex
	seq      int
	articles map[string]*entity.Article
	users    *stubUserRepo
}

func newStubArticleRepo(users *stubUserRepo) *stubArticleRepo {
	return &stubArticleRepo{articles: map[string]*entity.Article{}, users: users}
}

func (r *stubArticleRepo) Create(_ context.Context, a *entity.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	a.ID = "article-" + strconv.Itoa(r.seq)
	a.PublishedAt = time.Now()
	a.UpdatedAt = a.PublishedAt
	cp := *a
	r.articles[a.ID] = &cp
	return nil
}

func (r *stubArticleRepo) GetByID(_ context.Context, id string) (*entity.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.articles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *stubArticleRepo) List(_ context.Context) ([]entity.ArticleSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.ArticleSummary, 0, len(r.articles))
	for _, a := range r.articles {
		name := ""
		if u, ok := r.users.users[a.AuthorID]; ok {
			name = u.Name
		}
		out = append(out, entity.ArticleSummary{
			ID:           a.ID,
			Title:        a.Title,
			AuthorID:     a.AuthorID,
			AuthorName:   name,
			Thumbnail:    a.Thumbnail,
			ThumbnailURL: a.ThumbnailURL,
			PublishedAt:  a.PublishedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
	return out, nil
}

func (r *stubArticleRepo) Update(_ context.Context, a *entity.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.articles[a.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *a
	r.articles[a.ID] = &cp
	return nil
}

func (r *stubArticleRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.articles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.articles, id)
	return nil
}

type stubTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*entity.PasswordResetToken
}

func newStubTokenRepo() *stubTokenRepo {
	return &stubTokenRepo{tokens: map[string]*entity.PasswordResetToken{}}
}

func (r *stubTokenRepo) Create(_ context.Context, t *entity.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.tokens[t.Token] = &cp
	return nil
}

func (r *stubTokenRepo) GetByToken(_ context.Context, token string) (*entity.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *stubTokenRepo) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[token]; !ok {
		return repository.ErrNotFound
	}
	delete(r.tokens, token)
	return nil
}

func (r *stubTokenRepo) DeleteByUserID(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, k)
		}
	}
	return nil
}

// ---- test server ------------------------------------------------------------

type testServer struct {
	router *gin.Engine
	users  *stubUserRepo
	tokens *stubTokenRepo
}

var initOnce sync.Once

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	initOnce.Do(func() {
		gin.SetMode(gin.TestMode)
		validation.Init()
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	users := newStubUserRepo()
	articles := newStubArticleRepo(users)
	tokens := newStubTokenRepo()
	jwt := helpers.NewJWTManager("test-secret", time.Hour)

	userSvc := application.NewUserService(users, jwt, logger)
	authSvc := application.NewAuthService(users, tokens, nil, logger, "https://example.com/reset", time.Hour, false)
	articleSvc := application.NewArticleService(articles, users, nil, "", nil, "", logger)

	uh := NewUserHandler(userSvc, logger)
	ah := NewAuthHandler(authSvc, logger)
	arh := NewArticleHandler(articleSvc, logger)

	r := gin.New()
	api := r.Group("/api")

	u := api.Group("/users")
	u.POST("/register", uh.Register)
	u.POST("/login", uh.Login)
	u.POST("/auth/forgot-password", ah.ForgotPassword)
	u.POST("/auth/reset-password", ah.ResetPassword)
	profile := u.Group("", middleware.Auth(jwt))
	profile.GET("/profile", uh.GetProfile)
	profile.PATCH("/profile", uh.UpdateProfile)

	a := api.Group("/articles")
	a.GET("", arh.List)
	a.GET("/:id", arh.Get)
	protected := a.Group("", middleware.Auth(jwt))
	protected.POST("", arh.Create)
	protected.PUT("/:id", arh.Update)
	protected.DELETE("/:id", arh.Delete)

	return &testServer{router: r, users: users, tokens: tokens}
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	contentType := ""
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
		contentType = "application/json"
	}
	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func (s *testServer) register(t *testing.T, name, email, password string) {
	t.Helper()
	w, _ := s.do(t, http.MethodPost, "/api/users/register", "", gin.H{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code)
}

func (s *testServer) login(t *testing.T, email, password string) (token, userID string) {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/api/users/login", "", gin.H{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token, data.User.ID
}

// ---- tests ------------------------------------------------------------------

func TestRegisterLoginCreateAndGetArticle(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Alice", "alice@example.com", "Senha123!")
	token, userID := s.login(t, "alice@example.com", "Senha123!")

	w, env := s.do(t, http.MethodPost, "/api/articles", token, gin.H{
		"title": "Hello", "content": "World",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ID)

	w, env = s.do(t, http.MethodGet, "/api/articles/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var detail struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Author  struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"author"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "Hello", detail.Title)
	assert.Equal(t, "World", detail.Content)
	assert.Equal(t, userID, detail.Author.ID)
	assert.Equal(t, "Alice", detail.Author.Name)
}

func TestUpdateArticleByNonOwnerForbidden(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Alice", "alice@example.com", "Senha123!")
	s.register(t, "Bob", "bob@example.com", "Senha123!")
	aliceToken, _ := s.login(t, "alice@example.com", "Senha123!")
	bobToken, _ := s.login(t, "bob@example.com", "Senha123!")

	_, env := s.do(t, http.MethodPost, "/api/articles", aliceToken, gin.H{
		"title": "Mine", "content": "Body",
	})
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	w, _ := s.do(t, http.MethodPut, "/api/articles/"+created.ID, bobToken, gin.H{
		"title": "Stolen", "content": "Body",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, http.MethodDelete, "/api/articles/"+created.ID, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Still intact and readable.
	w, env = s.do(t, http.MethodGet, "/api/articles/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "Mine", detail.Title)
}

func TestCreateArticleWithoutToken(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodPost, "/api/articles", "", gin.H{
		"title": "t", "content": "c",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateArticleWithGarbageToken(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodPost, "/api/articles", "not.a.token", gin.H{
		"title": "t", "content": "c",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateArticleMultipartWithImage(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Alice", "alice@example.com", "Senha123!")
	token, _ := s.login(t, "alice@example.com", "Senha123!")

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 64, 48))))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "With image"))
	require.NoError(t, mw.WriteField("content", "Body"))
	fw, err := mw.CreateFormFile("image", "cover.png")
	require.NoError(t, err)
	_, err = fw.Write(img.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/articles", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var created struct {
		ID        string `json:"id"`
		Thumbnail string `json:"thumbnail"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.True(t, strings.HasPrefix(created.Thumbnail, "data:image/jpeg;base64,"))

	// The list view carries the thumbnail reference, never the full image.
	_, env = s.do(t, http.MethodGet, "/api/articles", "", nil)
	var list []struct {
		ID        string `json:"id"`
		Thumbnail string `json:"thumbnail"`
		Image     string `json:"image"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.True(t, strings.HasPrefix(list[0].Thumbnail, "data:image/jpeg;base64,"))
	assert.Empty(t, list[0].Image)
}

func TestCreateArticleBadImagePayload(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Alice", "alice@example.com", "Senha123!")
	token, _ := s.login(t, "alice@example.com", "Senha123!")

	// Valid base64, but not a decodable image.
	w, _ := s.do(t, http.MethodPost, "/api/articles", token, gin.H{
		"title": "t", "content": "c", "image": "bm90IGFuIGltYWdl",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMissingArticle(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodGet, "/api/articles/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Alice", "alice@example.com", "Senha123!")

	w, env := s.do(t, http.MethodPost, "/api/users/login", "", gin.H{
		"email": "alice@example.com", "password": "wrongpass",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
}

func TestRegisterShortPassword(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodPost, "/api/users/register", "", gin.H{
		"name": "Alice", "email": "alice@example.com", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Alice", "alice@example.com", "Senha123!")

	w, env := s.do(t, http.MethodPost, "/api/users/register", "", gin.H{
		"name": "Clone", "email": "alice@example.com", "password": "Senha123!",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email already registered", env.Message)
}

func TestProfileRoundTrip(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Alice", "alice@example.com", "Senha123!")
	token, userID := s.login(t, "alice@example.com", "Senha123!")

	w, env := s.do(t, http.MethodGet, "/api/users/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, userID, profile.ID)
	assert.Equal(t, "Alice", profile.Name)

	w, env = s.do(t, http.MethodPatch, "/api/users/profile", token, gin.H{"name": "Alicia"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "Alicia", profile.Name)
	assert.Equal(t, "alice@example.com", profile.Email)
}

func TestForgotPasswordUnknownEmailGenericAck(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/api/users/auth/forgot-password", "", gin.H{
		"email": "nobody@example.com",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Empty(t, s.tokens.tokens)
}

func TestPasswordResetFlow(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Alice", "alice@example.com", "Senha123!")

	w, _ := s.do(t, http.MethodPost, "/api/users/auth/forgot-password", "", gin.H{
		"email": "alice@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, s.tokens.tokens, 1)

	var token string
	for k := range s.tokens.tokens {
		token = k
	}

	w, _ = s.do(t, http.MethodPost, "/api/users/auth/reset-password", "", gin.H{
		"token": token, "new_password": "NovaSenha456!",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Old password no longer works, the new one does.
	w, _ = s.do(t, http.MethodPost, "/api/users/login", "", gin.H{
		"email": "alice@example.com", "password": "Senha123!",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	s.login(t, "alice@example.com", "NovaSenha456!")

	// The token is single use.
	w, _ = s.do(t, http.MethodPost, "/api/users/auth/reset-password", "", gin.H{
		"token": token, "new_password": "OutraSenha789!",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

var (
	_ repository.UserRepository               = (*stubUserRepo)(nil)
	_ repository.ArticleRepository            = (*stubArticleRepo)(nil)
	_ repository.PasswordResetTokenRepository = (*stubTokenRepo)(nil)
)
