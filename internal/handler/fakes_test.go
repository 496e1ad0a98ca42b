package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tradepost/tradepost/internal/model"
	"github.com/tradepost/tradepost/internal/repository"
	"github.com/tradepost/tradepost/internal/service"
	"github.com/tradepost/tradepost/internal/session"
)

const testCookieName = "tradepost_session"

// memUserStore is an in-memory service.UserStore.
type memUserStore struct {
	users  map[int]*model.User
	nextID int
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[int]*model.User), nextID: 1}
}

func (s *memUserStore) CreateUser(ctx context.Context, params repository.CreateUserParams) (*model.User, error) {
	for _, u := range s.users {
		if u.Email == params.Email {
			return nil, repository.ErrEmailExists
		}
	}
	user := &model.User{
		ID:             s.nextID,
		Email:          params.Email,
		PasswordHash:   params.PasswordHash,
		Name:           params.Name,
		PinCode:        params.PinCode,
		ProfilePicture: params.ProfilePicture,
		CreatedAt:      time.Now(),
	}
	s.users[user.ID] = user
	s.nextID++
	return user, nil
}

func (s *memUserStore) GetUserByID(ctx context.Context, id int) (*model.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (s *memUserStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memUserStore) UpdateProfilePicture(ctx context.Context, userID int, pictureURL string) (*model.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	user.ProfilePicture = &pictureURL
	return user, nil
}

// memPostStore is an in-memory service.PostStore that mirrors the SQL
// layer's join and ordering behavior.
type memPostStore struct {
	users  *memUserStore
	posts  map[int]model.Post
	nextID int
}

func newMemPostStore(users *memUserStore) *memPostStore {
	return &memPostStore{users: users, posts: make(map[int]model.Post), nextID: 1}
}

func (s *memPostStore) row(p model.Post) model.PostRow {
	row := model.PostRow{
		ID:          p.ID,
		Description: p.Description,
		Categories:  p.Categories,
		UserID:      p.UserID,
		PostType:    p.PostType.Tag(),
		PinCode:     p.PinCode,
	}
	if owner, ok := s.users.users[p.UserID]; ok {
		row.UserName = owner.Name
		row.ProfilePicture = owner.ProfilePicture
	}
	return row
}

func (s *memPostStore) collect(pred func(model.Post) bool, ascending bool) []model.PostRow {
	var ids []int
	for id, p := range s.posts {
		if pred(p) {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	if !ascending {
		for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
			ids[i], ids[j] = ids[j], ids[i]
		}
	}
	rows := make([]model.PostRow, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, s.row(s.posts[id]))
	}
	return rows
}

func (s *memPostStore) ListPostsByOwner(ctx context.Context, userID int) ([]model.PostRow, error) {
	return s.collect(func(p model.Post) bool { return p.UserID == userID }, false), nil
}

func (s *memPostStore) ListPostsByOwnerAndType(ctx context.Context, userID int, postType string) ([]model.PostRow, error) {
	return s.collect(func(p model.Post) bool {
		return p.UserID == userID && p.PostType.Tag() == postType
	}, true), nil
}

func (s *memPostStore) ListPostsByUser(ctx context.Context, targetUserID int) ([]model.PostRow, error) {
	return s.collect(func(p model.Post) bool { return p.UserID == targetUserID }, false), nil
}

func (s *memPostStore) ListCommunityPosts(ctx context.Context) ([]model.PostRow, error) {
	return s.collect(func(p model.Post) bool { return true }, false), nil
}

func (s *memPostStore) ListCommunityPostsByType(ctx context.Context, postType string) ([]model.PostRow, error) {
	return s.collect(func(p model.Post) bool { return p.PostType.Tag() == postType }, false), nil
}

func (s *memPostStore) CreatePost(ctx context.Context, params repository.CreatePostParams) (model.PostRow, error) {
	post := model.Post{
		ID:          s.nextID,
		Description: params.Description,
		Categories:  params.Categories,
		UserID:      params.UserID,
		PostType:    model.PostType(params.PostType),
		PinCode:     params.PinCode,
	}
	s.posts[post.ID] = post
	s.nextID++
	return model.PostRow{
		ID:          post.ID,
		Description: post.Description,
		Categories:  post.Categories,
		UserID:      post.UserID,
		PostType:    post.PostType.Tag(),
		PinCode:     post.PinCode,
	}, nil
}

func (s *memPostStore) UpdatePost(ctx context.Context, post model.Post, ownerID int) error {
	existing, ok := s.posts[post.ID]
	if !ok || existing.UserID != ownerID {
		return repository.ErrPostNotFound
	}
	post.UserID = ownerID
	s.posts[post.ID] = post
	return nil
}

func (s *memPostStore) DeletePost(ctx context.Context, postID, ownerID int) error {
	existing, ok := s.posts[postID]
	if !ok || existing.UserID != ownerID {
		return repository.ErrPostNotFound
	}
	delete(s.posts, postID)
	return nil
}

// memUploader is an in-memory service.Uploader.
type memUploader struct {
	uploads map[string]string
}

func newMemUploader() *memUploader {
	return &memUploader{uploads: make(map[string]string)}
}

func (u *memUploader) Upload(ctx context.Context, data, publicID string) (string, error) {
	url := "https://img.test/" + publicID
	u.uploads[publicID] = data
	return url, nil
}

// memSessionStore is an in-memory session.Store.
type memSessionStore struct {
	sessions map[string]int
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]int)}
}

func (s *memSessionStore) GetSessionUserID(ctx context.Context, token string) (int, error) {
	userID, ok := s.sessions[token]
	if !ok {
		return 0, session.ErrUnauthenticated
	}
	return userID, nil
}

func (s *memSessionStore) SetSessionUserID(ctx context.Context, token string, userID int, ttl time.Duration) error {
	s.sessions[token] = userID
	return nil
}

func (s *memSessionStore) DeleteSession(ctx context.Context, token string) error {
	delete(s.sessions, token)
	return nil
}

// testEnv wires handlers against in-memory stores.
type testEnv struct {
	auth     *AuthHandler
	posts    *PostHandler
	users    *memUserStore
	postRows *memPostStore
	sessions *memSessionStore
	uploader *memUploader
	manager  *session.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := newMemUserStore()
	postStore := newMemPostStore(users)
	uploader := newMemUploader()
	sessionStore := newMemSessionStore()

	manager := session.NewManager(sessionStore, testCookieName, time.Hour, false)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	accounts := service.NewAccountService(users, uploader, bcrypt.MinCost, nil)
	posts := service.NewPostService(postStore, users, nil)

	return &testEnv{
		auth:     NewAuthHandler(accounts, manager, logger),
		posts:    NewPostHandler(posts, manager, logger),
		users:    users,
		postRows: postStore,
		sessions: sessionStore,
		uploader: uploader,
		manager:  manager,
	}
}

// issueSession creates a user and hands back a logged-in cookie.
func (e *testEnv) issueSession(t *testing.T, email string) (*model.User, *http.Cookie) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	name := "Tester"
	user, err := e.users.CreateUser(context.Background(), repository.CreateUserParams{
		Email:        email,
		PasswordHash: string(hash),
		Name:         &name,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	token := fmt.Sprintf("token-%d", user.ID)
	e.sessions.sessions[token] = user.ID

	return user, &http.Cookie{Name: testCookieName, Value: token}
}
