package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/tradepost/tradepost/internal/model"
	"github.com/tradepost/tradepost/internal/repository"
)

// fakeUserStore is an in-memory UserStore.
type fakeUserStore struct {
	users  map[int]*model.User
	nextID int
	err    error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int]*model.User), nextID: 1}
}

func (f *fakeUserStore) CreateUser(ctx context.Context, params repository.CreateUserParams) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Email == params.Email {
			return nil, repository.ErrEmailExists
		}
	}
	user := &model.User{
		ID:             f.nextID,
		Email:          params.Email,
		PasswordHash:   params.PasswordHash,
		Name:           params.Name,
		PinCode:        params.PinCode,
		ProfilePicture: params.ProfilePicture,
		CreatedAt:      time.Now().UTC(),
	}
	f.users[user.ID] = user
	f.nextID++
	return user, nil
}

func (f *fakeUserStore) GetUserByID(ctx context.Context, id int) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserStore) UpdateProfilePicture(ctx context.Context, userID int, pictureURL string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	user.ProfilePicture = &pictureURL
	return user, nil
}

// fakePostStore is an in-memory PostStore mirroring the repository's
// ordering and ownership semantics.
type fakePostStore struct {
	rows   map[int]model.PostRow
	owners *fakeUserStore
	nextID int
	err    error

	createCalls int
}

func newFakePostStore(owners *fakeUserStore) *fakePostStore {
	return &fakePostStore{rows: make(map[int]model.PostRow), owners: owners, nextID: 1}
}

// joined attaches owner display fields like the repository's LEFT JOIN.
func (f *fakePostStore) joined(row model.PostRow) model.PostRow {
	if f.owners != nil {
		if owner, ok := f.owners.users[row.UserID]; ok {
			row.UserName = owner.Name
			row.ProfilePicture = owner.ProfilePicture
		}
	}
	return row
}

func (f *fakePostStore) list(filter func(model.PostRow) bool, ascending bool) []model.PostRow {
	var result []model.PostRow
	for _, row := range f.rows {
		if filter(row) {
			result = append(result, f.joined(row))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if ascending {
			return result[i].ID < result[j].ID
		}
		return result[i].ID > result[j].ID
	})
	return result
}

func (f *fakePostStore) ListPostsByOwner(ctx context.Context, userID int) ([]model.PostRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.list(func(r model.PostRow) bool { return r.UserID == userID }, false), nil
}

func (f *fakePostStore) ListPostsByOwnerAndType(ctx context.Context, userID int, postType string) ([]model.PostRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.list(func(r model.PostRow) bool { return r.UserID == userID && r.PostType == postType }, true), nil
}

func (f *fakePostStore) ListPostsByUser(ctx context.Context, targetUserID int) ([]model.PostRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.list(func(r model.PostRow) bool { return r.UserID == targetUserID }, false), nil
}

func (f *fakePostStore) ListCommunityPosts(ctx context.Context) ([]model.PostRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.list(func(model.PostRow) bool { return true }, false), nil
}

func (f *fakePostStore) ListCommunityPostsByType(ctx context.Context, postType string) ([]model.PostRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.list(func(r model.PostRow) bool { return r.PostType == postType }, false), nil
}

func (f *fakePostStore) CreatePost(ctx context.Context, params repository.CreatePostParams) (model.PostRow, error) {
	f.createCalls++
	if f.err != nil {
		return model.PostRow{}, f.err
	}
	row := model.PostRow{
		ID:          f.nextID,
		Description: params.Description,
		Categories:  params.Categories,
		UserID:      params.UserID,
		PostType:    params.PostType,
		PinCode:     params.PinCode,
	}
	f.rows[row.ID] = row
	f.nextID++
	return row, nil
}

func (f *fakePostStore) UpdatePost(ctx context.Context, post model.Post, ownerID int) error {
	if f.err != nil {
		return f.err
	}
	row, ok := f.rows[post.ID]
	if !ok || row.UserID != ownerID {
		return repository.ErrPostNotFound
	}
	row.Description = post.Description
	row.Categories = post.Categories
	row.PostType = post.PostType.Tag()
	row.PinCode = post.PinCode
	f.rows[post.ID] = row
	return nil
}

func (f *fakePostStore) DeletePost(ctx context.Context, postID, ownerID int) error {
	if f.err != nil {
		return f.err
	}
	row, ok := f.rows[postID]
	if !ok || row.UserID != ownerID {
		return repository.ErrPostNotFound
	}
	delete(f.rows, postID)
	return nil
}

// fakeUploader records uploads and can be told to fail.
type fakeUploader struct {
	uploads map[string]string // publicID -> data
	hosted  string
	err     error
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploads: make(map[string]string), hosted: "https://img.example.com/p.png"}
}

func (f *fakeUploader) Upload(ctx context.Context, data, publicID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploads[publicID] = data
	return f.hosted, nil
}

var errStoreDown = errors.New("store down")
