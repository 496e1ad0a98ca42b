package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tradepost/tradepost/internal/metrics"
	"github.com/tradepost/tradepost/internal/model"
	"github.com/tradepost/tradepost/internal/repository"
)

// Service errors.
var (
	ErrPostNotFound      = errors.New("post not found")
	ErrInvalidCategories = errors.New("invalid categories format")
	ErrInvalidPostType   = errors.New("invalid post type")
)

// PostService handles post access: listing, creation, update, deletion.
// Callers pass the identity resolved for the current request; scoping
// and ownership rules are applied here and in the repository.
type PostService struct {
	posts   PostStore
	users   UserStore
	metrics metrics.Recorder
}

// NewPostService creates a new PostService.
func NewPostService(posts PostStore, users UserStore, recorder metrics.Recorder) *PostService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &PostService{
		posts:   posts,
		users:   users,
		metrics: recorder,
	}
}

// ListMine returns the caller's posts, most recent first.
func (s *PostService) ListMine(ctx context.Context, userID int) ([]*model.PostView, error) {
	rows, err := s.posts.ListPostsByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return composeViews(rows), nil
}

// ListMineByType returns the caller's posts of the given type,
// ascending by ID.
func (s *PostService) ListMineByType(ctx context.Context, userID int, postType model.PostType) ([]*model.PostView, error) {
	rows, err := s.posts.ListPostsByOwnerAndType(ctx, userID, postType.Tag())
	if err != nil {
		return nil, err
	}
	return composeViews(rows), nil
}

// ListByUser returns the posts of an arbitrary user, most recent first.
// Public by user ID; no caller scoping.
func (s *PostService) ListByUser(ctx context.Context, targetUserID int) ([]*model.PostView, error) {
	rows, err := s.posts.ListPostsByUser(ctx, targetUserID)
	if err != nil {
		return nil, err
	}
	return composeViews(rows), nil
}

// ListCommunity returns all posts, most recent first.
func (s *PostService) ListCommunity(ctx context.Context) ([]*model.PostView, error) {
	rows, err := s.posts.ListCommunityPosts(ctx)
	if err != nil {
		return nil, err
	}
	return composeViews(rows), nil
}

// ListCommunityByType returns all posts of the given type, most recent first.
func (s *PostService) ListCommunityByType(ctx context.Context, postType model.PostType) ([]*model.PostView, error) {
	rows, err := s.posts.ListCommunityPostsByType(ctx, postType.Tag())
	if err != nil {
		return nil, err
	}
	return composeViews(rows), nil
}

// CreatePostInput defines input for creating a post. Categories arrive
// as the transport's JSON-encoded string and are parsed here.
type CreatePostInput struct {
	Description string
	Categories  string
	PostType    model.PostType
	PinCode     *string
}

// Create persists a new post owned by userID and returns its view.
// A malformed categories payload fails before anything is stored.
// The owner re-fetch that fills the denormalized display fields is
// best-effort: a created post is returned even if that read fails.
func (s *PostService) Create(ctx context.Context, userID int, input CreatePostInput) (*model.PostView, error) {
	var categories []string
	if err := json.Unmarshal([]byte(input.Categories), &categories); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCategories, err)
	}

	if !input.PostType.IsValid() {
		return nil, ErrInvalidPostType
	}

	row, err := s.posts.CreatePost(ctx, repository.CreatePostParams{
		UserID:      userID,
		Description: input.Description,
		Categories:  categories,
		PostType:    input.PostType.Tag(),
		PinCode:     input.PinCode,
	})
	if err != nil {
		return nil, err
	}

	if owner, err := s.users.GetUserByID(ctx, userID); err == nil {
		row.UserName = owner.Name
		row.ProfilePicture = owner.ProfilePicture
	}

	s.metrics.IncPostCreated()

	return composeView(row), nil
}

// Update rewrites a post's fields. Only the owner can update; a post
// owned by someone else reports ErrPostNotFound, identical to a post
// that does not exist.
func (s *PostService) Update(ctx context.Context, userID int, post model.Post) (*model.Post, error) {
	if !post.PostType.IsValid() {
		return nil, ErrInvalidPostType
	}

	// Ownership comes from the session; the payload cannot reassign it.
	post.UserID = userID

	if err := s.posts.UpdatePost(ctx, post, userID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	s.metrics.IncPostUpdated()

	return &post, nil
}

// Delete removes a post. Same ownership-coupled NotFound semantics as Update.
func (s *PostService) Delete(ctx context.Context, userID, postID int) error {
	if err := s.posts.DeletePost(ctx, postID, userID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	s.metrics.IncPostDeleted()

	return nil
}

// composeView maps a stored row to its wire view. Pure; the stored
// post-type tag maps through model.PostTypeFromTag, which absorbs
// drifted values instead of failing the row.
func composeView(row model.PostRow) *model.PostView {
	return &model.PostView{
		ID:             row.ID,
		Description:    row.Description,
		Categories:     row.Categories,
		UserID:         row.UserID,
		PostType:       model.PostTypeFromTag(row.PostType),
		PinCode:        row.PinCode,
		UserName:       row.UserName,
		ProfilePicture: row.ProfilePicture,
	}
}

// composeViews maps rows to views, preserving order.
func composeViews(rows []model.PostRow) []*model.PostView {
	views := make([]*model.PostView, len(rows))
	for i, row := range rows {
		views[i] = composeView(row)
	}
	return views
}
