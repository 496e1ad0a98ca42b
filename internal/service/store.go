// Package service provides business logic for the application.
package service

import (
	"context"

	"github.com/tradepost/tradepost/internal/model"
	"github.com/tradepost/tradepost/internal/repository"
)

// UserStore is the persistence contract for user records.
// Implemented by *repository.Repository.
type UserStore interface {
	CreateUser(ctx context.Context, params repository.CreateUserParams) (*model.User, error)
	GetUserByID(ctx context.Context, id int) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfilePicture(ctx context.Context, userID int, pictureURL string) (*model.User, error)
}

// PostStore is the persistence contract for post records.
// Implemented by *repository.Repository.
type PostStore interface {
	ListPostsByOwner(ctx context.Context, userID int) ([]model.PostRow, error)
	ListPostsByOwnerAndType(ctx context.Context, userID int, postType string) ([]model.PostRow, error)
	ListPostsByUser(ctx context.Context, targetUserID int) ([]model.PostRow, error)
	ListCommunityPosts(ctx context.Context) ([]model.PostRow, error)
	ListCommunityPostsByType(ctx context.Context, postType string) ([]model.PostRow, error)
	CreatePost(ctx context.Context, params repository.CreatePostParams) (model.PostRow, error)
	UpdatePost(ctx context.Context, post model.Post, ownerID int) error
	DeletePost(ctx context.Context, postID, ownerID int) error
}

// Uploader is the image hosting contract.
// Implemented by *imagehost.Client.
type Uploader interface {
	Upload(ctx context.Context, data, publicID string) (string, error)
}
