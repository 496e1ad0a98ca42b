package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tradepost/tradepost/internal/model"
)

// Common errors for post repository operations.
var (
	// ErrPostNotFound is returned when no row matches both the post ID
	// and the owner ID. A post owned by someone else is indistinguishable
	// from a post that does not exist.
	ErrPostNotFound = errors.New("post not found")
)

// postSelect is the shared projection for post reads. Every read joins
// the owner so rows carry display data; a missing owner degrades to
// NULL fields instead of dropping the row.
const postSelect = `
	SELECT p.id, p.description, p.categories, p.user_id, p.post_type, p.pin_code,
	       u.name AS user_name, u.profile_picture
	FROM posts p
	LEFT JOIN users u ON p.user_id = u.id
`

// CreatePostParams holds the fields for inserting a new post row.
type CreatePostParams struct {
	UserID      int
	Description string
	Categories  []string
	PostType    string
	PinCode     *string
}

// ListPostsByOwner returns the posts owned by userID, most recent first.
func (r *Repository) ListPostsByOwner(ctx context.Context, userID int) ([]model.PostRow, error) {
	query := postSelect + ` WHERE p.user_id = $1 ORDER BY p.id DESC`
	return r.queryPostRows(ctx, query, userID)
}

// ListPostsByOwnerAndType returns the posts owned by userID of the given
// type, ordered ascending by ID. The ordering differs from the unfiltered
// owner list: the filtered view enumerates, the unfiltered one shows
// recency.
func (r *Repository) ListPostsByOwnerAndType(ctx context.Context, userID int, postType string) ([]model.PostRow, error) {
	query := postSelect + ` WHERE p.user_id = $1 AND p.post_type = $2 ORDER BY p.id`
	return r.queryPostRows(ctx, query, userID, postType)
}

// ListPostsByUser returns the posts owned by an arbitrary user ID,
// most recent first. World-readable given a known user ID.
func (r *Repository) ListPostsByUser(ctx context.Context, targetUserID int) ([]model.PostRow, error) {
	query := postSelect + ` WHERE p.user_id = $1 ORDER BY p.id DESC`
	return r.queryPostRows(ctx, query, targetUserID)
}

// ListCommunityPosts returns all posts regardless of owner, most recent first.
func (r *Repository) ListCommunityPosts(ctx context.Context) ([]model.PostRow, error) {
	query := postSelect + ` ORDER BY p.id DESC`
	return r.queryPostRows(ctx, query)
}

// ListCommunityPostsByType returns all posts of the given type, most recent first.
func (r *Repository) ListCommunityPostsByType(ctx context.Context, postType string) ([]model.PostRow, error) {
	query := postSelect + ` WHERE p.post_type = $1 ORDER BY p.id DESC`
	return r.queryPostRows(ctx, query, postType)
}

// CreatePost inserts a new post and returns the stored row. Owner
// display fields are not populated here; callers denormalize separately.
func (r *Repository) CreatePost(ctx context.Context, params CreatePostParams) (model.PostRow, error) {
	query := `
		INSERT INTO posts (description, categories, user_id, post_type, pin_code)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, description, categories, user_id, post_type, pin_code
	`

	var row model.PostRow
	err := r.pool.QueryRow(ctx, query,
		params.Description,
		params.Categories,
		params.UserID,
		params.PostType,
		params.PinCode,
	).Scan(
		&row.ID,
		&row.Description,
		&row.Categories,
		&row.UserID,
		&row.PostType,
		&row.PinCode,
	)
	if err != nil {
		return model.PostRow{}, fmt.Errorf("failed to create post: %w", err)
	}

	return row, nil
}

// UpdatePost rewrites a post's mutable fields. The WHERE clause couples
// the post ID with the owner ID so authorization is part of the lookup
// predicate; zero rows affected reports ErrPostNotFound.
func (r *Repository) UpdatePost(ctx context.Context, post model.Post, ownerID int) error {
	query := `
		UPDATE posts
		SET description = $1, categories = $2, post_type = $3, pin_code = $4
		WHERE id = $5 AND user_id = $6
	`

	result, err := r.pool.Exec(ctx, query,
		post.Description,
		post.Categories,
		post.PostType.Tag(),
		post.PinCode,
		post.ID,
		ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	return nil
}

// DeletePost removes a post. Same ownership-coupled matching as UpdatePost.
func (r *Repository) DeletePost(ctx context.Context, postID, ownerID int) error {
	query := `DELETE FROM posts WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, postID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	return nil
}

// queryPostRows runs a post list query and scans all rows.
func (r *Repository) queryPostRows(ctx context.Context, query string, args ...any) ([]model.PostRow, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var result []model.PostRow
	for rows.Next() {
		row, err := scanPostRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	return result, nil
}

// scanPostRow scans a joined post row including owner display fields.
func scanPostRow(rows pgx.Rows) (model.PostRow, error) {
	var row model.PostRow
	err := rows.Scan(
		&row.ID,
		&row.Description,
		&row.Categories,
		&row.UserID,
		&row.PostType,
		&row.PinCode,
		&row.UserName,
		&row.ProfilePicture,
	)
	return row, err
}
