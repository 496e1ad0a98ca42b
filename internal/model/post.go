// Package model defines domain entities for the application.
package model

// PostType is the kind of marketplace post.
type PostType string

const (
	PostTypeOffer   PostType = "offer"
	PostTypeRequest PostType = "request"
)

// IsValid checks if the post type is a known variant.
func (t PostType) IsValid() bool {
	return t == PostTypeOffer || t == PostTypeRequest
}

// Tag returns the stored textual tag of the post type.
func (t PostType) Tag() string {
	return string(t)
}

// PostTypeFromTag maps a stored textual tag to a PostType.
// Unknown tags map to PostTypeRequest so that drifted legacy rows
// still render instead of failing the whole read.
func PostTypeFromTag(tag string) PostType {
	switch tag {
	case "offer":
		return PostTypeOffer
	case "request":
		return PostTypeRequest
	default:
		return PostTypeRequest
	}
}

// Post represents a marketplace listing owned by exactly one user.
// Categories preserve insertion order; clients display them as entered.
type Post struct {
	ID          int      `json:"id"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
	UserID      int      `json:"user_id"`
	PostType    PostType `json:"post_type"`
	PinCode     *string  `json:"pin_code"`
}

// PostRow is a post as read from storage, joined with the owner's
// display data. The post type is the raw stored tag; owner fields are
// nil when the owner row is missing.
type PostRow struct {
	ID             int
	Description    string
	Categories     []string
	UserID         int
	PostType       string
	PinCode        *string
	UserName       *string
	ProfilePicture *string
}

// PostView is a Post enriched with the owner's display name and
// profile picture for presentation.
type PostView struct {
	ID             int      `json:"id"`
	Description    string   `json:"description"`
	Categories     []string `json:"categories"`
	UserID         int      `json:"user_id"`
	PostType       PostType `json:"post_type"`
	PinCode        *string  `json:"pin_code"`
	UserName       *string  `json:"user_name"`
	ProfilePicture *string  `json:"profile_picture"`
}
