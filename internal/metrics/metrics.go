// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Account metrics
	IncUserRegistered()
	IncLogin(status string) // status: "success" or "rejected"
	IncPictureUploaded(status string)

	// Post management metrics
	IncPostCreated()
	IncPostUpdated()
	IncPostDeleted()
}

// Snapshot is a point-in-time view of accumulated counters.
type Snapshot struct {
	UsersRegistered  int64            `json:"users_registered"`
	Logins           map[string]int64 `json:"logins"`
	PictureUploads   map[string]int64 `json:"picture_uploads"`
	PostsCreated     int64            `json:"posts_created"`
	PostsUpdated     int64            `json:"posts_updated"`
	PostsDeleted     int64            `json:"posts_deleted"`
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
