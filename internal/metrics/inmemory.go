package metrics

import "sync"

// InMemoryRecorder accumulates counters in memory.
// Safe for concurrent use; useful for tests and the dev environment.
type InMemoryRecorder struct {
	mu sync.Mutex

	usersRegistered int64
	logins          map[string]int64
	pictureUploads  map[string]int64
	postsCreated    int64
	postsUpdated    int64
	postsDeleted    int64
}

// NewInMemory returns a Recorder that accumulates counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		logins:         make(map[string]int64),
		pictureUploads: make(map[string]int64),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usersRegistered++
}

// IncLogin increments the login counter for the given status.
func (m *InMemoryRecorder) IncLogin(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logins[status]++
}

// IncPictureUploaded increments the picture upload counter for the given status.
func (m *InMemoryRecorder) IncPictureUploaded(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pictureUploads[status]++
}

// IncPostCreated increments the post creation counter.
func (m *InMemoryRecorder) IncPostCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postsCreated++
}

// IncPostUpdated increments the post update counter.
func (m *InMemoryRecorder) IncPostUpdated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postsUpdated++
}

// IncPostDeleted increments the post deletion counter.
func (m *InMemoryRecorder) IncPostDeleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postsDeleted++
}

// Snapshot returns a copy of the current counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	logins := make(map[string]int64, len(m.logins))
	for k, v := range m.logins {
		logins[k] = v
	}
	uploads := make(map[string]int64, len(m.pictureUploads))
	for k, v := range m.pictureUploads {
		uploads[k] = v
	}

	return Snapshot{
		UsersRegistered: m.usersRegistered,
		Logins:          logins,
		PictureUploads:  uploads,
		PostsCreated:    m.postsCreated,
		PostsUpdated:    m.postsUpdated,
		PostsDeleted:    m.postsDeleted,
	}
}
