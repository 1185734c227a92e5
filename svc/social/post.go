package social

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/venuekit/venuekit/svc/provider"
)

// PostStatus represents the lifecycle state of a social post.
type PostStatus string

const (
	StatusDraft      PostStatus = "draft"
	StatusScheduled  PostStatus = "scheduled"
	StatusPublishing PostStatus = "publishing"
	StatusPublished  PostStatus = "published"
	StatusFailed     PostStatus = "failed"
)

// Publish lifecycle events fired against the transition table.
const (
	EventPublishStart   = "publish_start"
	EventPublishSucceed = "publish_succeed"
	EventPublishFail    = "publish_fail"
)

// Post is a social post owned by a business. Status carries the summary
// outcome; per-platform detail lives in the audit log.
type Post struct {
	ID           uuid.UUID
	BusinessID   string
	Content      string
	MediaURLs    []string
	Platforms    []provider.Provider
	Status       PostStatus
	ErrorMessage string
	ExternalIDs  []string
	ScheduledAt  *time.Time
	PublishedAt  *time.Time
	UpdatedAt    time.Time
}

// PostStore reads and updates posts. The pipeline is the only writer of the
// publishing, published and failed statuses.
type PostStore interface {
	GetPost(ctx context.Context, id uuid.UUID) (Post, error)
	UpdatePost(ctx context.Context, post Post) error
}

// MemoryPostStore is an in-memory PostStore for tests and local runs.
type MemoryPostStore struct {
	mu    sync.RWMutex
	posts map[uuid.UUID]Post
}

func NewMemoryPostStore(posts ...Post) *MemoryPostStore {
	m := make(map[uuid.UUID]Post, len(posts))
	for _, p := range posts {
		m[p.ID] = p
	}
	return &MemoryPostStore{posts: m}
}

func (s *MemoryPostStore) GetPost(ctx context.Context, id uuid.UUID) (Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return Post{}, ErrPostNotFound
	}
	return p, nil
}

func (s *MemoryPostStore) UpdatePost(ctx context.Context, post Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[post.ID]; !ok {
		return ErrPostNotFound
	}
	post.UpdatedAt = time.Now()
	s.posts[post.ID] = post
	return nil
}
