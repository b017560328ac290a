// Package blog implements the query, mutation and relational layers of
// BlogStream on top of the entity store, plus the notification hooks
// that feed GraphQL subscriptions.
//
// Every operation is one atomic unit of work: the service takes its
// lock once per call, so a mutation together with its cascading
// deletes is observed by readers as a whole or not at all. Validation
// always runs before the first write; a failed call leaves the store
// untouched.
package blog

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/c360/blogstream/errors"
	"github.com/c360/blogstream/pubsub"
	"github.com/c360/blogstream/store"
)

// Notification topics. Posts share one global topic; comments get one
// topic per target post.
const TopicPost = "post"

// CommentTopic returns the notification topic for comments on a post.
func CommentTopic(postID string) string {
	return "comment." + postID
}

// Service is the single entry point for reading and mutating blog data.
// The store and broker are injected so tests can run with isolated
// instances.
type Service struct {
	mu     sync.RWMutex
	store  *store.Store
	broker *pubsub.Broker
	logger *slog.Logger
	newID  func() string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger.With("component", "blog-service")
		}
	}
}

// WithIDGenerator replaces the UUID source, mainly for deterministic
// tests.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewService creates a service over the given store and broker.
func NewService(st *store.Store, broker *pubsub.Broker, opts ...Option) *Service {
	s := &Service{
		store:  st,
		broker: broker,
		logger: slog.Default().With("component", "blog-service"),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Counts reports entity counts, in users, posts, comments order.
func (s *Service) Counts() (int, int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Counts()
}

// ListUsers returns all users, or the users whose name contains query
// as a case-insensitive substring.
func (s *Service) ListUsers(ctx context.Context, query string) []*store.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := s.store.Users()
	if query == "" {
		return users
	}

	needle := strings.ToLower(query)
	matched := users[:0]
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Name), needle) {
			matched = append(matched, u)
		}
	}
	return matched
}

// ListPosts returns all posts, or the posts whose title or body
// contains query as a case-insensitive substring.
func (s *Service) ListPosts(ctx context.Context, query string) []*store.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := s.store.Posts()
	if query == "" {
		return posts
	}

	needle := strings.ToLower(query)
	matched := posts[:0]
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Title), needle) ||
			strings.Contains(strings.ToLower(p.Body), needle) {
			matched = append(matched, p)
		}
	}
	return matched
}

// ListComments returns all comments, unfiltered.
func (s *Service) ListComments(ctx context.Context) []*store.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Comments()
}

// PostAuthor resolves a post's authoring user. The reference is
// validated at creation time, so a miss here means the user was
// removed out from under the post.
func (s *Service) PostAuthor(ctx context.Context, post *store.Post) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.store.FindUser(post.Author)
	if !ok {
		return nil, errors.WrapNotFound(errors.ErrUserNotFound, "BlogService", "PostAuthor", "resolve author "+post.Author)
	}
	return user, nil
}

// PostComments resolves the comments attached to a post, in insertion
// order.
func (s *Service) PostComments(ctx context.Context, post *store.Post) []*store.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*store.Comment
	for _, c := range s.store.Comments() {
		if c.Post == post.ID {
			matched = append(matched, c)
		}
	}
	return matched
}

// UserPosts resolves the posts authored by a user.
func (s *Service) UserPosts(ctx context.Context, user *store.User) []*store.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*store.Post
	for _, p := range s.store.Posts() {
		if p.Author == user.ID {
			matched = append(matched, p)
		}
	}
	return matched
}

// UserComments resolves the comments authored by a user.
func (s *Service) UserComments(ctx context.Context, user *store.User) []*store.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*store.Comment
	for _, c := range s.store.Comments() {
		if c.Author == user.ID {
			matched = append(matched, c)
		}
	}
	return matched
}

// CommentAuthor resolves a comment's authoring user.
func (s *Service) CommentAuthor(ctx context.Context, comment *store.Comment) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.store.FindUser(comment.Author)
	if !ok {
		return nil, errors.WrapNotFound(errors.ErrUserNotFound, "BlogService", "CommentAuthor", "resolve author "+comment.Author)
	}
	return user, nil
}

// CommentPost resolves the post a comment is attached to.
func (s *Service) CommentPost(ctx context.Context, comment *store.Comment) (*store.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.store.FindPost(comment.Post)
	if !ok {
		return nil, errors.WrapNotFound(errors.ErrPostNotFound, "BlogService", "CommentPost", "resolve post "+comment.Post)
	}
	return post, nil
}

// SubscribePosts opens a subscription for newly published posts.
func (s *Service) SubscribePosts(ctx context.Context) *pubsub.Subscription {
	return s.broker.Subscribe(TopicPost)
}

// SubscribeComments opens a subscription for new comments on the given
// post. The post must exist and be published.
func (s *Service) SubscribeComments(ctx context.Context, postID string) (*pubsub.Subscription, error) {
	s.mu.RLock()
	post, ok := s.store.FindPost(postID)
	published := ok && post.Published
	s.mu.RUnlock()

	if !published {
		return nil, errors.WrapNotFound(errors.ErrPostNotFound, "BlogService", "SubscribeComments", "subscribe to post "+postID)
	}
	return s.broker.Subscribe(CommentTopic(postID)), nil
}
