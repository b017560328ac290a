package blog

import (
	"context"

	"github.com/c360/blogstream/errors"
	"github.com/c360/blogstream/store"
)

// CreateUserInput carries the fields for a new user.
type CreateUserInput struct {
	Name  string
	Email string
	Age   *int
}

// UpdateUserInput is a partial update; absent fields are untouched.
// Age distinguishes a present null (clear the age) from absence.
type UpdateUserInput struct {
	Name  Optional[string]
	Email Optional[string]
	Age   Optional[*int]
}

// CreatePostInput carries the fields for a new post. Author must
// reference an existing user.
type CreatePostInput struct {
	Title     string
	Body      string
	Published bool
	Author    string
}

// UpdatePostInput is a partial update; absent fields are untouched.
type UpdatePostInput struct {
	Title     Optional[string]
	Body      Optional[string]
	Published Optional[bool]
}

// CreateCommentInput carries the fields for a new comment. Author must
// reference an existing user and Post a published post.
type CreateCommentInput struct {
	Text   string
	Author string
	Post   string
}

// UpdateCommentInput is a partial update; absent fields are untouched.
type UpdateCommentInput struct {
	Text Optional[string]
}

// CreateUser appends a new user. Fails with a conflict when the email
// is already in use.
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.store.FindUserByEmail(input.Email); taken {
		return nil, errors.WrapConflict(errors.ErrEmailTaken, "BlogService", "CreateUser", "create user "+input.Email)
	}

	user := &store.User{
		ID:    s.newID(),
		Name:  input.Name,
		Email: input.Email,
		Age:   input.Age,
	}
	s.store.AppendUser(user)

	s.logger.Info("user created", "user_id", user.ID)
	return user, nil
}

// UpdateUser applies the present fields of input to the user. An email
// change fails with a conflict when the address belongs to a different
// user.
func (s *Service) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.store.FindUser(id)
	if !ok {
		return nil, errors.WrapNotFound(errors.ErrUserNotFound, "BlogService", "UpdateUser", "update user "+id)
	}

	if email, set := input.Email.Get(); set {
		if other, taken := s.store.FindUserByEmail(email); taken && other.ID != id {
			return nil, errors.WrapConflict(errors.ErrEmailTaken, "BlogService", "UpdateUser", "update user "+id)
		}
		user.Email = email
	}
	if name, set := input.Name.Get(); set {
		user.Name = name
	}
	if age, set := input.Age.Get(); set {
		user.Age = age
	}

	return user, nil
}

// DeleteUser removes the user, every post they authored, every comment
// on those posts, and every remaining comment they authored anywhere.
// Returns the removed user.
func (s *Service) DeleteUser(ctx context.Context, id string) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.store.RemoveUser(id)
	if !ok {
		return nil, errors.WrapNotFound(errors.ErrUserNotFound, "BlogService", "DeleteUser", "delete user "+id)
	}

	posts := s.store.RemovePostsWhere(func(p *store.Post) bool {
		return p.Author == id
	})
	s.cascadeComments(posts)
	s.store.RemoveCommentsWhere(func(c *store.Comment) bool {
		return c.Author == id
	})

	s.logger.Info("user deleted", "user_id", id, "posts_removed", len(posts))
	return user, nil
}

// CreatePost appends a new post and, when it is published, notifies
// post subscribers.
func (s *Service) CreatePost(ctx context.Context, input CreatePostInput) (*store.Post, error) {
	s.mu.Lock()

	if _, ok := s.store.FindUser(input.Author); !ok {
		s.mu.Unlock()
		return nil, errors.WrapNotFound(errors.ErrUserNotFound, "BlogService", "CreatePost", "create post for author "+input.Author)
	}

	post := &store.Post{
		ID:        s.newID(),
		Title:     input.Title,
		Body:      input.Body,
		Published: input.Published,
		Author:    input.Author,
	}
	s.store.AppendPost(post)
	s.mu.Unlock()

	if post.Published {
		s.broker.Publish(TopicPost, post)
	}

	s.logger.Info("post created", "post_id", post.ID, "published", post.Published)
	return post, nil
}

// UpdatePost applies the present fields of input to the post. Toggling
// published does not emit a notification; only creation does.
func (s *Service) UpdatePost(ctx context.Context, id string, input UpdatePostInput) (*store.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.store.FindPost(id)
	if !ok {
		return nil, errors.WrapNotFound(errors.ErrPostNotFound, "BlogService", "UpdatePost", "update post "+id)
	}

	if title, set := input.Title.Get(); set {
		post.Title = title
	}
	if body, set := input.Body.Get(); set {
		post.Body = body
	}
	if published, set := input.Published.Get(); set {
		post.Published = published
	}

	return post, nil
}

// DeletePost removes the post and every comment attached to it.
// Returns the removed post.
func (s *Service) DeletePost(ctx context.Context, id string) (*store.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.store.RemovePost(id)
	if !ok {
		return nil, errors.WrapNotFound(errors.ErrPostNotFound, "BlogService", "DeletePost", "delete post "+id)
	}
	s.cascadeComments([]*store.Post{post})

	s.logger.Info("post deleted", "post_id", id)
	return post, nil
}

// CreateComment appends a new comment and notifies subscribers of the
// target post's comment topic. The author must exist and the post must
// exist and be published.
func (s *Service) CreateComment(ctx context.Context, input CreateCommentInput) (*store.Comment, error) {
	s.mu.Lock()

	if _, ok := s.store.FindUser(input.Author); !ok {
		s.mu.Unlock()
		return nil, errors.WrapNotFound(errors.ErrUserNotFound, "BlogService", "CreateComment", "create comment for author "+input.Author)
	}
	post, ok := s.store.FindPost(input.Post)
	if !ok || !post.Published {
		s.mu.Unlock()
		return nil, errors.WrapNotFound(errors.ErrPostNotFound, "BlogService", "CreateComment", "create comment on post "+input.Post)
	}

	comment := &store.Comment{
		ID:     s.newID(),
		Text:   input.Text,
		Author: input.Author,
		Post:   input.Post,
	}
	s.store.AppendComment(comment)
	s.mu.Unlock()

	s.broker.Publish(CommentTopic(comment.Post), comment)

	s.logger.Info("comment created", "comment_id", comment.ID, "post_id", comment.Post)
	return comment, nil
}

// UpdateComment applies the present fields of input to the comment.
func (s *Service) UpdateComment(ctx context.Context, id string, input UpdateCommentInput) (*store.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.store.FindComment(id)
	if !ok {
		return nil, errors.WrapNotFound(errors.ErrCommentNotFound, "BlogService", "UpdateComment", "update comment "+id)
	}

	if text, set := input.Text.Get(); set {
		comment.Text = text
	}

	return comment, nil
}

// DeleteComment removes and returns the comment.
func (s *Service) DeleteComment(ctx context.Context, id string) (*store.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.store.RemoveComment(id)
	if !ok {
		return nil, errors.WrapNotFound(errors.ErrCommentNotFound, "BlogService", "DeleteComment", "delete comment "+id)
	}

	s.logger.Info("comment deleted", "comment_id", id)
	return comment, nil
}

// cascadeComments removes every comment attached to one of the given
// posts. Shared by the user and post deletion paths so the two cannot
// drift. Caller must hold the write lock.
func (s *Service) cascadeComments(posts []*store.Post) []*store.Comment {
	if len(posts) == 0 {
		return nil
	}
	ids := make(map[string]struct{}, len(posts))
	for _, p := range posts {
		ids[p.ID] = struct{}{}
	}
	return s.store.RemoveCommentsWhere(func(c *store.Comment) bool {
		_, hit := ids[c.Post]
		return hit
	})
}
