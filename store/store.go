// Package store holds the in-memory entity collections for BlogStream.
//
// The Store is intentionally dumb: it offers list, find, append and
// remove per collection and nothing else. Referential integrity,
// uniqueness checks and cascading deletes belong to the blog package,
// which also serializes access. The Store itself performs no locking;
// callers own the concurrency model.
package store

// Store owns the three entity collections. Insertion order is the
// default listing order for every collection.
type Store struct {
	users    []*User
	posts    []*Post
	comments []*Comment
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Users returns the user collection in insertion order. The returned
// slice is a copy; the pointed-to entities are shared.
func (s *Store) Users() []*User {
	out := make([]*User, len(s.users))
	copy(out, s.users)
	return out
}

// Posts returns the post collection in insertion order.
func (s *Store) Posts() []*Post {
	out := make([]*Post, len(s.posts))
	copy(out, s.posts)
	return out
}

// Comments returns the comment collection in insertion order.
func (s *Store) Comments() []*Comment {
	out := make([]*Comment, len(s.comments))
	copy(out, s.comments)
	return out
}

// FindUser looks a user up by ID.
func (s *Store) FindUser(id string) (*User, bool) {
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return nil, false
}

// FindUserByEmail looks a user up by email address.
func (s *Store) FindUserByEmail(email string) (*User, bool) {
	for _, u := range s.users {
		if u.Email == email {
			return u, true
		}
	}
	return nil, false
}

// FindPost looks a post up by ID.
func (s *Store) FindPost(id string) (*Post, bool) {
	for _, p := range s.posts {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// FindComment looks a comment up by ID.
func (s *Store) FindComment(id string) (*Comment, bool) {
	for _, c := range s.comments {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// AppendUser adds a user to the end of the collection.
func (s *Store) AppendUser(u *User) {
	s.users = append(s.users, u)
}

// AppendPost adds a post to the end of the collection.
func (s *Store) AppendPost(p *Post) {
	s.posts = append(s.posts, p)
}

// AppendComment adds a comment to the end of the collection.
func (s *Store) AppendComment(c *Comment) {
	s.comments = append(s.comments, c)
}

// RemoveUser removes a user by ID, preserving the order of the rest.
func (s *Store) RemoveUser(id string) (*User, bool) {
	for i, u := range s.users {
		if u.ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return u, true
		}
	}
	return nil, false
}

// RemovePost removes a post by ID, preserving the order of the rest.
func (s *Store) RemovePost(id string) (*Post, bool) {
	for i, p := range s.posts {
		if p.ID == id {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			return p, true
		}
	}
	return nil, false
}

// RemoveComment removes a comment by ID, preserving the order of the rest.
func (s *Store) RemoveComment(id string) (*Comment, bool) {
	for i, c := range s.comments {
		if c.ID == id {
			s.comments = append(s.comments[:i], s.comments[i+1:]...)
			return c, true
		}
	}
	return nil, false
}

// RemoveCommentsWhere removes every comment matching the predicate and
// returns the removed comments in their original order. Used by the
// cascade paths in the blog package.
func (s *Store) RemoveCommentsWhere(match func(*Comment) bool) []*Comment {
	var removed []*Comment
	kept := s.comments[:0]
	for _, c := range s.comments {
		if match(c) {
			removed = append(removed, c)
		} else {
			kept = append(kept, c)
		}
	}
	s.comments = kept
	return removed
}

// RemovePostsWhere removes every post matching the predicate and
// returns the removed posts in their original order.
func (s *Store) RemovePostsWhere(match func(*Post) bool) []*Post {
	var removed []*Post
	kept := s.posts[:0]
	for _, p := range s.posts {
		if match(p) {
			removed = append(removed, p)
		} else {
			kept = append(kept, p)
		}
	}
	s.posts = kept
	return removed
}

// Counts reports collection sizes, in users, posts, comments order.
func (s *Store) Counts() (int, int, int) {
	return len(s.users), len(s.posts), len(s.comments)
}
