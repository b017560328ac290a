package blog

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/blogstream/errors"
	"github.com/c360/blogstream/pubsub"
	"github.com/c360/blogstream/store"
)

func newTestService(t *testing.T) (*Service, *pubsub.Broker) {
	t.Helper()

	st := store.New()
	store.Seed(st)
	broker := pubsub.NewBroker()

	next := 100
	svc := NewService(st, broker, WithIDGenerator(func() string {
		next++
		return fmt.Sprintf("%d", next)
	}))
	return svc, broker
}

func intp(v int) *int { return &v }

func TestListUsers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	all := svc.ListUsers(ctx, "")
	require.Len(t, all, 3)

	// Case-insensitive substring on name
	matched := svc.ListUsers(ctx, "luke")
	require.Len(t, matched, 2)
	assert.Equal(t, "Luke", matched[0].Name)
	assert.Equal(t, "Lukie Luke", matched[1].Name)

	assert.Empty(t, svc.ListUsers(ctx, "nobody"))
}

func TestListPosts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.Len(t, svc.ListPosts(ctx, ""), 3)

	// Title match
	byTitle := svc.ListPosts(ctx, "first post")
	require.Len(t, byTitle, 1)
	assert.Equal(t, "1", byTitle[0].ID)

	// Body match
	byBody := svc.ListPosts(ctx, "second post")
	require.Len(t, byBody, 1)
	assert.Equal(t, "2", byBody[0].ID)

	// Matches in either field are unioned without duplicates
	both := svc.ListPosts(ctx, "dream")
	require.Len(t, both, 2)
}

func TestRelationalResolvers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	post, err := svc.CommentPost(ctx, &store.Comment{ID: "1", Post: "1"})
	require.NoError(t, err)
	assert.Equal(t, "First Post", post.Title)

	author, err := svc.PostAuthor(ctx, post)
	require.NoError(t, err)
	assert.Equal(t, "Luke", author.Name)

	comments := svc.PostComments(ctx, post)
	require.Len(t, comments, 2)
	assert.Equal(t, "1", comments[0].ID)
	assert.Equal(t, "3", comments[1].ID)

	posts := svc.UserPosts(ctx, author)
	require.Len(t, posts, 2)

	userComments := svc.UserComments(ctx, &store.User{ID: "3"})
	require.Len(t, userComments, 2)

	_, err = svc.PostAuthor(ctx, &store.Post{ID: "x", Author: "missing"})
	assert.True(t, errors.IsNotFound(err))
}

func TestCreateUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, CreateUserInput{Name: "Ana", Email: "ana@email.com", Age: intp(30)})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, 30, *user.Age)

	// Duplicate email is rejected
	_, err = svc.CreateUser(ctx, CreateUserInput{Name: "Copy", Email: "ana@email.com"})
	assert.True(t, errors.IsConflict(err))
}

func TestUpdateUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// Partial update touches only the present fields
	user, err := svc.UpdateUser(ctx, "2", UpdateUserInput{Name: Some("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", user.Name)
	assert.Equal(t, "LukieLuke@email.com", user.Email)
	require.NotNil(t, user.Age)
	assert.Equal(t, 26, *user.Age)

	// Null age clears it
	user, err = svc.UpdateUser(ctx, "2", UpdateUserInput{Age: Some[*int](nil)})
	require.NoError(t, err)
	assert.Nil(t, user.Age)

	// Changing to another user's email is a conflict
	_, err = svc.UpdateUser(ctx, "2", UpdateUserInput{Email: Some("Luke@email.com")})
	assert.True(t, errors.IsConflict(err))

	// Keeping your own email is fine
	_, err = svc.UpdateUser(ctx, "1", UpdateUserInput{Email: Some("Luke@email.com")})
	assert.NoError(t, err)

	_, err = svc.UpdateUser(ctx, "missing", UpdateUserInput{})
	assert.True(t, errors.IsNotFound(err))
}

func TestDeleteUserCascades(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// User 1 authored posts 1 and 2; comments 2, 3 and 4 target those
	// posts, and comment 1 is authored by user 1 directly. All of it
	// goes.
	user, err := svc.DeleteUser(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Luke", user.Name)

	users, posts, comments := svc.Counts()
	assert.Equal(t, 2, users)
	assert.Equal(t, 1, posts)
	assert.Equal(t, 0, comments)

	remaining := svc.ListPosts(ctx, "")
	require.Len(t, remaining, 1)
	assert.Equal(t, "3", remaining[0].ID)

	_, err = svc.DeleteUser(ctx, "1")
	assert.True(t, errors.IsNotFound(err))
}

func TestDeleteUserKeepsUnrelatedData(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// User 3 authored no posts, only comments 2 and 3
	_, err := svc.DeleteUser(ctx, "3")
	require.NoError(t, err)

	users, posts, comments := svc.Counts()
	assert.Equal(t, 2, users)
	assert.Equal(t, 3, posts)
	assert.Equal(t, 2, comments)
}

func TestCreatePost(t *testing.T) {
	svc, broker := newTestService(t)
	ctx := context.Background()

	sub := broker.Subscribe(TopicPost)

	post, err := svc.CreatePost(ctx, CreatePostInput{
		Title: "Hello", Body: "World", Published: true, Author: "1",
	})
	require.NoError(t, err)

	// Published creation notifies post subscribers
	event := <-sub.Events()
	assert.Equal(t, post, event)

	// Unpublished creation stays silent
	_, err = svc.CreatePost(ctx, CreatePostInput{Title: "Draft", Body: "...", Author: "1"})
	require.NoError(t, err)
	select {
	case e := <-sub.Events():
		t.Fatalf("unexpected event for draft post: %v", e)
	default:
	}

	// Unknown author is rejected before any write
	before, _, _ := svc.Counts()
	_, err = svc.CreatePost(ctx, CreatePostInput{Title: "x", Body: "y", Author: "missing"})
	assert.True(t, errors.IsNotFound(err))
	after, _, _ := svc.Counts()
	assert.Equal(t, before, after)
}

func TestUpdatePost(t *testing.T) {
	svc, broker := newTestService(t)
	ctx := context.Background()

	sub := broker.Subscribe(TopicPost)

	post, err := svc.UpdatePost(ctx, "3", UpdatePostInput{Published: Some(true)})
	require.NoError(t, err)
	assert.True(t, post.Published)
	assert.Equal(t, "Third Dream", post.Title)

	// Publishing via update does not notify; only creation does
	select {
	case e := <-sub.Events():
		t.Fatalf("unexpected event on publish toggle: %v", e)
	default:
	}

	_, err = svc.UpdatePost(ctx, "missing", UpdatePostInput{})
	assert.True(t, errors.IsNotFound(err))
}

func TestDeletePostCascades(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// Post 2 carries comments 2 and 4
	post, err := svc.DeletePost(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "Second Scene", post.Title)

	users, posts, comments := svc.Counts()
	assert.Equal(t, 3, users)
	assert.Equal(t, 2, posts)
	assert.Equal(t, 2, comments)

	for _, c := range svc.ListComments(ctx) {
		assert.NotEqual(t, "2", c.Post)
	}

	_, err = svc.DeletePost(ctx, "2")
	assert.True(t, errors.IsNotFound(err))
}

func TestCreateComment(t *testing.T) {
	svc, broker := newTestService(t)
	ctx := context.Background()

	sub := broker.Subscribe(CommentTopic("1"))
	other := broker.Subscribe(CommentTopic("2"))

	comment, err := svc.CreateComment(ctx, CreateCommentInput{Text: "Nice!", Author: "2", Post: "1"})
	require.NoError(t, err)

	event := <-sub.Events()
	assert.Equal(t, comment, event)

	// The notification is scoped to the target post
	select {
	case e := <-other.Events():
		t.Fatalf("comment event leaked to another post topic: %v", e)
	default:
	}

	// Unpublished post rejects comments
	_, err = svc.CreateComment(ctx, CreateCommentInput{Text: "x", Author: "1", Post: "3"})
	assert.True(t, errors.IsNotFound(err))

	// Unknown author and unknown post are rejected
	_, err = svc.CreateComment(ctx, CreateCommentInput{Text: "x", Author: "missing", Post: "1"})
	assert.True(t, errors.IsNotFound(err))
	_, err = svc.CreateComment(ctx, CreateCommentInput{Text: "x", Author: "1", Post: "missing"})
	assert.True(t, errors.IsNotFound(err))
}

func TestUpdateAndDeleteComment(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	comment, err := svc.UpdateComment(ctx, "1", UpdateCommentInput{Text: Some("Edited")})
	require.NoError(t, err)
	assert.Equal(t, "Edited", comment.Text)

	// Empty update leaves the comment alone
	same, err := svc.UpdateComment(ctx, "1", UpdateCommentInput{})
	require.NoError(t, err)
	assert.Equal(t, "Edited", same.Text)

	deleted, err := svc.DeleteComment(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Edited", deleted.Text)

	_, err = svc.DeleteComment(ctx, "1")
	assert.True(t, errors.IsNotFound(err))
	_, err = svc.UpdateComment(ctx, "1", UpdateCommentInput{})
	assert.True(t, errors.IsNotFound(err))
}

func TestSubscribeComments(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sub, err := svc.SubscribeComments(ctx, "1")
	require.NoError(t, err)
	defer sub.Cancel()

	comment, err := svc.CreateComment(ctx, CreateCommentInput{Text: "Live", Author: "2", Post: "1"})
	require.NoError(t, err)
	assert.Equal(t, comment, <-sub.Events())

	// Unpublished and missing posts cannot be subscribed to
	_, err = svc.SubscribeComments(ctx, "3")
	assert.True(t, errors.IsNotFound(err))
	_, err = svc.SubscribeComments(ctx, "missing")
	assert.True(t, errors.IsNotFound(err))
}

func TestSubscribePosts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sub := svc.SubscribePosts(ctx)
	defer sub.Cancel()

	post, err := svc.CreatePost(ctx, CreatePostInput{Title: "Live", Body: "!", Published: true, Author: "2"})
	require.NoError(t, err)
	assert.Equal(t, post, <-sub.Events())
}
