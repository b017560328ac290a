package graphql

import (
	"context"

	artemis "github.com/botobag/artemis/graphql"

	"github.com/c360/blogstream/blog"
	"github.com/c360/blogstream/store"
)

// Resolver wires blog service operations into schema field resolvers.
type Resolver struct {
	service *blog.Service
}

// NewResolver creates a resolver over the given blog service
func NewResolver(service *blog.Service) *Resolver {
	return &Resolver{service: service}
}

// Service returns the underlying blog service
func (r *Resolver) Service() *blog.Service {
	return r.service
}

// BuildSchema compiles the BlogStream schema with r's resolvers
// attached. Object configs are declared up front and fields assigned
// afterwards so the User/Post/Comment reference cycle resolves.
func (r *Resolver) BuildSchema() (*artemis.Schema, error) {
	userType := &artemis.ObjectConfig{
		Name:        "User",
		Description: "A registered author of posts and comments.",
	}
	postType := &artemis.ObjectConfig{
		Name:        "Post",
		Description: "A blog post, visible to readers once published.",
	}
	commentType := &artemis.ObjectConfig{
		Name:        "Comment",
		Description: "A comment attached to a published post.",
	}

	userType.Fields = artemis.Fields{
		"id":    {Type: artemis.NonNullOfType(artemis.ID())},
		"name":  {Type: artemis.NonNullOfType(artemis.String())},
		"email": {Type: artemis.NonNullOfType(artemis.String())},
		"age": {
			Type: artemis.T(artemis.Int()),
			Resolver: artemis.FieldResolverFunc(func(ctx context.Context, source interface{}, info artemis.ResolveInfo) (interface{}, error) {
				user := source.(*store.User)
				if user.Age == nil {
					return nil, nil
				}
				return *user.Age, nil
			}),
		},
		"posts": {
			Type: artemis.NonNullOf(artemis.ListOf(artemis.NonNullOf(postType))),
			Resolver: artemis.FieldResolverFunc(func(ctx context.Context, source interface{}, info artemis.ResolveInfo) (interface{}, error) {
				return r.service.UserPosts(ctx, source.(*store.User)), nil
			}),
		},
		"comments": {
			Type: artemis.NonNullOf(artemis.ListOf(artemis.NonNullOf(commentType))),
			Resolver: artemis.FieldResolverFunc(func(ctx context.Context, source interface{}, info artemis.ResolveInfo) (interface{}, error) {
				return r.service.UserComments(ctx, source.(*store.User)), nil
			}),
		},
	}

	postType.Fields = artemis.Fields{
		"id":        {Type: artemis.NonNullOfType(artemis.ID())},
		"title":     {Type: artemis.NonNullOfType(artemis.String())},
		"body":      {Type: artemis.NonNullOfType(artemis.String())},
		"published": {Type: artemis.NonNullOfType(artemis.Boolean())},
		"author": {
			Type: artemis.NonNullOf(userType),
			Resolver: artemis.FieldResolverFunc(func(ctx context.Context, source interface{}, info artemis.ResolveInfo) (interface{}, error) {
				user, err := r.service.PostAuthor(ctx, source.(*store.Post))
				if err != nil {
					return nil, gqlError(err)
				}
				return user, nil
			}),
		},
		"comments": {
			Type: artemis.NonNullOf(artemis.ListOf(artemis.NonNullOf(commentType))),
			Resolver: artemis.FieldResolverFunc(func(ctx context.Context, source interface{}, info artemis.ResolveInfo) (interface{}, error) {
				return r.service.PostComments(ctx, source.(*store.Post)), nil
			}),
		},
	}

	commentType.Fields = artemis.Fields{
		"id":   {Type: artemis.NonNullOfType(artemis.ID())},
		"text": {Type: artemis.NonNullOfType(artemis.String())},
		"author": {
			Type: artemis.NonNullOf(userType),
			Resolver: artemis.FieldResolverFunc(func(ctx context.Context, source interface{}, info artemis.ResolveInfo) (interface{}, error) {
				user, err := r.service.CommentAuthor(ctx, source.(*store.Comment))
				if err != nil {
					return nil, gqlError(err)
				}
				return user, nil
			}),
		},
		"post": {
			Type: artemis.NonNullOf(postType),
			Resolver: artemis.FieldResolverFunc(func(ctx context.Context, source interface{}, info artemis.ResolveInfo) (interface{}, error) {
				post, err := r.service.CommentPost(ctx, source.(*store.Comment))
				if err != nil {
					return nil, gqlError(err)
				}
				return post, nil
			}),
		},
	}

	queryType := &artemis.ObjectConfig{
		Name: "Query",
		Fields: artemis.Fields{
			"users": {
				Type: artemis.NonNullOf(artemis.ListOf(artemis.NonNullOf(userType))),
				Args: artemis.ArgumentConfigMap{
					"query": {
						Type:        artemis.T(artemis.String()),
						Description: "Case-insensitive name filter.",
					},
				},
				Resolver: artemis.FieldResolverFunc(func(ctx context.Context, source interface{}, info artemis.ResolveInfo) (interface{}, error) {
					query, _ := info.Args().Get("query").(string)
					return r.service.ListUsers(ctx, query), nil
				}),
			},
			"posts": {
				Type: artemis.NonNullOf(artemis.ListOf(artemis.NonNullOf(postType))),
				Args: artemis.ArgumentConfigMap{
					"query": {
						Type:        artemis.T(artemis.String()),
						Description: "Case-insensitive title or body filter.",
					},
				},
				Resolver: artemis.FieldResolverFunc(func(ctx context.Context, source interface{}, info artemis.ResolveInfo) (interface{}, error) {
					query, _ := info.Args().Get("query").(string)
					return r.service.ListPosts(ctx, query), nil
				}),
			},
			"comments": {
				Type: artemis.NonNullOf(artemis.ListOf(artemis.NonNullOf(commentType))),
				Resolver: artemis.FieldResolverFunc(func(ctx context.Context, source interface{}, info artemis.ResolveInfo) (interface{}, error) {
					return r.service.ListComments(ctx), nil
				}),
			},
		},
	}

	createUserInput := &artemis.InputObjectConfig{
		Name: "CreateUserInput",
		Fields: artemis.InputFields{
			"name":  {Type: artemis.NonNullOfType(artemis.String())},
			"email": {Type: artemis.NonNullOfType(artemis.String())},
			"age":   {Type: artemis.T(artemis.Int())},
		},
	}
	updateUserInput := &artemis.InputObjectConfig{
		Name: "UpdateUserInput",
		Fields: artemis.InputFields{
			"name":  {Type: artemis.T(artemis.String())},
			"email": {Type: artemis.T(artemis.String())},
			"age":   {Type: artemis.T(artemis.Int())},
		},
	}
	createPostInput := &artemis.InputObjectConfig{
		Name: "CreatePostInput",
		Fields: artemis.InputFields{
			"title":     {Type: artemis.NonNullOfType(artemis.String())},
			"body":      {Type: artemis.NonNullOfType(artemis.String())},
			"published": {Type: artemis.NonNullOfType(artemis.Boolean())},
			"author":    {Type: artemis.NonNullOfType(artemis.ID())},
		},
	}
	updatePostInput := &artemis.InputObjectConfig{
		Name: "UpdatePostInput",
		Fields: artemis.InputFields{
			"title":     {Type: artemis.T(artemis.String())},
			"body":      {Type: artemis.T(artemis.String())},
			"published": {Type: artemis.T(artemis.Boolean())},
		},
	}
	createCommentInput := &artemis.InputObjectConfig{
		Name: "CreateCommentInput",
		Fields: artemis.InputFields{
			"text":   {Type: artemis.NonNullOfType(artemis.String())},
			"author": {Type: artemis.NonNullOfType(artemis.ID())},
			"post":   {Type: artemis.NonNullOfType(artemis.ID())},
		},
	}
	updateCommentInput := &artemis.InputObjectConfig{
		Name: "UpdateCommentInput",
		Fields: artemis.InputFields{
			"text": {Type: artemis.T(artemis.String())},
		},
	}

	mutationType := &artemis.ObjectConfig{
		Name: "Mutation",
		Fields: artemis.Fields{
			"createUser": {
				Type: artemis.NonNullOf(userType),
				Args: artemis.ArgumentConfigMap{
					"data": {Type: artemis.NonNullOf(createUserInput)},
				},
				Resolver: artemis.FieldResolverFunc(func(ctx context.Context, source interface{}, info artemis.ResolveInfo) (interface{}, error) {
					user, err := r.service.CreateUser(ctx, decodeCreateUserInput(info.Args().Get("data")))
					if err != nil {
						return nil, gqlError(err)
					}
					return user, nil
				}),
			},
			"updateUser": {
				Type: artemis.NonNullOf(userType),
				Args: artemis.ArgumentConfigMap{
					"id":   {Type: artemis.NonNullOfType(artemis.ID())},
					"data": {Type: artemis.NonNullOf(updateUserInput)},
				},
				Resolver: artemis.FieldResolverFunc(func(ctx context.Context, source interface{}, info artemis.ResolveInfo) (interface{}, error) {
					id, _ := info.Args().Get("id").(string)
					user, err := r.service.UpdateUser(ctx, id, decodeUpdateUserInput(info.Args().Get("data")))
					if err != nil {
						return nil, gqlError(err)
					}
					return user, nil
				}),
			},
			"deleteUser": {
				Type: artemis.NonNullOf(userType),
				Args: artemis.ArgumentConfigMap{
					"id": {Type: artemis.NonNullOfType(artemis.ID())},
				},
				Resolver: artemis.FieldResolverFunc(func(ctx context.Context, source interface{}, info artemis.ResolveInfo) (interface{}, error) {
					id, _ := info.Args().Get("id").(string)
					user, err := r.service.DeleteUser(ctx, id)
					if err != nil {
						return nil, gqlError(err)
					}
					return user, nil
				}),
			},
			"createPost": {
				Type: artemis.NonNullOf(postType),
				Args: artemis.ArgumentConfigMap{
					"data": {Type: artemis.NonNullOf(createPostInput)},
				},
				Resolver: artemis.FieldResolverFunc(func(ctx context.Context, source interface{}, info artemis.ResolveInfo) (interface{}, error) {
					post, err := r.service.CreatePost(ctx, decodeCreatePostInput(info.Args().Get("data")))
					if err != nil {
						return nil, gqlError(err)
					}
					return post, nil
				}),
			},
			"updatePost": {
				Type: artemis.NonNullOf(postType),
				Args: artemis.ArgumentConfigMap{
					"id":   {Type: artemis.NonNullOfType(artemis.ID())},
					"data": {Type: artemis.NonNullOf(updatePostInput)},
				},
				Resolver: artemis.FieldResolverFunc(func(ctx context.Context, source interface{}, info artemis.ResolveInfo) (interface{}, error) {
					id, _ := info.Args().Get("id").(string)
					post, err := r.service.UpdatePost(ctx, id, decodeUpdatePostInput(info.Args().Get("data")))
					if err != nil {
						return nil, gqlError(err)
					}
					return post, nil
				}),
			},
			"deletePost": {
				Type: artemis.NonNullOf(postType),
				Args: artemis.ArgumentConfigMap{
					"id": {Type: artemis.NonNullOfType(artemis.ID())},
				},
				Resolver: artemis.FieldResolverFunc(func(ctx context.Context, source interface{}, info artemis.ResolveInfo) (interface{}, error) {
					id, _ := info.Args().Get("id").(string)
					post, err := r.service.DeletePost(ctx, id)
					if err != nil {
						return nil, gqlError(err)
					}
					return post, nil
				}),
			},
			"createComment": {
				Type: artemis.NonNullOf(commentType),
				Args: artemis.ArgumentConfigMap{
					"data": {Type: artemis.NonNullOf(createCommentInput)},
				},
				Resolver: artemis.FieldResolverFunc(func(ctx context.Context, source interface{}, info artemis.ResolveInfo) (interface{}, error) {
					comment, err := r.service.CreateComment(ctx, decodeCreateCommentInput(info.Args().Get("data")))
					if err != nil {
						return nil, gqlError(err)
					}
					return comment, nil
				}),
			},
			"updateComment": {
				Type: artemis.NonNullOf(commentType),
				Args: artemis.ArgumentConfigMap{
					"id":   {Type: artemis.NonNullOfType(artemis.ID())},
					"data": {Type: artemis.NonNullOf(updateCommentInput)},
				},
				Resolver: artemis.FieldResolverFunc(func(ctx context.Context, source interface{}, info artemis.ResolveInfo) (interface{}, error) {
					id, _ := info.Args().Get("id").(string)
					comment, err := r.service.UpdateComment(ctx, id, decodeUpdateCommentInput(info.Args().Get("data")))
					if err != nil {
						return nil, gqlError(err)
					}
					return comment, nil
				}),
			},
			"deleteComment": {
				Type: artemis.NonNullOf(commentType),
				Args: artemis.ArgumentConfigMap{
					"id": {Type: artemis.NonNullOfType(artemis.ID())},
				},
				Resolver: artemis.FieldResolverFunc(func(ctx context.Context, source interface{}, info artemis.ResolveInfo) (interface{}, error) {
					id, _ := info.Args().Get("id").(string)
					comment, err := r.service.DeleteComment(ctx, id)
					if err != nil {
						return nil, gqlError(err)
					}
					return comment, nil
				}),
			},
		},
	}

	// Subscription fields resolve against the event delivered as the
	// root value, one execution per event.
	subscriptionType := &artemis.ObjectConfig{
		Name: "Subscription",
		Fields: artemis.Fields{
			"post": {
				Type:        artemis.NonNullOf(postType),
				Description: "Fires for every newly created published post.",
				Resolver: artemis.FieldResolverFunc(func(ctx context.Context, source interface{}, info artemis.ResolveInfo) (interface{}, error) {
					return info.RootValue(), nil
				}),
			},
			"comment": {
				Type:        artemis.NonNullOf(commentType),
				Description: "Fires for every new comment on the given post.",
				Args: artemis.ArgumentConfigMap{
					"postId": {Type: artemis.NonNullOfType(artemis.ID())},
				},
				Resolver: artemis.FieldResolverFunc(func(ctx context.Context, source interface{}, info artemis.ResolveInfo) (interface{}, error) {
					return info.RootValue(), nil
				}),
			},
		},
	}

	query, err := artemis.NewObject(queryType)
	if err != nil {
		return nil, err
	}
	mutation, err := artemis.NewObject(mutationType)
	if err != nil {
		return nil, err
	}
	subscription, err := artemis.NewObject(subscriptionType)
	if err != nil {
		return nil, err
	}

	return artemis.NewSchema(&artemis.SchemaConfig{
		Query:        query,
		Mutation:     mutation,
		Subscription: subscription,
	})
}
