package store

// User is a registered author. Age is optional and therefore a pointer;
// nil means the user never provided one.
type User struct {
	ID    string `json:"id"    graphql:"id"`
	Name  string `json:"name"  graphql:"name"`
	Email string `json:"email" graphql:"email"`
	Age   *int   `json:"age,omitempty" graphql:"age"`
}

// Post is an article written by a user. Author holds the ID of the
// authoring User; it is a weak reference resolved by lookup, never an
// ownership pointer.
type Post struct {
	ID        string `json:"id"        graphql:"id"`
	Title     string `json:"title"     graphql:"title"`
	Body      string `json:"body"      graphql:"body"`
	Published bool   `json:"published" graphql:"published"`
	Author    string `json:"author"`
}

// Comment is attached to a published post. Author and Post hold entity
// IDs, resolved on demand like Post.Author.
type Comment struct {
	ID     string `json:"id"   graphql:"id"`
	Text   string `json:"text" graphql:"text"`
	Author string `json:"author"`
	Post   string `json:"post"`
}
