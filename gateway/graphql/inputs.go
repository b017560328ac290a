package graphql

import "github.com/c360/blogstream/blog"

// Input decoders. The engine coerces input objects into
// map[string]interface{} values; for update inputs a missing key means
// the field was omitted, so key presence drives the partial-update
// semantics. Required fields were already enforced by coercion.

func decodeCreateUserInput(v interface{}) blog.CreateUserInput {
	m, _ := v.(map[string]interface{})
	in := blog.CreateUserInput{}
	in.Name, _ = m["name"].(string)
	in.Email, _ = m["email"].(string)
	if age, ok := m["age"].(int); ok {
		in.Age = &age
	}
	return in
}

func decodeUpdateUserInput(v interface{}) blog.UpdateUserInput {
	m, _ := v.(map[string]interface{})
	in := blog.UpdateUserInput{}
	if name, ok := m["name"].(string); ok {
		in.Name = blog.Some(name)
	}
	if email, ok := m["email"].(string); ok {
		in.Email = blog.Some(email)
	}
	// A present null clears the age; an absent key leaves it alone.
	if raw, present := m["age"]; present {
		if age, ok := raw.(int); ok {
			in.Age = blog.Some(&age)
		} else {
			in.Age = blog.Some[*int](nil)
		}
	}
	return in
}

func decodeCreatePostInput(v interface{}) blog.CreatePostInput {
	m, _ := v.(map[string]interface{})
	in := blog.CreatePostInput{}
	in.Title, _ = m["title"].(string)
	in.Body, _ = m["body"].(string)
	in.Published, _ = m["published"].(bool)
	in.Author, _ = m["author"].(string)
	return in
}

func decodeUpdatePostInput(v interface{}) blog.UpdatePostInput {
	m, _ := v.(map[string]interface{})
	in := blog.UpdatePostInput{}
	if title, ok := m["title"].(string); ok {
		in.Title = blog.Some(title)
	}
	if body, ok := m["body"].(string); ok {
		in.Body = blog.Some(body)
	}
	if published, ok := m["published"].(bool); ok {
		in.Published = blog.Some(published)
	}
	return in
}

func decodeCreateCommentInput(v interface{}) blog.CreateCommentInput {
	m, _ := v.(map[string]interface{})
	in := blog.CreateCommentInput{}
	in.Text, _ = m["text"].(string)
	in.Author, _ = m["author"].(string)
	in.Post, _ = m["post"].(string)
	return in
}

func decodeUpdateCommentInput(v interface{}) blog.UpdateCommentInput {
	m, _ := v.(map[string]interface{})
	in := blog.UpdateCommentInput{}
	if text, ok := m["text"].(string); ok {
		in.Text = blog.Some(text)
	}
	return in
}
