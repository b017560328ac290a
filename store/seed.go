package store

func intp(v int) *int { return &v }

// Seed fills the store with the demo dataset. Useful for the playground
// and for manual poking; production deployments start empty.
func Seed(s *Store) {
	for _, u := range []*User{
		{ID: "1", Name: "Luke", Email: "Luke@email.com"},
		{ID: "2", Name: "Lukie Luke", Email: "LukieLuke@email.com", Age: intp(26)},
		{ID: "3", Name: "What's Gewde", Email: "NotYourAverage@email.com", Age: intp(22)},
	} {
		s.AppendUser(u)
	}

	for _, p := range []*Post{
		{ID: "1", Title: "First Post", Body: "This is my first dream", Published: true, Author: "1"},
		{ID: "2", Title: "Second Scene", Body: "This is my second post", Published: true, Author: "1"},
		{ID: "3", Title: "Third Dream", Body: "This is my third scene", Published: false, Author: "2"},
	} {
		s.AppendPost(p)
	}

	for _, c := range []*Comment{
		{ID: "1", Text: "First post!", Author: "1", Post: "1"},
		{ID: "2", Text: "This is so cool!", Author: "3", Post: "2"},
		{ID: "3", Text: "Thanks for sharing.", Author: "3", Post: "1"},
		{ID: "4", Text: "I agree with everything you said.", Author: "2", Post: "2"},
	} {
		s.AppendComment(c)
	}
}
