package models

import "time"

// Comment is embedded in a Post and is append-only. Author is the username of
// the commenter at the time of writing, stored as plain text.
type Comment struct {
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostAuthor is the populated author reference returned with a Post.
type PostAuthor struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

// Post is an article owned by its author. The author reference is set at
// creation and never changes afterwards.
type Post struct {
	ID        string     `json:"_id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Author    PostAuthor `json:"author"`
	Comments  []Comment  `json:"comments"`
	CreatedAt time.Time  `json:"createdAt"`
}
