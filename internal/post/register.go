// Package post keeps an in-process record of posts created after direct
// (pre-signed) uploads. Records live only as long as the process: nothing is
// persisted, and the register starts empty on every restart.
package post

import "sync"

// Post links a directly uploaded object to user-supplied title and description.
type Post struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	FileKey     string `json:"fileKey"`
}

// Register is an ordered, append-only collection of posts. The mutex
// serializes id assignment so concurrent appends never duplicate or skip ids.
type Register struct {
	mu     sync.Mutex
	nextID int
	posts  []Post
}

// NewRegister creates an empty Register. Ids start at 1.
func NewRegister() *Register {
	return &Register{nextID: 1}
}

// Append records a new post and returns it with its assigned id. Inputs are
// not validated; fileKey may reference an object that never completed its
// upload — the register does not check.
func (r *Register) Append(title, description, fileKey string) Post {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := Post{ID: r.nextID, Title: title, Description: description, FileKey: fileKey}
	r.nextID++
	r.posts = append(r.posts, p)
	return p
}

// List returns all posts in creation order. The returned slice is a copy and
// is never nil.
func (r *Register) List() []Post {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Post, len(r.posts))
	copy(out, r.posts)
	return out
}
