package hasura

// Gif is a single animated image tagged with a category
type Gif struct {
	URL      string `json:"url"`
	Category string `json:"category"`
}

// User is a row of the upstream users table
type User struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile int    `json:"mobile"`
}

// GifsResponse represents gifs query results
type GifsResponse struct {
	Gifs []Gif `json:"gifs"`
}

// UsersResponse represents users query results
type UsersResponse struct {
	Users []User `json:"users"`
}

// UserByPKResponse represents users_by_pk results; nil when no row matched
type UserByPKResponse struct {
	User *User `json:"users_by_pk"`
}

// InsertUserResponse represents insert_users_one results
type InsertUserResponse struct {
	User *User `json:"insert_users_one"`
}
