package domain

// User is an anonymous chat participant bound to exactly one live connection
// and one room. It is created when the connection joins a room and removed
// when the connection goes away; it is never mutated in between.
type User struct {
	ConnectionID string `json:"id"`
	Username     string `json:"username"`
	Room         string `json:"room"`
}
