package store

// User is a stored account.
type User struct {
	UID          string
	Email        string
	DisplayName  string
	PasswordHash []byte
	CreatedAt    int64
}

// Doc is a stored document with its raw JSON payload.
type Doc struct {
	Collection string
	ID         string
	Data       string
	CreatedAt  int64
	UpdatedAt  int64
}
