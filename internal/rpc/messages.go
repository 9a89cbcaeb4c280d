package rpc

import "github.com/matheus3301/classnotes/internal/docstore"

type Empty struct{}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User      docstore.AuthUser `json:"user"`
	Token     string            `json:"token"`
	ExpiresAt int64             `json:"expiresAt"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"displayName"`
}

type UserResponse struct {
	User docstore.AuthUser `json:"user"`
}

type AddRequest struct {
	Collection string          `json:"collection"`
	Fields     docstore.Fields `json:"fields"`
}

type AddResponse struct {
	ID string `json:"id"`
}

type WriteRequest struct {
	Collection string          `json:"collection"`
	ID         string          `json:"id"`
	Fields     docstore.Fields `json:"fields,omitempty"`
}

type DocRef struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
}

type DocumentResponse struct {
	Document docstore.Document `json:"document"`
}

type QueryRequest struct {
	Query docstore.Query `json:"query"`
}

type QueryResponse struct {
	Docs []docstore.Document `json:"docs"`
}
