package dto

// IssueTokenRequest is the body of POST /jwt
type IssueTokenRequest struct {
	Email string `json:"email" binding:"required,email"`
}
