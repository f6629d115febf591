package model

// TokenRequest is the payload for the token exchange endpoint. Identity
// verification happens upstream in the platform gateway; this service
// mints role-scoped tokens for verified principals.
type TokenRequest struct {
	UserID string `json:"user_id" binding:"required,max=64"`
	Role   string `json:"role" binding:"required,oneof=student guardian instructor"`
}
