package models

// Credentials are posted to the backend login endpoint.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthToken is the login response payload.
type AuthToken struct {
	Token string `json:"token"`
}
