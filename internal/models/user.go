package models

// User is the storefront identity record. The password only travels on
// registration; the backend never echoes it back.
type User struct {
	ID       int    `json:"id,omitempty"`
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password,omitempty" validate:"omitempty,min=6"`
}

// LoginResponse is the body returned by POST /usuarios/login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"usuario"`
}
