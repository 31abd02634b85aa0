package models

// Me represents the authenticated user's account summary.
type Me struct {
	UserID      string    `json:"userId"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Locale      string    `json:"locale"`
	HomeCity    *string   `json:"homeCity,omitempty"`
	CreatedAt   Timestamp `json:"createdAt"`
}

// MeInput is the request body for updating user settings.
type MeInput struct {
	DisplayName *string `json:"displayName,omitempty" validate:"omitempty,max=80"`
	Locale      *string `json:"locale,omitempty" validate:"omitempty,bcp47_language_tag"`
	HomeCity    *string `json:"homeCity,omitempty" validate:"omitempty,max=120"`
}

// RegisterRequest is the request body for account creation.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"displayName" validate:"required,max=80"`
}

// LoginRequest is the request body for password login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is the request body for rotating a refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AuthTokens is the response body for successful authentication.
type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int    `json:"expiresIn"`
}
