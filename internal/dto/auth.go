package dto

// LoginRequest defines the credentials for password login.
type LoginRequest struct {
	Login    string `json:"login" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries the refresh token for access-token renewal.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// GoogleSignInRequest carries a Google ID token for federated sign-in.
type GoogleSignInRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// TokenResponse is the OAuth2-style token payload returned on login/refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}
