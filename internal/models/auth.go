package models

import "github.com/golang-jwt/jwt/v5"

// Principal is the verified caller taken from the access token. The intake
// API trusts the identity provider that issued the token; it never manages
// credentials itself.
type Principal struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// AccessClaims is the JWT payload the API accepts.
type AccessClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// ToPrincipal maps verified claims onto the request principal.
func (c *AccessClaims) ToPrincipal() Principal {
	return Principal{
		UserID: c.Subject,
		Email:  c.Email,
		Name:   c.Name,
	}
}
