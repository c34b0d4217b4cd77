package model

import "time"

const (
	RoleCompany  = "company"
	RoleConsumer = "consumer"
)

type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	DisplayName  *string   `json:"display_name" db:"display_name"`
	Role         string    `json:"role" db:"role"`
	CompanyID    *string   `json:"company_id,omitempty" db:"company_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type Company struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type JWTClaims struct {
	Sub       string `json:"sub"`
	CompanyID string `json:"company_id,omitempty"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Exp       int64  `json:"exp"`
	Iat       int64  `json:"iat"`
	Iss       string `json:"iss"`
}

// ActingCompany is the company the caller manages: its company ID, or its own
// user ID for company accounts without a separate company record.
func (c *JWTClaims) ActingCompany() string {
	if c.CompanyID != "" {
		return c.CompanyID
	}
	return c.Sub
}
