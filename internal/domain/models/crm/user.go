package crm

import (
	"time"
)

// User is the profile of an authenticated account. ID is the token subject.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         *string   `json:"name,omitempty" db:"name"`
	BusinessName *string   `json:"businessName,omitempty" db:"business_name"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// DisplayName returns the user's name, falling back to the email address
func (u *User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Email
}
