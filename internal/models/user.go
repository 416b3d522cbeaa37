package models

import "time"

// User is a registered account. Password holds a bcrypt hash and is nil for
// accounts created through the external identity provider; ProviderID is the
// opaque id handed to us by that provider and is nil for local accounts.
// At least one of the two is always present.
type User struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Password    *string   `json:"-"`
	ProviderID  *string   `json:"-"`
	DisplayName *string   `json:"displayName"`
	PhotoURL    *string   `json:"photoURL"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewUser carries the caller-supplied fields for user creation. ID and
// CreatedAt are assigned by the store.
type NewUser struct {
	Username    string
	Email       string
	Password    *string
	ProviderID  *string
	DisplayName *string
	PhotoURL    *string
}
