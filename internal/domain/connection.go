package domain

import "time"

// Connection holds the QuickBooks credentials for one company. There is at
// most one connection per company; re-authorization overwrites it in place.
type Connection struct {
	ID                    string    `json:"id"`
	CompanyID             string    `json:"company_id"`
	RealmID               string    `json:"realm_id"`
	AccessToken           string    `json:"-"`
	RefreshToken          string    `json:"-"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	CreatedBy             string    `json:"created_by"`
	UpdatedBy             string    `json:"updated_by"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// ConnectionUpdate carries a partial update of a connection record. Nil fields
// are left untouched; updated_at is always bumped by the repository.
type ConnectionUpdate struct {
	RealmID               *string
	AccessToken           *string
	RefreshToken          *string
	AccessTokenExpiresAt  *time.Time
	RefreshTokenExpiresAt *time.Time
	UpdatedBy             *string
}

// TokenPair is the response of the platform token endpoint for both the
// authorization-code and refresh grants. The refresh token is rotated on
// every refresh call, so the returned pair must always be persisted together.
type TokenPair struct {
	AccessToken           string `json:"access_token"`
	RefreshToken          string `json:"refresh_token"`
	ExpiresIn             int64  `json:"expires_in"`
	RefreshTokenExpiresIn int64  `json:"x_refresh_token_expires_in"`
}
