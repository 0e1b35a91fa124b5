package entity

import (
	"time"

	"finbooks/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConnectionDoc represents a QuickBooks connection in MongoDB.
type ConnectionDoc struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty"`
	CompanyID             string             `bson:"companyId"`
	RealmID               string             `bson:"realmId"`
	AccessToken           string             `bson:"accessToken"`
	RefreshToken          string             `bson:"refreshToken"`
	AccessTokenExpiresAt  time.Time          `bson:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt time.Time          `bson:"refreshTokenExpiresAt"`
	CreatedBy             string             `bson:"createdBy"`
	UpdatedBy             string             `bson:"updatedBy"`
	CreatedAt             time.Time          `bson:"createdAt"`
	UpdatedAt             time.Time          `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity.
func (d *ConnectionDoc) ToDomain() *domain.Connection {
	return &domain.Connection{
		ID:                    d.ID.Hex(),
		CompanyID:             d.CompanyID,
		RealmID:               d.RealmID,
		AccessToken:           d.AccessToken,
		RefreshToken:          d.RefreshToken,
		AccessTokenExpiresAt:  d.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: d.RefreshTokenExpiresAt,
		CreatedBy:             d.CreatedBy,
		UpdatedBy:             d.UpdatedBy,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
	}
}

// ConnectionDocFromDomain converts a domain entity to a MongoDB document.
func ConnectionDocFromDomain(conn *domain.Connection) *ConnectionDoc {
	doc := &ConnectionDoc{
		CompanyID:             conn.CompanyID,
		RealmID:               conn.RealmID,
		AccessToken:           conn.AccessToken,
		RefreshToken:          conn.RefreshToken,
		AccessTokenExpiresAt:  conn.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: conn.RefreshTokenExpiresAt,
		CreatedBy:             conn.CreatedBy,
		UpdatedBy:             conn.UpdatedBy,
		CreatedAt:             conn.CreatedAt,
		UpdatedAt:             conn.UpdatedAt,
	}

	if conn.ID != "" {
		if objID, err := primitive.ObjectIDFromHex(conn.ID); err == nil {
			doc.ID = objID
		}
	}

	return doc
}
