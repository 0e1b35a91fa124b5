package repository

import (
	"context"
	"fmt"
	"time"

	"finbooks/internal/domain"
	"finbooks/internal/infrastructure/repository/entity"
	"finbooks/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConnectionRepository implements ConnectionRepository using MongoDB.
// The unique index on companyId enforces the one-connection-per-company
// invariant: under concurrent creates exactly one insert succeeds.
type MongoConnectionRepository struct {
	collection *mongo.Collection
}

// NewMongoConnectionRepository creates the repository and ensures the unique
// index on companyId.
func NewMongoConnectionRepository(db *mongo.Database) ports.ConnectionRepository {
	r := &MongoConnectionRepository{
		collection: db.Collection("quickbooks_connections"),
	}

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "companyId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, _ = r.collection.Indexes().CreateOne(context.Background(), indexModel)

	return r
}

// FindByCompany retrieves the company's connection.
func (r *MongoConnectionRepository) FindByCompany(ctx context.Context, companyID string) (*domain.Connection, error) {
	var doc entity.ConnectionDoc
	err := r.collection.FindOne(ctx, bson.M{"companyId": companyID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}

	return doc.ToDomain(), nil
}

// Create inserts a new connection. Fails with domain.ErrAlreadyExists when the
// company already has one.
func (r *MongoConnectionRepository) Create(ctx context.Context, conn *domain.Connection) error {
	doc := entity.ConnectionDocFromDomain(conn)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt

	_, err := r.collection.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create connection: %w", err)
	}

	conn.ID = doc.ID.Hex()
	conn.CreatedAt = doc.CreatedAt
	conn.UpdatedAt = doc.UpdatedAt
	return nil
}

// Update applies a partial update and returns the updated record. updatedAt
// is bumped on every call.
func (r *MongoConnectionRepository) Update(ctx context.Context, id string, update *domain.ConnectionUpdate) (*domain.Connection, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid connection id: %w", err)
	}

	set := bson.M{"updatedAt": time.Now()}
	if update.RealmID != nil {
		set["realmId"] = *update.RealmID
	}
	if update.AccessToken != nil {
		set["accessToken"] = *update.AccessToken
	}
	if update.RefreshToken != nil {
		set["refreshToken"] = *update.RefreshToken
	}
	if update.AccessTokenExpiresAt != nil {
		set["accessTokenExpiresAt"] = *update.AccessTokenExpiresAt
	}
	if update.RefreshTokenExpiresAt != nil {
		set["refreshTokenExpiresAt"] = *update.RefreshTokenExpiresAt
	}
	if update.UpdatedBy != nil {
		set["updatedBy"] = *update.UpdatedBy
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc entity.ConnectionDoc
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": set}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update connection: %w", err)
	}

	return doc.ToDomain(), nil
}

// Delete removes the record and reports whether one existed.
func (r *MongoConnectionRepository) Delete(ctx context.Context, id string) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("invalid connection id: %w", err)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return false, fmt.Errorf("failed to delete connection: %w", err)
	}

	return result.DeletedCount > 0, nil
}
