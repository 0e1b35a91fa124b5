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

// MongoCompanyRepository implements CompanyRepository using MongoDB.
type MongoCompanyRepository struct {
	companies   *mongo.Collection
	memberships *mongo.Collection
}

// NewMongoCompanyRepository creates the repository and ensures the unique
// (userId, companyId) membership index.
func NewMongoCompanyRepository(db *mongo.Database) ports.CompanyRepository {
	r := &MongoCompanyRepository{
		companies:   db.Collection("companies"),
		memberships: db.Collection("user_companies"),
	}

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "companyId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, _ = r.memberships.Indexes().CreateOne(context.Background(), indexModel)

	return r
}

// Create inserts a new company.
func (r *MongoCompanyRepository) Create(ctx context.Context, company *domain.Company) error {
	doc := entity.CompanyDocFromDomain(company)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt
	if doc.Currency == "" {
		doc.Currency = "USD"
	}

	_, err := r.companies.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}

	company.ID = doc.ID.Hex()
	company.Currency = doc.Currency
	company.CreatedAt = doc.CreatedAt
	company.UpdatedAt = doc.UpdatedAt
	return nil
}

// FindByID retrieves a company by id.
func (r *MongoCompanyRepository) FindByID(ctx context.Context, id string) (*domain.Company, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var doc entity.CompanyDoc
	err = r.companies.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	return doc.ToDomain(), nil
}

// Update replaces mutable company fields.
func (r *MongoCompanyRepository) Update(ctx context.Context, company *domain.Company) error {
	objID, err := primitive.ObjectIDFromHex(company.ID)
	if err != nil {
		return domain.ErrNotFound
	}

	doc := entity.CompanyDocFromDomain(company)
	doc.UpdatedAt = time.Now()

	result, err := r.companies.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": doc})
	if err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a company and its memberships.
func (r *MongoCompanyRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}

	result, err := r.companies.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}

	if _, err := r.memberships.DeleteMany(ctx, bson.M{"companyId": id}); err != nil {
		return fmt.Errorf("failed to delete memberships: %w", err)
	}
	return nil
}

// AddMember links a user to a company.
func (r *MongoCompanyRepository) AddMember(ctx context.Context, m *domain.Membership) error {
	doc := entity.MembershipDoc{
		UserID:    m.UserID,
		CompanyID: m.CompanyID,
		Role:      m.Role,
		CreatedAt: time.Now(),
	}

	_, err := r.memberships.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}

	m.CreatedAt = doc.CreatedAt
	return nil
}

// FindMembership retrieves a user's membership in a company.
func (r *MongoCompanyRepository) FindMembership(ctx context.Context, userID, companyID string) (*domain.Membership, error) {
	var doc entity.MembershipDoc
	err := r.memberships.FindOne(ctx, bson.M{"userId": userID, "companyId": companyID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	return doc.ToDomain(), nil
}

// ListByUser returns the companies a user belongs to.
func (r *MongoCompanyRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Company, error) {
	cursor, err := r.memberships.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer cursor.Close(ctx)

	var companies []*domain.Company
	for cursor.Next(ctx) {
		var m entity.MembershipDoc
		if err := cursor.Decode(&m); err != nil {
			return nil, fmt.Errorf("failed to decode membership: %w", err)
		}
		company, err := r.FindByID(ctx, m.CompanyID)
		if err == domain.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return companies, nil
}
