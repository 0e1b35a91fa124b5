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

// MongoLedgerRepository implements LedgerRepository using MongoDB.
type MongoLedgerRepository struct {
	accounts     *mongo.Collection
	transactions *mongo.Collection
}

// NewMongoLedgerRepository creates the repository and ensures the unique
// (companyId, accountNumber) index.
func NewMongoLedgerRepository(db *mongo.Database) ports.LedgerRepository {
	r := &MongoLedgerRepository{
		accounts:     db.Collection("accounts"),
		transactions: db.Collection("transactions"),
	}

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "companyId", Value: 1}, {Key: "accountNumber", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, _ = r.accounts.Indexes().CreateOne(context.Background(), indexModel)

	return r
}

// CreateAccount inserts a chart-of-accounts entry. Duplicate account numbers
// within a company fail with ErrAlreadyExists.
func (r *MongoLedgerRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	doc := entity.AccountDocFromDomain(account)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt

	_, err := r.accounts.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	account.ID = doc.ID.Hex()
	account.CreatedAt = doc.CreatedAt
	account.UpdatedAt = doc.UpdatedAt
	return nil
}

// FindAccount retrieves an account scoped to a company.
func (r *MongoLedgerRepository) FindAccount(ctx context.Context, companyID, accountID string) (*domain.Account, error) {
	objID, err := primitive.ObjectIDFromHex(accountID)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var doc entity.AccountDoc
	err = r.accounts.FindOne(ctx, bson.M{"_id": objID, "companyId": companyID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return doc.ToDomain(), nil
}

// ListAccounts returns the company's chart of accounts.
func (r *MongoLedgerRepository) ListAccounts(ctx context.Context, companyID string) ([]*domain.Account, error) {
	opts := options.Find().SetSort(bson.D{{Key: "accountNumber", Value: 1}})
	cursor, err := r.accounts.Find(ctx, bson.M{"companyId": companyID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer cursor.Close(ctx)

	var accounts []*domain.Account
	for cursor.Next(ctx) {
		var doc entity.AccountDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode account: %w", err)
		}
		accounts = append(accounts, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return accounts, nil
}

// UpdateAccount replaces mutable account fields.
func (r *MongoLedgerRepository) UpdateAccount(ctx context.Context, account *domain.Account) error {
	objID, err := primitive.ObjectIDFromHex(account.ID)
	if err != nil {
		return domain.ErrNotFound
	}

	// Balance is never written here; postings go through ApplyBalanceDelta.
	set := bson.M{
		"name":        account.Name,
		"type":        account.Type,
		"subtype":     account.Subtype,
		"description": account.Description,
		"isActive":    account.IsActive,
		"updatedAt":   time.Now(),
	}

	result, err := r.accounts.UpdateOne(ctx, bson.M{"_id": objID, "companyId": account.CompanyID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ApplyBalanceDelta atomically increments an account's balance with $inc.
func (r *MongoLedgerRepository) ApplyBalanceDelta(ctx context.Context, companyID, accountID string, delta int64) error {
	objID, err := primitive.ObjectIDFromHex(accountID)
	if err != nil {
		return domain.ErrNotFound
	}

	update := bson.M{
		"$inc": bson.M{"balance": delta},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	result, err := r.accounts.UpdateOne(ctx, bson.M{"_id": objID, "companyId": companyID}, update)
	if err != nil {
		return fmt.Errorf("failed to apply balance delta: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateTransaction inserts a journal transaction with its lines.
func (r *MongoLedgerRepository) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	doc := entity.TransactionDocFromDomain(tx)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt

	_, err := r.transactions.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	tx.ID = doc.ID.Hex()
	tx.CreatedAt = doc.CreatedAt
	tx.UpdatedAt = doc.UpdatedAt
	return nil
}

// FindTransaction retrieves a transaction scoped to a company.
func (r *MongoLedgerRepository) FindTransaction(ctx context.Context, companyID, txID string) (*domain.Transaction, error) {
	objID, err := primitive.ObjectIDFromHex(txID)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var doc entity.TransactionDoc
	err = r.transactions.FindOne(ctx, bson.M{"_id": objID, "companyId": companyID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return doc.ToDomain(), nil
}

// ListTransactions returns the company's transactions, newest first.
func (r *MongoLedgerRepository) ListTransactions(ctx context.Context, companyID string) ([]*domain.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "transactionDate", Value: -1}})
	cursor, err := r.transactions.Find(ctx, bson.M{"companyId": companyID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var txs []*domain.Transaction
	for cursor.Next(ctx) {
		var doc entity.TransactionDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode transaction: %w", err)
		}
		txs = append(txs, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return txs, nil
}
