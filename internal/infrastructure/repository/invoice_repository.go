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

// MongoInvoiceRepository implements InvoiceRepository using MongoDB.
type MongoInvoiceRepository struct {
	invoices *mongo.Collection
	bills    *mongo.Collection
}

// NewMongoInvoiceRepository creates the repository and ensures unique
// (companyId, number) indexes for invoices and bills.
func NewMongoInvoiceRepository(db *mongo.Database) ports.InvoiceRepository {
	r := &MongoInvoiceRepository{
		invoices: db.Collection("invoices"),
		bills:    db.Collection("bills"),
	}

	_, _ = r.invoices.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "companyId", Value: 1}, {Key: "invoiceNumber", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	_, _ = r.bills.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "companyId", Value: 1}, {Key: "billNumber", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return r
}

// CreateInvoice inserts a new invoice. Duplicate numbers within a company
// fail with ErrAlreadyExists.
func (r *MongoInvoiceRepository) CreateInvoice(ctx context.Context, inv *domain.Invoice) error {
	doc := entity.InvoiceDocFromDomain(inv)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt

	_, err := r.invoices.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	inv.ID = doc.ID.Hex()
	inv.CreatedAt = doc.CreatedAt
	inv.UpdatedAt = doc.UpdatedAt
	return nil
}

// FindInvoice retrieves an invoice scoped to a company.
func (r *MongoInvoiceRepository) FindInvoice(ctx context.Context, companyID, invoiceID string) (*domain.Invoice, error) {
	objID, err := primitive.ObjectIDFromHex(invoiceID)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var doc entity.InvoiceDoc
	err = r.invoices.FindOne(ctx, bson.M{"_id": objID, "companyId": companyID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	return doc.ToDomain(), nil
}

// ListInvoices returns the company's invoices, newest first.
func (r *MongoInvoiceRepository) ListInvoices(ctx context.Context, companyID string) ([]*domain.Invoice, error) {
	opts := options.Find().SetSort(bson.D{{Key: "invoiceDate", Value: -1}})
	cursor, err := r.invoices.Find(ctx, bson.M{"companyId": companyID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*domain.Invoice
	for cursor.Next(ctx) {
		var doc entity.InvoiceDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode invoice: %w", err)
		}
		result = append(result, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return result, nil
}

// UpdateInvoice replaces mutable invoice fields.
func (r *MongoInvoiceRepository) UpdateInvoice(ctx context.Context, inv *domain.Invoice) error {
	objID, err := primitive.ObjectIDFromHex(inv.ID)
	if err != nil {
		return domain.ErrNotFound
	}

	set := bson.M{
		"customerName": inv.CustomerName,
		"invoiceDate":  inv.InvoiceDate,
		"dueDate":      inv.DueDate,
		"subtotal":     inv.Subtotal,
		"taxAmount":    inv.TaxAmount,
		"total":        inv.Total,
		"status":       inv.Status,
		"notes":        inv.Notes,
		"updatedAt":    time.Now(),
	}

	result, err := r.invoices.UpdateOne(ctx, bson.M{"_id": objID, "companyId": inv.CompanyID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateBill inserts a new bill.
func (r *MongoInvoiceRepository) CreateBill(ctx context.Context, bill *domain.Bill) error {
	doc := entity.BillDocFromDomain(bill)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt

	_, err := r.bills.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create bill: %w", err)
	}

	bill.ID = doc.ID.Hex()
	bill.CreatedAt = doc.CreatedAt
	bill.UpdatedAt = doc.UpdatedAt
	return nil
}

// FindBill retrieves a bill scoped to a company.
func (r *MongoInvoiceRepository) FindBill(ctx context.Context, companyID, billID string) (*domain.Bill, error) {
	objID, err := primitive.ObjectIDFromHex(billID)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var doc entity.BillDoc
	err = r.bills.FindOne(ctx, bson.M{"_id": objID, "companyId": companyID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	return doc.ToDomain(), nil
}

// ListBills returns the company's bills, newest first.
func (r *MongoInvoiceRepository) ListBills(ctx context.Context, companyID string) ([]*domain.Bill, error) {
	opts := options.Find().SetSort(bson.D{{Key: "billDate", Value: -1}})
	cursor, err := r.bills.Find(ctx, bson.M{"companyId": companyID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*domain.Bill
	for cursor.Next(ctx) {
		var doc entity.BillDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode bill: %w", err)
		}
		result = append(result, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return result, nil
}

// UpdateBill replaces mutable bill fields.
func (r *MongoInvoiceRepository) UpdateBill(ctx context.Context, bill *domain.Bill) error {
	objID, err := primitive.ObjectIDFromHex(bill.ID)
	if err != nil {
		return domain.ErrNotFound
	}

	set := bson.M{
		"vendorName": bill.VendorName,
		"billDate":   bill.BillDate,
		"dueDate":    bill.DueDate,
		"subtotal":   bill.Subtotal,
		"taxAmount":  bill.TaxAmount,
		"total":      bill.Total,
		"status":     bill.Status,
		"notes":      bill.Notes,
		"updatedAt":  time.Now(),
	}

	result, err := r.bills.UpdateOne(ctx, bson.M{"_id": objID, "companyId": bill.CompanyID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
