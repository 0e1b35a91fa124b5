package entity

import (
	"time"

	"finbooks/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserDoc represents a user in MongoDB.
type UserDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"passwordHash"`
	FirstName    string             `bson:"firstName"`
	LastName     string             `bson:"lastName"`
	Role         string             `bson:"role"`
	IsActive     bool               `bson:"isActive"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d *UserDoc) ToDomain() *domain.User {
	return &domain.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Role:         d.Role,
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func UserDocFromDomain(u *domain.User) *UserDoc {
	doc := &UserDoc{
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Role:         u.Role,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if u.ID != "" {
		if objID, err := primitive.ObjectIDFromHex(u.ID); err == nil {
			doc.ID = objID
		}
	}
	return doc
}

// CompanyDoc represents a company in MongoDB.
type CompanyDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	TaxID         string             `bson:"taxId,omitempty"`
	AddressLine1  string             `bson:"addressLine1,omitempty"`
	AddressLine2  string             `bson:"addressLine2,omitempty"`
	City          string             `bson:"city,omitempty"`
	State         string             `bson:"state,omitempty"`
	PostalCode    string             `bson:"postalCode,omitempty"`
	Country       string             `bson:"country,omitempty"`
	Phone         string             `bson:"phone,omitempty"`
	Email         string             `bson:"email,omitempty"`
	Currency      string             `bson:"currency"`
	FiscalYearEnd string             `bson:"fiscalYearEnd,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func (d *CompanyDoc) ToDomain() *domain.Company {
	return &domain.Company{
		ID:            d.ID.Hex(),
		Name:          d.Name,
		TaxID:         d.TaxID,
		AddressLine1:  d.AddressLine1,
		AddressLine2:  d.AddressLine2,
		City:          d.City,
		State:         d.State,
		PostalCode:    d.PostalCode,
		Country:       d.Country,
		Phone:         d.Phone,
		Email:         d.Email,
		Currency:      d.Currency,
		FiscalYearEnd: d.FiscalYearEnd,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func CompanyDocFromDomain(c *domain.Company) *CompanyDoc {
	doc := &CompanyDoc{
		Name:          c.Name,
		TaxID:         c.TaxID,
		AddressLine1:  c.AddressLine1,
		AddressLine2:  c.AddressLine2,
		City:          c.City,
		State:         c.State,
		PostalCode:    c.PostalCode,
		Country:       c.Country,
		Phone:         c.Phone,
		Email:         c.Email,
		Currency:      c.Currency,
		FiscalYearEnd: c.FiscalYearEnd,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
	if c.ID != "" {
		if objID, err := primitive.ObjectIDFromHex(c.ID); err == nil {
			doc.ID = objID
		}
	}
	return doc
}

// MembershipDoc links a user to a company.
type MembershipDoc struct {
	UserID    string    `bson:"userId"`
	CompanyID string    `bson:"companyId"`
	Role      string    `bson:"role"`
	CreatedAt time.Time `bson:"createdAt"`
}

func (d *MembershipDoc) ToDomain() *domain.Membership {
	return &domain.Membership{
		UserID:    d.UserID,
		CompanyID: d.CompanyID,
		Role:      d.Role,
		CreatedAt: d.CreatedAt,
	}
}

// AccountDoc represents a chart-of-accounts entry in MongoDB.
type AccountDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	CompanyID     string             `bson:"companyId"`
	AccountNumber string             `bson:"accountNumber"`
	Name          string             `bson:"name"`
	Type          string             `bson:"type"`
	Subtype       string             `bson:"subtype,omitempty"`
	Description   string             `bson:"description,omitempty"`
	IsActive      bool               `bson:"isActive"`
	Balance       int64              `bson:"balance"`
	IsBankAccount bool               `bson:"isBankAccount"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func (d *AccountDoc) ToDomain() *domain.Account {
	return &domain.Account{
		ID:            d.ID.Hex(),
		CompanyID:     d.CompanyID,
		AccountNumber: d.AccountNumber,
		Name:          d.Name,
		Type:          d.Type,
		Subtype:       d.Subtype,
		Description:   d.Description,
		IsActive:      d.IsActive,
		Balance:       d.Balance,
		IsBankAccount: d.IsBankAccount,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func AccountDocFromDomain(a *domain.Account) *AccountDoc {
	doc := &AccountDoc{
		CompanyID:     a.CompanyID,
		AccountNumber: a.AccountNumber,
		Name:          a.Name,
		Type:          a.Type,
		Subtype:       a.Subtype,
		Description:   a.Description,
		IsActive:      a.IsActive,
		Balance:       a.Balance,
		IsBankAccount: a.IsBankAccount,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
	if a.ID != "" {
		if objID, err := primitive.ObjectIDFromHex(a.ID); err == nil {
			doc.ID = objID
		}
	}
	return doc
}

// TransactionDoc represents a journal transaction with embedded lines.
type TransactionDoc struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty"`
	CompanyID       string               `bson:"companyId"`
	TransactionDate time.Time            `bson:"transactionDate"`
	ReferenceNumber string               `bson:"referenceNumber,omitempty"`
	Description     string               `bson:"description,omitempty"`
	Type            string               `bson:"type"`
	Status          string               `bson:"status"`
	Lines           []TransactionLineDoc `bson:"lines"`
	CreatedBy       string               `bson:"createdBy"`
	CreatedAt       time.Time            `bson:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt"`
}

// TransactionLineDoc is one debit or credit within a transaction.
type TransactionLineDoc struct {
	AccountID   string `bson:"accountId"`
	Debit       int64  `bson:"debit"`
	Credit      int64  `bson:"credit"`
	Description string `bson:"description,omitempty"`
}

func (d *TransactionDoc) ToDomain() *domain.Transaction {
	lines := make([]domain.TransactionLine, 0, len(d.Lines))
	for _, l := range d.Lines {
		lines = append(lines, domain.TransactionLine{
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		})
	}
	return &domain.Transaction{
		ID:              d.ID.Hex(),
		CompanyID:       d.CompanyID,
		TransactionDate: d.TransactionDate,
		ReferenceNumber: d.ReferenceNumber,
		Description:     d.Description,
		Type:            d.Type,
		Status:          d.Status,
		Lines:           lines,
		CreatedBy:       d.CreatedBy,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func TransactionDocFromDomain(t *domain.Transaction) *TransactionDoc {
	lines := make([]TransactionLineDoc, 0, len(t.Lines))
	for _, l := range t.Lines {
		lines = append(lines, TransactionLineDoc{
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		})
	}
	doc := &TransactionDoc{
		CompanyID:       t.CompanyID,
		TransactionDate: t.TransactionDate,
		ReferenceNumber: t.ReferenceNumber,
		Description:     t.Description,
		Type:            t.Type,
		Status:          t.Status,
		Lines:           lines,
		CreatedBy:       t.CreatedBy,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
	if t.ID != "" {
		if objID, err := primitive.ObjectIDFromHex(t.ID); err == nil {
			doc.ID = objID
		}
	}
	return doc
}

// InvoiceDoc represents an invoice in MongoDB.
type InvoiceDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	CompanyID     string             `bson:"companyId"`
	CustomerName  string             `bson:"customerName"`
	TransactionID string             `bson:"transactionId,omitempty"`
	InvoiceNumber string             `bson:"invoiceNumber"`
	InvoiceDate   time.Time          `bson:"invoiceDate"`
	DueDate       time.Time          `bson:"dueDate"`
	Subtotal      int64              `bson:"subtotal"`
	TaxAmount     int64              `bson:"taxAmount"`
	Total         int64              `bson:"total"`
	Status        string             `bson:"status"`
	Notes         string             `bson:"notes,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func (d *InvoiceDoc) ToDomain() *domain.Invoice {
	return &domain.Invoice{
		ID:            d.ID.Hex(),
		CompanyID:     d.CompanyID,
		CustomerName:  d.CustomerName,
		TransactionID: d.TransactionID,
		InvoiceNumber: d.InvoiceNumber,
		InvoiceDate:   d.InvoiceDate,
		DueDate:       d.DueDate,
		Subtotal:      d.Subtotal,
		TaxAmount:     d.TaxAmount,
		Total:         d.Total,
		Status:        d.Status,
		Notes:         d.Notes,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func InvoiceDocFromDomain(i *domain.Invoice) *InvoiceDoc {
	doc := &InvoiceDoc{
		CompanyID:     i.CompanyID,
		CustomerName:  i.CustomerName,
		TransactionID: i.TransactionID,
		InvoiceNumber: i.InvoiceNumber,
		InvoiceDate:   i.InvoiceDate,
		DueDate:       i.DueDate,
		Subtotal:      i.Subtotal,
		TaxAmount:     i.TaxAmount,
		Total:         i.Total,
		Status:        i.Status,
		Notes:         i.Notes,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
	if i.ID != "" {
		if objID, err := primitive.ObjectIDFromHex(i.ID); err == nil {
			doc.ID = objID
		}
	}
	return doc
}

// BillDoc represents a bill in MongoDB.
type BillDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	CompanyID     string             `bson:"companyId"`
	VendorName    string             `bson:"vendorName"`
	TransactionID string             `bson:"transactionId,omitempty"`
	BillNumber    string             `bson:"billNumber"`
	BillDate      time.Time          `bson:"billDate"`
	DueDate       time.Time          `bson:"dueDate"`
	Subtotal      int64              `bson:"subtotal"`
	TaxAmount     int64              `bson:"taxAmount"`
	Total         int64              `bson:"total"`
	Status        string             `bson:"status"`
	Notes         string             `bson:"notes,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func (d *BillDoc) ToDomain() *domain.Bill {
	return &domain.Bill{
		ID:            d.ID.Hex(),
		CompanyID:     d.CompanyID,
		VendorName:    d.VendorName,
		TransactionID: d.TransactionID,
		BillNumber:    d.BillNumber,
		BillDate:      d.BillDate,
		DueDate:       d.DueDate,
		Subtotal:      d.Subtotal,
		TaxAmount:     d.TaxAmount,
		Total:         d.Total,
		Status:        d.Status,
		Notes:         d.Notes,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func BillDocFromDomain(b *domain.Bill) *BillDoc {
	doc := &BillDoc{
		CompanyID:     b.CompanyID,
		VendorName:    b.VendorName,
		TransactionID: b.TransactionID,
		BillNumber:    b.BillNumber,
		BillDate:      b.BillDate,
		DueDate:       b.DueDate,
		Subtotal:      b.Subtotal,
		TaxAmount:     b.TaxAmount,
		Total:         b.Total,
		Status:        b.Status,
		Notes:         b.Notes,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	if b.ID != "" {
		if objID, err := primitive.ObjectIDFromHex(b.ID); err == nil {
			doc.ID = objID
		}
	}
	return doc
}
