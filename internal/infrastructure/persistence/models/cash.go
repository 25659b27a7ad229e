package models

import (
	"time"

	"github.com/ferreteria/backend/internal/domain/cash"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashRegisterModel is the persistence model for the CashRegister aggregate root.
type CashRegisterModel struct {
	BranchAggregateModel
	Name                    string            `gorm:"type:varchar(100);not null"`
	Type                    cash.RegisterType `gorm:"type:varchar(20);not null;index"`
	SuggestedOpeningBalance decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	Description             string            `gorm:"type:text"`
	DeletedAt               *time.Time        `gorm:"index"`
}

// TableName returns the table name for GORM
func (CashRegisterModel) TableName() string {
	return "cash_registers"
}

// ToDomain converts the persistence model to a domain CashRegister.
func (m *CashRegisterModel) ToDomain() *cash.CashRegister {
	return &cash.CashRegister{
		BranchAggregateRoot:     m.ToDomainBranchAggregateRoot(),
		Name:                    m.Name,
		Type:                    m.Type,
		SuggestedOpeningBalance: m.SuggestedOpeningBalance,
		Description:             m.Description,
		DeletedAt:               m.DeletedAt,
	}
}

// FromDomain populates the persistence model from a domain CashRegister.
func (m *CashRegisterModel) FromDomain(r *cash.CashRegister) {
	m.FromDomainBranchAggregateRoot(r.BranchAggregateRoot)
	m.Name = r.Name
	m.Type = r.Type
	m.SuggestedOpeningBalance = r.SuggestedOpeningBalance
	m.Description = r.Description
	m.DeletedAt = r.DeletedAt
}

// CashRegisterModelFromDomain creates a new persistence model from a domain CashRegister.
func CashRegisterModelFromDomain(r *cash.CashRegister) *CashRegisterModel {
	m := &CashRegisterModel{}
	m.FromDomain(r)
	return m
}

// CashSessionModel is the persistence model for the CashSession aggregate root.
// The partial unique index keeps at most one OPEN session per register.
type CashSessionModel struct {
	BranchAggregateModel
	RegisterID      uuid.UUID            `gorm:"type:uuid;not null;index;uniqueIndex:idx_cash_sessions_open_register,where:status = 'OPEN'"`
	UserID          uuid.UUID            `gorm:"type:uuid;not null;index"`
	Status          cash.SessionStatus   `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	OpenedAt        time.Time            `gorm:"not null;index"`
	OpeningBalance  decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	OpeningNotes    string               `gorm:"type:varchar(500)"`
	ClosedAt        *time.Time           `gorm:"index"`
	ClosedBy        *uuid.UUID           `gorm:"type:uuid"`
	ExpectedBalance *decimal.Decimal     `gorm:"type:decimal(18,2)"`
	ActualBalance   *decimal.Decimal     `gorm:"type:decimal(18,2)"`
	Difference      *decimal.Decimal     `gorm:"type:decimal(18,2)"`
	DeviationPct    *decimal.Decimal     `gorm:"type:decimal(9,4)"`
	DeviationLevel  *cash.DeviationLevel `gorm:"type:varchar(20)"`
	ClosingNotes    string               `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (CashSessionModel) TableName() string {
	return "cash_sessions"
}

// ToDomain converts the persistence model to a domain CashSession.
func (m *CashSessionModel) ToDomain() *cash.CashSession {
	return &cash.CashSession{
		BranchAggregateRoot: m.ToDomainBranchAggregateRoot(),
		RegisterID:          m.RegisterID,
		UserID:              m.UserID,
		Status:              m.Status,
		OpenedAt:            m.OpenedAt,
		OpeningBalance:      m.OpeningBalance,
		OpeningNotes:        m.OpeningNotes,
		ClosedAt:            m.ClosedAt,
		ClosedBy:            m.ClosedBy,
		ExpectedBalance:     m.ExpectedBalance,
		ActualBalance:       m.ActualBalance,
		Difference:          m.Difference,
		DeviationPct:        m.DeviationPct,
		DeviationLevel:      m.DeviationLevel,
		ClosingNotes:        m.ClosingNotes,
	}
}

// FromDomain populates the persistence model from a domain CashSession.
func (m *CashSessionModel) FromDomain(s *cash.CashSession) {
	m.FromDomainBranchAggregateRoot(s.BranchAggregateRoot)
	m.RegisterID = s.RegisterID
	m.UserID = s.UserID
	m.Status = s.Status
	m.OpenedAt = s.OpenedAt
	m.OpeningBalance = s.OpeningBalance
	m.OpeningNotes = s.OpeningNotes
	m.ClosedAt = s.ClosedAt
	m.ClosedBy = s.ClosedBy
	m.ExpectedBalance = s.ExpectedBalance
	m.ActualBalance = s.ActualBalance
	m.Difference = s.Difference
	m.DeviationPct = s.DeviationPct
	m.DeviationLevel = s.DeviationLevel
	m.ClosingNotes = s.ClosingNotes
}

// CashSessionModelFromDomain creates a new persistence model from a domain CashSession.
func CashSessionModelFromDomain(s *cash.CashSession) *CashSessionModel {
	m := &CashSessionModel{}
	m.FromDomain(s)
	return m
}

// LedgerEntryModel is the persistence model for ledger entries.
// Rows are insert-only; there is no version column.
type LedgerEntryModel struct {
	BaseModel
	BranchID           uuid.UUID          `gorm:"type:uuid;not null;index"`
	RegisterID         uuid.UUID          `gorm:"type:uuid;not null;index"`
	SessionID          *uuid.UUID         `gorm:"type:uuid;index"`
	Type               cash.EntryType     `gorm:"type:varchar(30);not null;index"`
	Amount             decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	Delta              decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	PaymentMethod      cash.PaymentMethod `gorm:"type:varchar(20);not null;index"`
	RefSaleID          *uuid.UUID         `gorm:"type:uuid;index"`
	RefCreditSaleID    *uuid.UUID         `gorm:"type:uuid"`
	RefInstallmentID   *uuid.UUID         `gorm:"type:uuid;index"`
	RefPurchaseOrderID *uuid.UUID         `gorm:"type:uuid"`
	RefExpenseID       *uuid.UUID         `gorm:"type:uuid"`
	RefTransferID      *uuid.UUID         `gorm:"type:uuid"`
	Description        string             `gorm:"type:varchar(500)"`
	RecordedBy         *uuid.UUID         `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "cash_ledger_entries"
}

// ToDomain converts the persistence model to a domain LedgerEntry.
func (m *LedgerEntryModel) ToDomain() *cash.LedgerEntry {
	return &cash.LedgerEntry{
		BaseEntity:    m.BaseModel.ToDomain(),
		BranchID:      m.BranchID,
		RegisterID:    m.RegisterID,
		SessionID:     m.SessionID,
		Type:          m.Type,
		Amount:        m.Amount,
		Delta:         m.Delta,
		PaymentMethod: m.PaymentMethod,
		Reference: cash.Reference{
			SaleID:          m.RefSaleID,
			CreditSaleID:    m.RefCreditSaleID,
			InstallmentID:   m.RefInstallmentID,
			PurchaseOrderID: m.RefPurchaseOrderID,
			ExpenseID:       m.RefExpenseID,
			TransferID:      m.RefTransferID,
		},
		Description: m.Description,
		RecordedBy:  m.RecordedBy,
	}
}

// FromDomain populates the persistence model from a domain LedgerEntry.
func (m *LedgerEntryModel) FromDomain(e *cash.LedgerEntry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.BranchID = e.BranchID
	m.RegisterID = e.RegisterID
	m.SessionID = e.SessionID
	m.Type = e.Type
	m.Amount = e.Amount
	m.Delta = e.Delta
	m.PaymentMethod = e.PaymentMethod
	m.RefSaleID = e.Reference.SaleID
	m.RefCreditSaleID = e.Reference.CreditSaleID
	m.RefInstallmentID = e.Reference.InstallmentID
	m.RefPurchaseOrderID = e.Reference.PurchaseOrderID
	m.RefExpenseID = e.Reference.ExpenseID
	m.RefTransferID = e.Reference.TransferID
	m.Description = e.Description
	m.RecordedBy = e.RecordedBy
}

// LedgerEntryModelFromDomain creates a new persistence model from a domain LedgerEntry.
func LedgerEntryModelFromDomain(e *cash.LedgerEntry) *LedgerEntryModel {
	m := &LedgerEntryModel{}
	m.FromDomain(e)
	return m
}

// CreditSaleModel is the persistence model for the CreditSale aggregate root.
type CreditSaleModel struct {
	BranchAggregateModel
	SaleID           uuid.UUID                 `gorm:"type:uuid;not null;uniqueIndex"`
	CustomerID       *uuid.UUID                `gorm:"type:uuid;index"`
	SaleDate         time.Time                 `gorm:"not null"`
	Total            decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	InitialPayment   decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	RemainingBalance decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	InstallmentCount int                       `gorm:"not null"`
	CreditDays       int                       `gorm:"not null"`
	Installments     []InstallmentPaymentModel `gorm:"foreignKey:CreditSaleID;references:ID"`
}

// TableName returns the table name for GORM
func (CreditSaleModel) TableName() string {
	return "credit_sales"
}

// ToDomain converts the persistence model to a domain CreditSale.
func (m *CreditSaleModel) ToDomain() *cash.CreditSale {
	installments := make([]cash.InstallmentPayment, len(m.Installments))
	for i := range m.Installments {
		installments[i] = *m.Installments[i].ToDomain()
	}
	return &cash.CreditSale{
		BranchAggregateRoot: m.ToDomainBranchAggregateRoot(),
		SaleID:              m.SaleID,
		CustomerID:          m.CustomerID,
		SaleDate:            m.SaleDate,
		Total:               m.Total,
		InitialPayment:      m.InitialPayment,
		RemainingBalance:    m.RemainingBalance,
		InstallmentCount:    m.InstallmentCount,
		CreditDays:          m.CreditDays,
		Installments:        installments,
	}
}

// FromDomain populates the persistence model from a domain CreditSale.
func (m *CreditSaleModel) FromDomain(c *cash.CreditSale) {
	m.FromDomainBranchAggregateRoot(c.BranchAggregateRoot)
	m.SaleID = c.SaleID
	m.CustomerID = c.CustomerID
	m.SaleDate = c.SaleDate
	m.Total = c.Total
	m.InitialPayment = c.InitialPayment
	m.RemainingBalance = c.RemainingBalance
	m.InstallmentCount = c.InstallmentCount
	m.CreditDays = c.CreditDays
	m.Installments = make([]InstallmentPaymentModel, len(c.Installments))
	for i := range c.Installments {
		m.Installments[i].FromDomain(&c.Installments[i], c.BranchID)
	}
}

// CreditSaleModelFromDomain creates a new persistence model from a domain CreditSale.
func CreditSaleModelFromDomain(c *cash.CreditSale) *CreditSaleModel {
	m := &CreditSaleModel{}
	m.FromDomain(c)
	return m
}

// InstallmentPaymentModel is the persistence model for one cuota of a credit sale.
// Status holds the settlement status only; OVERDUE is derived at read time.
type InstallmentPaymentModel struct {
	BaseModel
	CreditSaleID      uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_installment_sale_number,priority:1"`
	BranchID          uuid.UUID               `gorm:"type:uuid;not null;index:idx_installment_branch_due,priority:1"`
	PaymentNumber     int                     `gorm:"not null;uniqueIndex:idx_installment_sale_number,priority:2"`
	Amount            decimal.Decimal         `gorm:"type:decimal(18,2);not null"`
	DueDate           time.Time               `gorm:"type:date;not null;index:idx_installment_branch_due,priority:2"`
	PaidAmount        decimal.Decimal         `gorm:"type:decimal(18,2);not null;default:0"`
	ReceivedAmount    decimal.Decimal         `gorm:"type:decimal(18,2);not null;default:0"`
	ChangeAmount      decimal.Decimal         `gorm:"type:decimal(18,2);not null;default:0"`
	Status            cash.InstallmentStatus  `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	LastPaymentMethod *cash.PaymentMethod     `gorm:"type:varchar(20)"`
	PaidDate          *time.Time
}

// TableName returns the table name for GORM
func (InstallmentPaymentModel) TableName() string {
	return "installment_payments"
}

// ToDomain converts the persistence model to a domain InstallmentPayment.
func (m *InstallmentPaymentModel) ToDomain() *cash.InstallmentPayment {
	return &cash.InstallmentPayment{
		BaseEntity:        m.BaseModel.ToDomain(),
		CreditSaleID:      m.CreditSaleID,
		PaymentNumber:     m.PaymentNumber,
		Amount:            m.Amount,
		DueDate:           cash.DateOnly(m.DueDate),
		PaidAmount:        m.PaidAmount,
		ReceivedAmount:    m.ReceivedAmount,
		ChangeAmount:      m.ChangeAmount,
		LastPaymentMethod: m.LastPaymentMethod,
		PaidDate:          m.PaidDate,
	}
}

// FromDomain populates the persistence model from a domain InstallmentPayment.
func (m *InstallmentPaymentModel) FromDomain(i *cash.InstallmentPayment, branchID uuid.UUID) {
	m.FromDomainBaseEntity(i.BaseEntity)
	m.CreditSaleID = i.CreditSaleID
	m.BranchID = branchID
	m.PaymentNumber = i.PaymentNumber
	m.Amount = i.Amount
	m.DueDate = cash.DateOnly(i.DueDate)
	m.PaidAmount = i.PaidAmount
	m.ReceivedAmount = i.ReceivedAmount
	m.ChangeAmount = i.ChangeAmount
	m.Status = i.SettlementStatus()
	m.LastPaymentMethod = i.LastPaymentMethod
	m.PaidDate = i.PaidDate
}

// ExpenseModel is the persistence model for the Expense aggregate root.
type ExpenseModel struct {
	BranchAggregateModel
	Amount          decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	PaymentMethod   cash.PaymentMethod `gorm:"type:varchar(20);not null;index"`
	Category        string             `gorm:"type:varchar(50)"`
	Description     string             `gorm:"type:varchar(500);not null"`
	RequestedBy     uuid.UUID          `gorm:"type:uuid;not null;index"`
	Status          cash.ExpenseStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	SessionID       *uuid.UUID         `gorm:"type:uuid;index"`
	LedgerEntryID   *uuid.UUID         `gorm:"type:uuid"`
	ApprovedAt      *time.Time
	ApprovedBy      *uuid.UUID `gorm:"type:uuid"`
	RejectedAt      *time.Time
	RejectedBy      *uuid.UUID `gorm:"type:uuid"`
	RejectionReason string     `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense.
func (m *ExpenseModel) ToDomain() *cash.Expense {
	return &cash.Expense{
		BranchAggregateRoot: m.ToDomainBranchAggregateRoot(),
		Amount:              m.Amount,
		PaymentMethod:       m.PaymentMethod,
		Category:            m.Category,
		Description:         m.Description,
		RequestedBy:         m.RequestedBy,
		Status:              m.Status,
		SessionID:           m.SessionID,
		LedgerEntryID:       m.LedgerEntryID,
		ApprovedAt:          m.ApprovedAt,
		ApprovedBy:          m.ApprovedBy,
		RejectedAt:          m.RejectedAt,
		RejectedBy:          m.RejectedBy,
		RejectionReason:     m.RejectionReason,
	}
}

// FromDomain populates the persistence model from a domain Expense.
func (m *ExpenseModel) FromDomain(e *cash.Expense) {
	m.FromDomainBranchAggregateRoot(e.BranchAggregateRoot)
	m.Amount = e.Amount
	m.PaymentMethod = e.PaymentMethod
	m.Category = e.Category
	m.Description = e.Description
	m.RequestedBy = e.RequestedBy
	m.Status = e.Status
	m.SessionID = e.SessionID
	m.LedgerEntryID = e.LedgerEntryID
	m.ApprovedAt = e.ApprovedAt
	m.ApprovedBy = e.ApprovedBy
	m.RejectedAt = e.RejectedAt
	m.RejectedBy = e.RejectedBy
	m.RejectionReason = e.RejectionReason
}

// ExpenseModelFromDomain creates a new persistence model from a domain Expense.
func ExpenseModelFromDomain(e *cash.Expense) *ExpenseModel {
	m := &ExpenseModel{}
	m.FromDomain(e)
	return m
}

// CashTransferModel is the persistence model for the CashTransfer aggregate root.
type CashTransferModel struct {
	BranchAggregateModel
	SourceRegisterID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	DestinationRegisterID uuid.UUID           `gorm:"type:uuid;not null;index"`
	DestinationBranchID   uuid.UUID           `gorm:"type:uuid;not null;index"`
	Amount                decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Status                cash.TransferStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	RequestedBy           uuid.UUID           `gorm:"type:uuid;not null"`
	Notes                 string              `gorm:"type:varchar(500)"`
	SourceSessionID       *uuid.UUID          `gorm:"type:uuid"`
	DestinationSessionID  *uuid.UUID          `gorm:"type:uuid"`
	OutEntryID            *uuid.UUID          `gorm:"type:uuid"`
	InEntryID             *uuid.UUID          `gorm:"type:uuid"`
	CompletedAt           *time.Time
	CompletedBy           *uuid.UUID `gorm:"type:uuid"`
	CancelledAt           *time.Time
	CancelReason          string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (CashTransferModel) TableName() string {
	return "cash_transfers"
}

// ToDomain converts the persistence model to a domain CashTransfer.
func (m *CashTransferModel) ToDomain() *cash.CashTransfer {
	return &cash.CashTransfer{
		BranchAggregateRoot:   m.ToDomainBranchAggregateRoot(),
		SourceRegisterID:      m.SourceRegisterID,
		DestinationRegisterID: m.DestinationRegisterID,
		DestinationBranchID:   m.DestinationBranchID,
		Amount:                m.Amount,
		Status:                m.Status,
		RequestedBy:           m.RequestedBy,
		Notes:                 m.Notes,
		SourceSessionID:       m.SourceSessionID,
		DestinationSessionID:  m.DestinationSessionID,
		OutEntryID:            m.OutEntryID,
		InEntryID:             m.InEntryID,
		CompletedAt:           m.CompletedAt,
		CompletedBy:           m.CompletedBy,
		CancelledAt:           m.CancelledAt,
		CancelReason:          m.CancelReason,
	}
}

// FromDomain populates the persistence model from a domain CashTransfer.
func (m *CashTransferModel) FromDomain(t *cash.CashTransfer) {
	m.FromDomainBranchAggregateRoot(t.BranchAggregateRoot)
	m.SourceRegisterID = t.SourceRegisterID
	m.DestinationRegisterID = t.DestinationRegisterID
	m.DestinationBranchID = t.DestinationBranchID
	m.Amount = t.Amount
	m.Status = t.Status
	m.RequestedBy = t.RequestedBy
	m.Notes = t.Notes
	m.SourceSessionID = t.SourceSessionID
	m.DestinationSessionID = t.DestinationSessionID
	m.OutEntryID = t.OutEntryID
	m.InEntryID = t.InEntryID
	m.CompletedAt = t.CompletedAt
	m.CompletedBy = t.CompletedBy
	m.CancelledAt = t.CancelledAt
	m.CancelReason = t.CancelReason
}

// CashTransferModelFromDomain creates a new persistence model from a domain CashTransfer.
func CashTransferModelFromDomain(t *cash.CashTransfer) *CashTransferModel {
	m := &CashTransferModel{}
	m.FromDomain(t)
	return m
}

// CashModels lists every cash model in dependency order, for AutoMigrate in tests
func CashModels() []any {
	return []any{
		&CashRegisterModel{},
		&CashSessionModel{},
		&LedgerEntryModel{},
		&CreditSaleModel{},
		&InstallmentPaymentModel{},
		&ExpenseModel{},
		&CashTransferModel{},
	}
}
