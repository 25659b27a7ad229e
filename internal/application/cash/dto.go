package cash

import (
	"strings"
	"time"

	"github.com/ferreteria/backend/internal/domain/cash"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ===================== Registers =====================

// CreateRegisterRequest represents a request to create a cash register
type CreateRegisterRequest struct {
	Name                    string          `json:"name" binding:"required,max=100"`
	Type                    string          `json:"type" binding:"required,oneof=PRINCIPAL SECONDARY"`
	SuggestedOpeningBalance decimal.Decimal `json:"suggested_opening_balance" binding:"decimal_gte0"`
	Description             string          `json:"description" binding:"max=500"`
	CreatedBy               *uuid.UUID      `json:"-"`
}

// UpdateRegisterRequest represents a request to update a cash register
type UpdateRegisterRequest struct {
	Name                    string          `json:"name" binding:"required,max=100"`
	Type                    string          `json:"type" binding:"required,oneof=PRINCIPAL SECONDARY"`
	SuggestedOpeningBalance decimal.Decimal `json:"suggested_opening_balance"`
	Description             string          `json:"description" binding:"max=500"`
}

// RegisterListFilter defines filtering options for register list queries
type RegisterListFilter struct {
	Search         string `form:"search"`
	Type           string `form:"type"`
	IncludeDeleted bool   `form:"include_deleted"`
	Page           int    `form:"page"`
	PageSize       int    `form:"page_size"`
}

// RegisterResponse represents a cash register in API responses
type RegisterResponse struct {
	ID                      uuid.UUID       `json:"id"`
	BranchID                uuid.UUID       `json:"branch_id"`
	Name                    string          `json:"name"`
	Type                    string          `json:"type"`
	SuggestedOpeningBalance decimal.Decimal `json:"suggested_opening_balance"`
	Description             string          `json:"description,omitempty"`
	Active                  bool            `json:"active"`
	DeletedAt               *time.Time      `json:"deleted_at,omitempty"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
	Version                 int             `json:"version"`
}

func toRegisterResponse(r *cash.CashRegister) RegisterResponse {
	return RegisterResponse{
		ID:                      r.ID,
		BranchID:                r.BranchID,
		Name:                    r.Name,
		Type:                    string(r.Type),
		SuggestedOpeningBalance: r.SuggestedOpeningBalance,
		Description:             r.Description,
		Active:                  r.IsActive(),
		DeletedAt:               r.DeletedAt,
		CreatedAt:               r.CreatedAt,
		UpdatedAt:               r.UpdatedAt,
		Version:                 r.Version,
	}
}

// ===================== Sessions =====================

// OpenSessionRequest represents a request to open a cash session
type OpenSessionRequest struct {
	RegisterID     uuid.UUID       `json:"register_id" binding:"required"`
	OpeningBalance decimal.Decimal `json:"opening_balance" binding:"decimal_gte0"`
	Notes          string          `json:"notes" binding:"max=500"`
}

// CloseSessionRequest represents the arqueo submitted at close
type CloseSessionRequest struct {
	ActualBalance decimal.Decimal `json:"actual_balance" binding:"required,decimal_gte0"`
	Notes         string          `json:"notes" binding:"max=500"`
}

// SessionListFilter defines filtering options for session list queries
type SessionListFilter struct {
	RegisterID string     `form:"register_id"`
	UserID     string     `form:"user_id"`
	Status     string     `form:"status"`
	From       *time.Time `form:"from" time_format:"2006-01-02"`
	To         *time.Time `form:"to" time_format:"2006-01-02"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// SessionResponse represents a cash session in API responses
type SessionResponse struct {
	ID              uuid.UUID        `json:"id"`
	BranchID        uuid.UUID        `json:"branch_id"`
	RegisterID      uuid.UUID        `json:"register_id"`
	UserID          uuid.UUID        `json:"user_id"`
	Status          string           `json:"status"`
	OpenedAt        time.Time        `json:"opened_at"`
	OpeningBalance  decimal.Decimal  `json:"opening_balance"`
	OpeningNotes    string           `json:"opening_notes,omitempty"`
	ClosedAt        *time.Time       `json:"closed_at,omitempty"`
	ClosedBy        *uuid.UUID       `json:"closed_by,omitempty"`
	ExpectedBalance *decimal.Decimal `json:"expected_balance,omitempty"`
	ActualBalance   *decimal.Decimal `json:"actual_balance,omitempty"`
	Difference      *decimal.Decimal `json:"difference,omitempty"`
	DeviationPct    *decimal.Decimal `json:"deviation_pct,omitempty"`
	DeviationLevel  string           `json:"deviation_level,omitempty"`
	ClosingNotes    string           `json:"closing_notes,omitempty"`
	Version         int              `json:"version"`
}

func toSessionResponse(s *cash.CashSession) SessionResponse {
	resp := SessionResponse{
		ID:              s.ID,
		BranchID:        s.BranchID,
		RegisterID:      s.RegisterID,
		UserID:          s.UserID,
		Status:          string(s.Status),
		OpenedAt:        s.OpenedAt,
		OpeningBalance:  s.OpeningBalance,
		OpeningNotes:    s.OpeningNotes,
		ClosedAt:        s.ClosedAt,
		ClosedBy:        s.ClosedBy,
		ExpectedBalance: s.ExpectedBalance,
		ActualBalance:   s.ActualBalance,
		Difference:      s.Difference,
		DeviationPct:    s.DeviationPct,
		ClosingNotes:    s.ClosingNotes,
		Version:         s.Version,
	}
	if s.DeviationLevel != nil {
		resp.DeviationLevel = string(*s.DeviationLevel)
	}
	return resp
}

// ===================== Ledger =====================

// ReferenceDTO links a ledger entry to the business document behind it
type ReferenceDTO struct {
	SaleID          *uuid.UUID `json:"sale_id,omitempty"`
	CreditSaleID    *uuid.UUID `json:"credit_sale_id,omitempty"`
	InstallmentID   *uuid.UUID `json:"installment_id,omitempty"`
	PurchaseOrderID *uuid.UUID `json:"purchase_order_id,omitempty"`
	ExpenseID       *uuid.UUID `json:"expense_id,omitempty"`
	TransferID      *uuid.UUID `json:"transfer_id,omitempty"`
}

func (r ReferenceDTO) toDomain() cash.Reference {
	return cash.Reference{
		SaleID:          r.SaleID,
		CreditSaleID:    r.CreditSaleID,
		InstallmentID:   r.InstallmentID,
		PurchaseOrderID: r.PurchaseOrderID,
		ExpenseID:       r.ExpenseID,
		TransferID:      r.TransferID,
	}
}

// RecordEntryRequest represents a request to record a ledger entry against a session
type RecordEntryRequest struct {
	SessionID     uuid.UUID       `json:"session_id" binding:"required"`
	Type          string          `json:"type" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Delta         decimal.Decimal `json:"delta"` // manual adjustments only
	PaymentMethod string          `json:"payment_method" binding:"required,payment_method"`
	Description   string          `json:"description" binding:"max=500"`
	Reference     ReferenceDTO    `json:"reference"`
	RecordedBy    *uuid.UUID      `json:"-"`
}

// LedgerEntryListFilter defines filtering options for ledger queries
type LedgerEntryListFilter struct {
	SessionID     string     `form:"session_id"`
	RegisterID    string     `form:"register_id"`
	Type          string     `form:"type"`
	PaymentMethod string     `form:"payment_method"`
	Unsessioned   bool       `form:"unsessioned"`
	From          *time.Time `form:"from" time_format:"2006-01-02"`
	To            *time.Time `form:"to" time_format:"2006-01-02"`
	Page          int        `form:"page"`
	PageSize      int        `form:"page_size"`
}

// LedgerEntryResponse represents a ledger entry in API responses
type LedgerEntryResponse struct {
	ID            uuid.UUID       `json:"id"`
	BranchID      uuid.UUID       `json:"branch_id"`
	RegisterID    uuid.UUID       `json:"register_id"`
	SessionID     *uuid.UUID      `json:"session_id,omitempty"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	SignedAmount  decimal.Decimal `json:"signed_amount"`
	PaymentMethod string          `json:"payment_method"`
	AffectsCash   bool            `json:"affects_cash"`
	Reference     ReferenceDTO    `json:"reference"`
	Description   string          `json:"description,omitempty"`
	RecordedBy    *uuid.UUID      `json:"recorded_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toLedgerEntryResponse(e *cash.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:            e.ID,
		BranchID:      e.BranchID,
		RegisterID:    e.RegisterID,
		SessionID:     e.SessionID,
		Type:          string(e.Type),
		Amount:        e.Amount,
		SignedAmount:  e.SignedAmount(),
		PaymentMethod: string(e.PaymentMethod),
		AffectsCash:   e.IsCash(),
		Reference: ReferenceDTO{
			SaleID:          e.Reference.SaleID,
			CreditSaleID:    e.Reference.CreditSaleID,
			InstallmentID:   e.Reference.InstallmentID,
			PurchaseOrderID: e.Reference.PurchaseOrderID,
			ExpenseID:       e.Reference.ExpenseID,
			TransferID:      e.Reference.TransferID,
		},
		Description: e.Description,
		RecordedBy:  e.RecordedBy,
		CreatedAt:   e.CreatedAt,
	}
}

func toLedgerEntryResponses(entries []cash.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, len(entries))
	for i := range entries {
		out[i] = toLedgerEntryResponse(&entries[i])
	}
	return out
}

// ===================== Credit =====================

// CreateScheduleRequest represents a request to generate an installment schedule
type CreateScheduleRequest struct {
	SaleID           uuid.UUID       `json:"sale_id" binding:"required"`
	CustomerID       *uuid.UUID      `json:"customer_id"`
	SaleDate         *time.Time      `json:"sale_date"`
	Total            decimal.Decimal `json:"total" binding:"required,decimal_gt0"`
	InitialPayment   decimal.Decimal `json:"initial_payment" binding:"decimal_gte0"`
	InstallmentCount int             `json:"installment_count" binding:"required,min=1"`
	CreditDays       int             `json:"credit_days" binding:"required,min=1"`
	CreatedBy        *uuid.UUID      `json:"-"`
}

// RegisterCreditSaleRequest creates a schedule and books the initial payment in one step
type RegisterCreditSaleRequest struct {
	CreateScheduleRequest
	InitialPaymentMethod string     `json:"initial_payment_method" binding:"omitempty,payment_method"`
	RegisterID           *uuid.UUID `json:"register_id"`
}

// ApplyPaymentRequest represents a payment received for one installment
type ApplyPaymentRequest struct {
	ReceivedAmount decimal.Decimal `json:"received_amount" binding:"required,decimal_gt0"`
	PaymentMethod  string          `json:"payment_method" binding:"required,payment_method"`
	// RegisterID pins the register whose open session receives a cash payment
	RegisterID *uuid.UUID `json:"register_id"`
	RecordedBy *uuid.UUID `json:"-"`
}

// OverdueListFilter defines filtering options for the overdue query
type OverdueListFilter struct {
	CustomerID string     `form:"customer_id"`
	AsOf       *time.Time `form:"as_of" time_format:"2006-01-02"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// InstallmentResponse represents one cuota in API responses
type InstallmentResponse struct {
	ID                uuid.UUID       `json:"id"`
	CreditSaleID      uuid.UUID       `json:"credit_sale_id"`
	PaymentNumber     int             `json:"payment_number"`
	Amount            decimal.Decimal `json:"amount"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	RemainingAmount   decimal.Decimal `json:"remaining_amount"`
	ReceivedAmount    decimal.Decimal `json:"received_amount"`
	ChangeAmount      decimal.Decimal `json:"change_amount"`
	DueDate           time.Time       `json:"due_date"`
	PaidDate          *time.Time      `json:"paid_date,omitempty"`
	Status            string          `json:"status"`
	DaysOverdue       int             `json:"days_overdue"`
	LastPaymentMethod string          `json:"last_payment_method,omitempty"`
}

func toInstallmentResponse(i *cash.InstallmentPayment, asOf time.Time) InstallmentResponse {
	resp := InstallmentResponse{
		ID:              i.ID,
		CreditSaleID:    i.CreditSaleID,
		PaymentNumber:   i.PaymentNumber,
		Amount:          i.Amount,
		PaidAmount:      i.PaidAmount,
		RemainingAmount: i.RemainingAmount(),
		ReceivedAmount:  i.ReceivedAmount,
		ChangeAmount:    i.ChangeAmount,
		DueDate:         i.DueDate,
		PaidDate:        i.PaidDate,
		Status:          string(i.StatusAt(asOf)),
		DaysOverdue:     i.DaysOverdueAt(asOf),
	}
	if i.LastPaymentMethod != nil {
		resp.LastPaymentMethod = string(*i.LastPaymentMethod)
	}
	return resp
}

// CreditSaleResponse represents a credit sale with its schedule
type CreditSaleResponse struct {
	ID               uuid.UUID             `json:"id"`
	BranchID         uuid.UUID             `json:"branch_id"`
	SaleID           uuid.UUID             `json:"sale_id"`
	CustomerID       *uuid.UUID            `json:"customer_id,omitempty"`
	SaleDate         time.Time             `json:"sale_date"`
	Total            decimal.Decimal       `json:"total"`
	InitialPayment   decimal.Decimal       `json:"initial_payment"`
	RemainingBalance decimal.Decimal       `json:"remaining_balance"`
	InstallmentCount int                   `json:"installment_count"`
	CreditDays       int                   `json:"credit_days"`
	Settled          bool                  `json:"settled"`
	Installments     []InstallmentResponse `json:"installments"`
	// InitialEntryID is the SALE entry booked for the initial payment, if any
	InitialEntryID *uuid.UUID `json:"initial_entry_id,omitempty"`
	Version        int        `json:"version"`
}

func toCreditSaleResponse(c *cash.CreditSale, asOf time.Time) CreditSaleResponse {
	installments := make([]InstallmentResponse, len(c.Installments))
	for i := range c.Installments {
		installments[i] = toInstallmentResponse(&c.Installments[i], asOf)
	}
	return CreditSaleResponse{
		ID:               c.ID,
		BranchID:         c.BranchID,
		SaleID:           c.SaleID,
		CustomerID:       c.CustomerID,
		SaleDate:         c.SaleDate,
		Total:            c.Total,
		InitialPayment:   c.InitialPayment,
		RemainingBalance: c.RemainingBalance,
		InstallmentCount: c.InstallmentCount,
		CreditDays:       c.CreditDays,
		Settled:          c.IsSettled(),
		Installments:     installments,
		Version:          c.Version,
	}
}

// PaymentResponse is the outcome of ApplyPayment
type PaymentResponse struct {
	Installment          InstallmentResponse `json:"installment"`
	Received             decimal.Decimal     `json:"received"`
	Applied              decimal.Decimal     `json:"applied"`
	Change               decimal.Decimal     `json:"change"`
	PaymentMethod        string              `json:"payment_method"`
	FullyPaid            bool                `json:"fully_paid"`
	SaleSettled          bool                `json:"sale_settled"`
	SaleRemainingBalance decimal.Decimal     `json:"sale_remaining_balance"`
	// LedgerEntryID is set when a cash payment was booked into a session
	LedgerEntryID *uuid.UUID `json:"ledger_entry_id,omitempty"`
}

// ===================== Expenses =====================

// CreateExpenseRequest represents a request to register an expense
type CreateExpenseRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required,decimal_gt0"`
	PaymentMethod string          `json:"payment_method" binding:"required,payment_method"`
	Category      string          `json:"category" binding:"max=50"`
	Description   string          `json:"description" binding:"required,max=500"`
}

// ApproveExpenseRequest represents an approval; RegisterID pins the paying register
type ApproveExpenseRequest struct {
	RegisterID *uuid.UUID `json:"register_id"`
}

// RejectExpenseRequest represents a rejection
type RejectExpenseRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ExpenseListFilter defines filtering options for expense list queries
type ExpenseListFilter struct {
	Status        string     `form:"status"`
	PaymentMethod string     `form:"payment_method"`
	RequestedBy   string     `form:"requested_by"`
	From          *time.Time `form:"from" time_format:"2006-01-02"`
	To            *time.Time `form:"to" time_format:"2006-01-02"`
	Page          int        `form:"page"`
	PageSize      int        `form:"page_size"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID              uuid.UUID       `json:"id"`
	BranchID        uuid.UUID       `json:"branch_id"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethod   string          `json:"payment_method"`
	Category        string          `json:"category,omitempty"`
	Description     string          `json:"description"`
	Status          string          `json:"status"`
	RequestedBy     uuid.UUID       `json:"requested_by"`
	SessionID       *uuid.UUID      `json:"session_id,omitempty"`
	LedgerEntryID   *uuid.UUID      `json:"ledger_entry_id,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	ApprovedBy      *uuid.UUID      `json:"approved_by,omitempty"`
	RejectedAt      *time.Time      `json:"rejected_at,omitempty"`
	RejectedBy      *uuid.UUID      `json:"rejected_by,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	Version         int             `json:"version"`
}

func toExpenseResponse(e *cash.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:              e.ID,
		BranchID:        e.BranchID,
		Amount:          e.Amount,
		PaymentMethod:   string(e.PaymentMethod),
		Category:        e.Category,
		Description:     e.Description,
		Status:          string(e.Status),
		RequestedBy:     e.RequestedBy,
		SessionID:       e.SessionID,
		LedgerEntryID:   e.LedgerEntryID,
		ApprovedAt:      e.ApprovedAt,
		ApprovedBy:      e.ApprovedBy,
		RejectedAt:      e.RejectedAt,
		RejectedBy:      e.RejectedBy,
		RejectionReason: e.RejectionReason,
		CreatedAt:       e.CreatedAt,
		Version:         e.Version,
	}
}

// ===================== Transfers =====================

// CreateTransferRequest represents a request to move cash between registers
type CreateTransferRequest struct {
	SourceRegisterID      uuid.UUID       `json:"source_register_id" binding:"required"`
	DestinationRegisterID uuid.UUID       `json:"destination_register_id" binding:"required"`
	Amount                decimal.Decimal `json:"amount" binding:"required,decimal_gt0"`
	Notes                 string          `json:"notes" binding:"max=500"`
}

// CancelTransferRequest represents a transfer cancellation
type CancelTransferRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// TransferListFilter defines filtering options for transfer list queries
type TransferListFilter struct {
	RegisterID string     `form:"register_id"`
	Status     string     `form:"status"`
	From       *time.Time `form:"from" time_format:"2006-01-02"`
	To         *time.Time `form:"to" time_format:"2006-01-02"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// TransferResponse represents a cash transfer in API responses
type TransferResponse struct {
	ID                    uuid.UUID       `json:"id"`
	BranchID              uuid.UUID       `json:"branch_id"`
	SourceRegisterID      uuid.UUID       `json:"source_register_id"`
	DestinationRegisterID uuid.UUID       `json:"destination_register_id"`
	DestinationBranchID   uuid.UUID       `json:"destination_branch_id"`
	Amount                decimal.Decimal `json:"amount"`
	Status                string          `json:"status"`
	RequestedBy           uuid.UUID       `json:"requested_by"`
	Notes                 string          `json:"notes,omitempty"`
	SourceSessionID       *uuid.UUID      `json:"source_session_id,omitempty"`
	DestinationSessionID  *uuid.UUID      `json:"destination_session_id,omitempty"`
	OutEntryID            *uuid.UUID      `json:"out_entry_id,omitempty"`
	InEntryID             *uuid.UUID      `json:"in_entry_id,omitempty"`
	CompletedAt           *time.Time      `json:"completed_at,omitempty"`
	CompletedBy           *uuid.UUID      `json:"completed_by,omitempty"`
	CancelledAt           *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason          string          `json:"cancel_reason,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	Version               int             `json:"version"`
}

func toTransferResponse(t *cash.CashTransfer) TransferResponse {
	return TransferResponse{
		ID:                    t.ID,
		BranchID:              t.BranchID,
		SourceRegisterID:      t.SourceRegisterID,
		DestinationRegisterID: t.DestinationRegisterID,
		DestinationBranchID:   t.DestinationBranchID,
		Amount:                t.Amount,
		Status:                string(t.Status),
		RequestedBy:           t.RequestedBy,
		Notes:                 t.Notes,
		SourceSessionID:       t.SourceSessionID,
		DestinationSessionID:  t.DestinationSessionID,
		OutEntryID:            t.OutEntryID,
		InEntryID:             t.InEntryID,
		CompletedAt:           t.CompletedAt,
		CompletedBy:           t.CompletedBy,
		CancelledAt:           t.CancelledAt,
		CancelReason:          t.CancelReason,
		CreatedAt:             t.CreatedAt,
		Version:               t.Version,
	}
}

// ===================== Reports =====================

// ExpectedBalanceResponse is the live expected cash of a session
type ExpectedBalanceResponse struct {
	SessionID       uuid.UUID       `json:"session_id"`
	Status          string          `json:"status"`
	OpeningBalance  decimal.Decimal `json:"opening_balance"`
	ExpectedBalance decimal.Decimal `json:"expected_balance"`
	EntryCount      int             `json:"entry_count"`
}

// MethodTotalsResponse groups a session's entries by payment method
type MethodTotalsResponse struct {
	PaymentMethod string          `json:"payment_method"`
	AffectsCash   bool            `json:"affects_cash"`
	InflowTotal   decimal.Decimal `json:"inflow_total"`
	OutflowTotal  decimal.Decimal `json:"outflow_total"`
	Net           decimal.Decimal `json:"net"`
	EntryCount    int             `json:"entry_count"`
}

// TypeTotalsResponse groups a session's entries by entry type
type TypeTotalsResponse struct {
	Type       string          `json:"type"`
	Total      decimal.Decimal `json:"total"`
	CashTotal  decimal.Decimal `json:"cash_total"`
	EntryCount int             `json:"entry_count"`
}

// SessionReportResponse is the full arqueo report of a session
type SessionReportResponse struct {
	Session         SessionResponse        `json:"session"`
	CashInflows     decimal.Decimal        `json:"cash_inflows"`
	CashOutflows    decimal.Decimal        `json:"cash_outflows"`
	ExpectedBalance decimal.Decimal        `json:"expected_balance"`
	ActualBalance   *decimal.Decimal       `json:"actual_balance,omitempty"`
	Difference      *decimal.Decimal       `json:"difference,omitempty"`
	DeviationPct    *decimal.Decimal       `json:"deviation_pct,omitempty"`
	DeviationLevel  string                 `json:"deviation_level,omitempty"`
	ByMethod        []MethodTotalsResponse `json:"by_method"`
	ByType          []TypeTotalsResponse   `json:"by_type"`
	EntryCount      int                    `json:"entry_count"`
	Consistent      bool                   `json:"consistent"`
	IntegrityDetail string                 `json:"integrity_detail,omitempty"`
	// Formatted holds display strings for the headline amounts
	Formatted map[string]string `json:"formatted"`
}

// IntegrityReport is the outcome of re-deriving a session's arqueo from its ledger
type IntegrityReport struct {
	SessionID  uuid.UUID `json:"session_id"`
	Status     string    `json:"status"`
	Consistent bool      `json:"consistent"`
	Detail     string    `json:"detail,omitempty"`
	CheckedAt  time.Time `json:"checked_at"`
}

// ===================== helpers =====================

// parseOptionalUUID parses a query-string UUID, treating an empty value as absent
func parseOptionalUUID(field, value string) (*uuid.UUID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_ID", "Invalid "+field+": "+value)
	}
	return &id, nil
}

func pageFilter(page, pageSize int) shared.Filter {
	f := shared.DefaultFilter()
	if page > 0 {
		f.Page = page
	}
	if pageSize > 0 {
		f.PageSize = min(pageSize, 100)
	}
	return f
}
