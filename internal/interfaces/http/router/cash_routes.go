package router

import (
	"github.com/ferreteria/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// CashHandlers groups the handlers served under the versioned API
type CashHandlers struct {
	Register *handler.RegisterHandler
	Session  *handler.SessionHandler
	Ledger   *handler.LedgerHandler
	Report   *handler.ReportHandler
	Credit   *handler.CreditHandler
	Expense  *handler.ExpenseHandler
	Transfer *handler.TransferHandler
}

// CashRoutes builds the cash, credit and expense domain groups.
// idempotent guards the commands clients retry (ledger entries, installment
// payments, transfer completion); nil leaves them unguarded.
func CashRoutes(h CashHandlers, idempotent gin.HandlerFunc) []RouteRegistrar {
	guarded := func(hf gin.HandlerFunc) []gin.HandlerFunc {
		if idempotent == nil {
			return []gin.HandlerFunc{hf}
		}
		return []gin.HandlerFunc{idempotent, hf}
	}

	cash := NewDomainGroup("cash", "/cash")

	cash.Group("registers", "/registers").
		POST("", h.Register.Create).
		GET("", h.Register.List).
		GET("/:id", h.Register.GetByID).
		PUT("/:id", h.Register.Update).
		DELETE("/:id", h.Register.Deactivate).
		GET("/:id/current-session", h.Session.GetCurrent)

	cash.Group("sessions", "/sessions").
		POST("", h.Session.Open).
		GET("", h.Session.List).
		GET("/:id", h.Session.GetByID).
		POST("/:id/close", h.Session.Close).
		GET("/:id/entries", h.Session.ListEntries).
		GET("/:id/expected-balance", h.Report.ExpectedBalance).
		GET("/:id/payment-methods", h.Report.PaymentMethods).
		GET("/:id/report", h.Report.SessionReport).
		GET("/:id/integrity", h.Report.Integrity)

	cash.Group("entries", "/entries").
		POST("", guarded(h.Ledger.RecordEntry)...).
		GET("", h.Ledger.List).
		GET("/unsessioned", h.Report.Unsessioned).
		GET("/:id", h.Ledger.GetByID)

	cash.Group("transfers", "/transfers").
		POST("", h.Transfer.Create).
		GET("", h.Transfer.List).
		GET("/:id", h.Transfer.GetByID).
		POST("/:id/complete", guarded(h.Transfer.Complete)...).
		POST("/:id/cancel", h.Transfer.Cancel)

	credit := NewDomainGroup("credit", "/credit")
	credit.POST("/sales", h.Credit.RegisterSale).
		POST("/schedules", h.Credit.CreateSchedule).
		GET("/sales/:sale_id", h.Credit.GetBySaleID)
	credit.Group("installments", "/installments").
		GET("/overdue", h.Credit.ListOverdue).
		POST("/:id/payments", guarded(h.Credit.ApplyPayment)...)

	expenses := NewDomainGroup("expenses", "/expenses").
		POST("", h.Expense.Create).
		GET("", h.Expense.List).
		GET("/:id", h.Expense.GetByID).
		POST("/:id/approve", h.Expense.Approve).
		POST("/:id/reject", h.Expense.Reject)

	return []RouteRegistrar{cash, credit, expenses}
}
