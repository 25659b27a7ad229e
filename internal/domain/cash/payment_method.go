package cash

// PaymentMethod is how money changed hands
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodWallet   PaymentMethod = "WALLET" // Yape, Plin and similar
	PaymentMethodOther    PaymentMethod = "OTHER"
)

// AllPaymentMethods lists every valid method in report order
func AllPaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		PaymentMethodCash,
		PaymentMethodCard,
		PaymentMethodTransfer,
		PaymentMethodWallet,
		PaymentMethodOther,
	}
}

// IsValid checks if the payment method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer,
		PaymentMethodWallet, PaymentMethodOther:
		return true
	}
	return false
}

// IsCash reports whether the method moves physical cash through the drawer
func (m PaymentMethod) IsCash() bool {
	return m == PaymentMethodCash
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}
