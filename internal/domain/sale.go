package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SaleCodePrefix prefixes every human-readable sale code.
const SaleCodePrefix = "VTA-"

var ErrInvalidSaleCode = errors.New("codigo de venta invalido")

// FormatSaleCode renders n as VTA-### (zero padded to three digits; wider
// numbers are kept as-is, the sequence never wraps).
func FormatSaleCode(n int) string {
	return fmt.Sprintf("%s%03d", SaleCodePrefix, n)
}

// ParseSaleCode extracts the numeric suffix of a sale code.
func ParseSaleCode(code string) (int, error) {
	if !strings.HasPrefix(code, SaleCodePrefix) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSaleCode, code)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(code, SaleCodePrefix))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSaleCode, code)
	}
	return n, nil
}

// PaymentMethod is one of the payment methods accepted at checkout.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "efectivo"
	PaymentMobileWallet PaymentMethod = "billetera"
	PaymentTransfer     PaymentMethod = "transferencia"
)

// Valid reports whether m is an accepted payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentMobileWallet, PaymentTransfer:
		return true
	}
	return false
}

func (m PaymentMethod) String() string { return string(m) }

// CompletedSale is the immutable receipt of a committed sale.
type CompletedSale struct {
	ID            string
	Code          string
	Total         decimal.Decimal
	Customer      *Customer
	PaymentMethod PaymentMethod
	Timestamp     time.Time
}
