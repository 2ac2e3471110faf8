package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSaleCode(t *testing.T) {
	assert.Equal(t, "VTA-001", FormatSaleCode(1))
	assert.Equal(t, "VTA-042", FormatSaleCode(42))
	assert.Equal(t, "VTA-999", FormatSaleCode(999))
	assert.Equal(t, "VTA-1000", FormatSaleCode(1000))
}

func TestParseSaleCode(t *testing.T) {
	n, err := ParseSaleCode("VTA-007")
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = ParseSaleCode("VTA-1203")
	require.NoError(t, err)
	assert.Equal(t, 1203, n)

	for _, bad := range []string{"", "VTA-", "FAC-001", "VTA-abc", "VTA--3"} {
		_, err := ParseSaleCode(bad)
		assert.ErrorIs(t, err, ErrInvalidSaleCode, bad)
	}
}

func TestPaymentMethodValid(t *testing.T) {
	assert.True(t, PaymentCash.Valid())
	assert.True(t, PaymentMobileWallet.Valid())
	assert.True(t, PaymentTransfer.Valid())
	assert.False(t, PaymentMethod("credito").Valid())
	assert.False(t, PaymentMethod("").Valid())
}

func TestCustomerHelpers(t *testing.T) {
	var none *Customer
	assert.False(t, none.HasDiscount())
	assert.False(t, none.Selected())

	c := &Customer{Name: "Ana", DiscountPercent: decimal.NewFromInt(15)}
	assert.True(t, c.HasDiscount())
	assert.True(t, c.Selected())

	assert.False(t, (&Customer{Document: "123"}).Selected())
}
