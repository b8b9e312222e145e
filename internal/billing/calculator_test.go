package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbook/internal/billing"
	"finbook/internal/domain"
)

func gstInput(items ...billing.LineItemInput) billing.CalculationInput {
	return billing.CalculationInput{
		Items:    items,
		Tax:      billing.TaxConfig{TaxType: domain.TaxTypeGSTIndia, GSTType: domain.GSTTypeIGST},
		Currency: "INR",
	}
}

func TestCalculate_SingleItemIGST(t *testing.T) {
	in := gstInput(billing.LineItemInput{Quantity: 2, Rate: 100, GSTRate: 18})
	in.Discount = billing.DiscountSpec{Amount: 10, Type: domain.DiscountFixed}
	in.ExtraCharges = 5

	out := billing.Calculate(in)

	require.Len(t, out.Items, 1)
	assert.InDelta(t, 200, out.Items[0].Amount, 1e-9)
	assert.InDelta(t, 36, out.Items[0].TaxAmount, 1e-9)
	assert.InDelta(t, 236, out.Items[0].Total, 1e-9)

	assert.InDelta(t, 200, out.Subtotal, 1e-9)
	assert.InDelta(t, 10, out.Discount, 1e-9)
	assert.InDelta(t, 195, out.TaxableAmount, 1e-9)
	assert.InDelta(t, 36, out.IGSTAmount, 1e-9)
	assert.InDelta(t, 0, out.CGSTAmount, 1e-9)
	assert.InDelta(t, 0, out.SGSTAmount, 1e-9)
	assert.InDelta(t, 231, out.Total, 1e-9)
	assert.InDelta(t, 231, out.TotalInINR, 1e-9)
}

func TestCalculate_PercentageDiscount(t *testing.T) {
	in := gstInput(billing.LineItemInput{Quantity: 2, Rate: 100, GSTRate: 18})
	in.Discount = billing.DiscountSpec{Amount: 10, Type: domain.DiscountPercentage}
	in.ExtraCharges = 5

	out := billing.Calculate(in)

	assert.InDelta(t, 20, out.Discount, 1e-9)
	assert.InDelta(t, 185, out.TaxableAmount, 1e-9)
	assert.InDelta(t, 221, out.Total, 1e-9)
}

func TestCalculate_TaxTypeNone(t *testing.T) {
	in := gstInput(
		billing.LineItemInput{Quantity: 3, Rate: 50, GSTRate: 18},
		billing.LineItemInput{Quantity: 1, Rate: 250, GSTRate: 28},
	)
	in.Tax.TaxType = domain.TaxTypeNone

	out := billing.Calculate(in)

	assert.Zero(t, out.TotalTax)
	assert.Zero(t, out.CGSTAmount)
	assert.Zero(t, out.SGSTAmount)
	assert.Zero(t, out.IGSTAmount)
	assert.InDelta(t, 400, out.Subtotal, 1e-9)
	assert.InDelta(t, 400, out.Total, 1e-9)
}

func TestCalculate_CGSTSGSTEvenSplit(t *testing.T) {
	in := gstInput(
		billing.LineItemInput{Quantity: 1, Rate: 100, GSTRate: 18},
		billing.LineItemInput{Quantity: 1, Rate: 100, GSTRate: 5},
	)
	in.Tax.GSTType = domain.GSTTypeCGSTSGST

	out := billing.Calculate(in)

	assert.InDelta(t, 23, out.TotalTax, 1e-9)
	assert.Equal(t, out.CGSTAmount, out.SGSTAmount)
	assert.InDelta(t, out.TotalTax/2, out.CGSTAmount, 1e-9)
	assert.Zero(t, out.IGSTAmount)
}

func TestCalculate_PerItemRates(t *testing.T) {
	// Items carry their own rates; tax is never a blended post-hoc rate.
	in := gstInput(
		billing.LineItemInput{Quantity: 1, Rate: 1000, GSTRate: 5},
		billing.LineItemInput{Quantity: 1, Rate: 1000, GSTRate: 28},
	)

	out := billing.Calculate(in)

	assert.InDelta(t, 50, out.Items[0].TaxAmount, 1e-9)
	assert.InDelta(t, 280, out.Items[1].TaxAmount, 1e-9)
	assert.InDelta(t, 330, out.TotalTax, 1e-9)
	assert.InDelta(t, 16.5, out.AverageGSTRate, 1e-9)
}

func TestCalculate_Cess(t *testing.T) {
	in := gstInput(billing.LineItemInput{Quantity: 1, Rate: 1000, GSTRate: 28})
	in.Tax.CessRate = 12

	out := billing.Calculate(in)

	assert.InDelta(t, 120, out.CessAmount, 1e-9)
	assert.InDelta(t, 1000+280+120, out.Total, 1e-9)
}

func TestCalculate_AdditiveClosure(t *testing.T) {
	inputs := []billing.CalculationInput{
		gstInput(),
		gstInput(billing.LineItemInput{Quantity: 2, Rate: 99.99, GSTRate: 12}),
		func() billing.CalculationInput {
			in := gstInput(
				billing.LineItemInput{Quantity: 7, Rate: 31.5, GSTRate: 5},
				billing.LineItemInput{Quantity: 1, Rate: 899, GSTRate: 28},
				billing.LineItemInput{Quantity: 4, Rate: 12, GSTRate: 0},
			)
			in.Discount = billing.DiscountSpec{Amount: 7.5, Type: domain.DiscountPercentage}
			in.ExtraCharges = 42
			in.Tax.CessRate = 1
			in.Tax.GSTType = domain.GSTTypeCGSTSGST
			return in
		}(),
	}

	for _, in := range inputs {
		out := billing.Calculate(in)
		assert.InDelta(t, out.Subtotal-out.Discount+in.ExtraCharges+out.TotalTax+out.CessAmount, out.Total, 1e-9)
	}
}

func TestCalculate_EmptyItems(t *testing.T) {
	out := billing.Calculate(gstInput())

	assert.Zero(t, out.Subtotal)
	assert.Zero(t, out.TotalTax)
	assert.Zero(t, out.Total)
	assert.Empty(t, out.Items)
	assert.InDelta(t, 18, out.AverageGSTRate, 1e-9)
}

func TestCalculate_DestroyedItemsExcluded(t *testing.T) {
	in := gstInput(
		billing.LineItemInput{Quantity: 2, Rate: 100, GSTRate: 18},
		billing.LineItemInput{Quantity: 5, Rate: 500, GSTRate: 28, Destroy: true},
	)

	out := billing.Calculate(in)

	require.Len(t, out.Items, 1)
	assert.InDelta(t, 200, out.Subtotal, 1e-9)
	assert.InDelta(t, 36, out.TotalTax, 1e-9)
	assert.InDelta(t, 18, out.AverageGSTRate, 1e-9)
}

func TestCalculate_CurrencyConversion(t *testing.T) {
	rate := 83.25

	t.Run("foreign_with_rate", func(t *testing.T) {
		in := gstInput(billing.LineItemInput{Quantity: 1, Rate: 100, GSTRate: 18})
		in.Currency = "USD"
		in.ExchangeRate = &rate
		out := billing.Calculate(in)
		assert.InDelta(t, 118*83.25, out.TotalInINR, 1e-9)
	})

	t.Run("foreign_missing_rate_degrades_to_one", func(t *testing.T) {
		in := gstInput(billing.LineItemInput{Quantity: 1, Rate: 100, GSTRate: 18})
		in.Currency = "USD"
		out := billing.Calculate(in)
		assert.InDelta(t, 118, out.TotalInINR, 1e-9)
	})

	t.Run("inr_ignores_rate", func(t *testing.T) {
		in := gstInput(billing.LineItemInput{Quantity: 1, Rate: 100, GSTRate: 18})
		in.ExchangeRate = &rate
		out := billing.Calculate(in)
		assert.InDelta(t, 118, out.TotalInINR, 1e-9)
	})
}

func TestCalculate_Idempotent(t *testing.T) {
	in := gstInput(
		billing.LineItemInput{Quantity: 3, Rate: 149.5, GSTRate: 12},
		billing.LineItemInput{Quantity: 1, Rate: 20, GSTRate: 5},
	)
	in.Discount = billing.DiscountSpec{Amount: 15, Type: domain.DiscountFixed}
	in.ExtraCharges = 9.99
	in.Tax.CessRate = 2

	first := billing.Calculate(in)
	second := billing.Calculate(in)

	assert.Equal(t, first, second)
}

func TestResolveGSTType(t *testing.T) {
	t.Run("same_state", func(t *testing.T) {
		gt, ok := billing.ResolveGSTType("29", "29")
		require.True(t, ok)
		assert.Equal(t, domain.GSTTypeCGSTSGST, gt)
	})

	t.Run("different_states", func(t *testing.T) {
		gt, ok := billing.ResolveGSTType("29", "07")
		require.True(t, ok)
		assert.Equal(t, domain.GSTTypeIGST, gt)
	})

	t.Run("unknown_code_keeps_manual_choice", func(t *testing.T) {
		_, ok := billing.ResolveGSTType("29", "99")
		assert.False(t, ok)
		_, ok = billing.ResolveGSTType("", "07")
		assert.False(t, ok)
	})
}

func TestStateName(t *testing.T) {
	assert.Equal(t, "Karnataka", billing.StateName("29"))
	assert.Equal(t, "Delhi", billing.StateName("07"))
	assert.Empty(t, billing.StateName("00"))
	assert.True(t, billing.ValidStateCode("33"))
	assert.False(t, billing.ValidStateCode("25"))
}
