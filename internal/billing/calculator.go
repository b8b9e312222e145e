// Package billing holds the pure invoice computation core: totals
// calculation, GST-type resolution, and recurring-schedule date arithmetic.
// Nothing in this package performs I/O.
package billing

import "finbook/internal/domain"

// defaultAverageGSTRate is shown when there are no live line items to
// average over. Display-only, never used in money math.
const defaultAverageGSTRate = 18

// LineItemInput carries the fields of a line item that participate in the
// totals calculation. Destroy marks a soft-deleted item that must be
// excluded from every sum while remaining in the request for server-side
// diffing.
type LineItemInput struct {
	Quantity float64
	Rate     float64
	GSTRate  float64
	Destroy  bool
}

// DiscountSpec is the invoice-level discount.
type DiscountSpec struct {
	Amount float64
	Type   domain.DiscountType
}

// TaxConfig selects the tax regime and GST split for an invoice.
type TaxConfig struct {
	TaxType  domain.TaxType
	GSTType  domain.GSTType
	CessRate float64
}

// CalculationInput is the full input tuple of the totals calculator.
// ExchangeRate is only consulted when Currency is not INR; nil degrades to a
// factor of 1 rather than failing.
type CalculationInput struct {
	Items        []LineItemInput
	Discount     DiscountSpec
	ExtraCharges float64
	Tax          TaxConfig
	Currency     string
	ExchangeRate *float64
}

// ItemTotals is the per-item output of the calculator, index-aligned with
// the live (non-destroyed) items of the input.
type ItemTotals struct {
	Amount    float64
	TaxAmount float64
	Total     float64
}

// Calculations is the derived totals record.
type Calculations struct {
	Items          []ItemTotals
	Subtotal       float64
	Discount       float64
	TaxableAmount  float64
	CGSTAmount     float64
	SGSTAmount     float64
	IGSTAmount     float64
	CessAmount     float64
	TotalTax       float64
	Total          float64
	TotalInINR     float64
	AverageGSTRate float64
}

// Calculate computes invoice totals from line items, discount, extra
// charges, and tax configuration.
//
// Tax is computed per item on the gross (pre-discount) amount at that item's
// own GST rate; the invoice-level discount and extra charges only move the
// taxable-amount line and the final total. This tax-on-gross ordering is
// deliberate and load-bearing: changing it changes every issued total.
//
// Calculate is pure and idempotent; identical inputs yield identical
// outputs.
func Calculate(in CalculationInput) Calculations {
	var out Calculations

	var rateSum float64
	liveCount := 0
	for _, item := range in.Items {
		if item.Destroy {
			continue
		}
		amount := item.Quantity * item.Rate
		var taxAmount float64
		if in.Tax.TaxType == domain.TaxTypeGSTIndia {
			taxAmount = amount * item.GSTRate / 100
		}
		out.Items = append(out.Items, ItemTotals{
			Amount:    amount,
			TaxAmount: taxAmount,
			Total:     amount + taxAmount,
		})
		out.Subtotal += amount
		out.TotalTax += taxAmount
		rateSum += item.GSTRate
		liveCount++
	}

	if in.Discount.Type == domain.DiscountPercentage {
		out.Discount = out.Subtotal * in.Discount.Amount / 100
	} else {
		out.Discount = in.Discount.Amount
	}

	out.TaxableAmount = out.Subtotal - out.Discount + in.ExtraCharges

	if in.Tax.TaxType == domain.TaxTypeGSTIndia {
		switch in.Tax.GSTType {
		case domain.GSTTypeCGSTSGST:
			out.CGSTAmount = out.TotalTax / 2
			out.SGSTAmount = out.TotalTax / 2
		default:
			out.IGSTAmount = out.TotalTax
		}
	}

	if in.Tax.CessRate > 0 {
		out.CessAmount = out.TaxableAmount * in.Tax.CessRate / 100
	}

	out.Total = out.TaxableAmount + out.TotalTax + out.CessAmount

	if in.Currency == domain.BaseCurrency || in.Currency == "" {
		out.TotalInINR = out.Total
	} else {
		rate := 1.0
		if in.ExchangeRate != nil {
			rate = *in.ExchangeRate
		}
		out.TotalInINR = out.Total * rate
	}

	// Display-only arithmetic mean of the live items' GST rates.
	if liveCount > 0 {
		out.AverageGSTRate = rateSum / float64(liveCount)
	} else {
		out.AverageGSTRate = defaultAverageGSTRate
	}

	return out
}
