// Package orders computes subtotals, tax breakdowns and revenue rollups over
// placed orders. All arithmetic happens in integer cents; the stored float
// prices are converted once on the way in.
package orders

import (
	"fmt"
	"math"
	"sort"
	"time"

	"foodonline-api/models"

	"github.com/jinzhu/now"
)

// AllVendors disables the vendor filter.
const AllVendors uint = 0

// Cents is an amount of money in hundredths of the currency unit.
type Cents int64

// FromFloat rounds a currency amount to the nearest cent.
func FromFloat(f float64) Cents {
	return Cents(math.Round(f * 100))
}

func (c Cents) Float64() float64 {
	return float64(c) / 100
}

func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON renders the amount as a JSON number with two decimals.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// TaxAmount is one line of a breakdown.
type TaxAmount struct {
	Type       string  `json:"tax_type"`
	Percentage float64 `json:"tax_percentage"`
	Amount     Cents   `json:"tax_amount"`
}

// Totals bundles the three figures shown on an order page.
type Totals struct {
	Subtotal   Cents       `json:"subtotal"`
	Taxes      []TaxAmount `json:"tax_data"`
	GrandTotal Cents       `json:"grand_total"`
}

// Subtotal sums quantity * unit price over the order's items belonging to
// vendorID, or over every item when vendorID is AllVendors.
func Subtotal(order *models.Order, vendorID uint) Cents {
	var total Cents
	for _, item := range order.Items {
		if vendorID != AllVendors && item.VendorID != vendorID {
			continue
		}
		total += FromFloat(item.Price) * Cents(item.Quantity)
	}
	return total
}

// TaxBreakdown returns the order's tax snapshot. For a single vendor every
// amount is scaled by that vendor's share of the order subtotal; percentages
// are reported unchanged. Lines are sorted by tax type.
func TaxBreakdown(order *models.Order, vendorID uint) []TaxAmount {
	lines := make([]TaxAmount, 0, len(order.TaxData))
	if len(order.TaxData) == 0 {
		return lines
	}

	orderSubtotal := Subtotal(order, AllVendors)
	share := orderSubtotal
	if vendorID != AllVendors {
		share = Subtotal(order, vendorID)
	}

	for taxType, line := range order.TaxData {
		amount := FromFloat(line.Amount)
		if vendorID != AllVendors {
			amount = scale(amount, share, orderSubtotal)
		}
		lines = append(lines, TaxAmount{
			Type:       taxType,
			Percentage: line.Percentage,
			Amount:     amount,
		})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Type < lines[j].Type })
	return lines
}

// scale returns amount * part / whole rounded half away from zero.
func scale(amount, part, whole Cents) Cents {
	if whole == 0 || part == 0 {
		return 0
	}
	if part == whole {
		return amount
	}
	return Cents(math.Round(float64(amount) * float64(part) / float64(whole)))
}

// GrandTotal is the subtotal plus every tax amount of the breakdown.
func GrandTotal(order *models.Order, vendorID uint) Cents {
	return Compute(order, vendorID).GrandTotal
}

// Compute returns subtotal, breakdown and grand total in one pass.
func Compute(order *models.Order, vendorID uint) Totals {
	t := Totals{
		Subtotal: Subtotal(order, vendorID),
		Taxes:    TaxBreakdown(order, vendorID),
	}
	t.GrandTotal = t.Subtotal
	for _, tax := range t.Taxes {
		t.GrandTotal += tax.Amount
	}
	return t
}

// InMonth reports whether t falls in the calendar month containing ref,
// using ref's location for the month boundaries.
func InMonth(t, ref time.Time) bool {
	start := now.With(ref).BeginningOfMonth()
	end := start.AddDate(0, 1, 0)
	return !t.Before(start) && t.Before(end)
}

// MonthlyRevenue sums the vendor's grand totals over placed orders created in
// the month containing ref.
func MonthlyRevenue(list []models.Order, vendorID uint, ref time.Time) Cents {
	var total Cents
	for i := range list {
		if !list[i].IsOrdered || !InMonth(list[i].CreatedAt, ref) {
			continue
		}
		total += GrandTotal(&list[i], vendorID)
	}
	return total
}

// TotalRevenue sums the vendor's grand totals over every placed order.
func TotalRevenue(list []models.Order, vendorID uint) Cents {
	var total Cents
	for i := range list {
		if !list[i].IsOrdered {
			continue
		}
		total += GrandTotal(&list[i], vendorID)
	}
	return total
}

// BuildTaxData snapshots the registered taxes against a subtotal. The returned
// total tax equals the sum of the snapshot amounts.
func BuildTaxData(subtotal Cents, taxes []models.Tax) (models.TaxData, Cents) {
	data := make(models.TaxData, len(taxes))
	var totalTax Cents
	for _, tax := range taxes {
		if !tax.IsRegistered {
			continue
		}
		amount := Cents(math.Round(float64(subtotal) * tax.Percentage / 100))
		data[tax.Type] = models.TaxLine{
			Percentage: tax.Percentage,
			Amount:     amount.Float64(),
		}
		totalTax += amount
	}
	return data, totalTax
}
