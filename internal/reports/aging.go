package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"accounting/internal/models"
	"accounting/internal/money"
)

const (
	BucketCurrent    = "current"
	BucketDays1To30  = "days_1_30"
	BucketDays31To60 = "days_31_60"
	BucketDays61To90 = "days_61_90"
	BucketOver90     = "days_over_90"
)

var (
	ARBucketLabels = map[string]string{
		BucketCurrent:    "Current (0 days)",
		BucketDays1To30:  "1-30 days past due",
		BucketDays31To60: "31-60 days past due",
		BucketDays61To90: "61-90 days past due",
		BucketOver90:     "Over 90 days past due",
	}
	APBucketLabels = map[string]string{
		BucketCurrent:    "Current (not yet due)",
		BucketDays1To30:  "1-30 days past due",
		BucketDays31To60: "31-60 days past due",
		BucketDays61To90: "61-90 days past due",
		BucketOver90:     "Over 90 days past due",
	}
)

// DaysPastDue counts whole days from due to asOf; a document not yet due is 0.
func DaysPastDue(due, asOf time.Time) int {
	days := models.DaysBetween(due, asOf)
	if days < 0 {
		return 0
	}
	return days
}

func Bucket(daysPastDue int) string {
	switch {
	case daysPastDue <= 0:
		return BucketCurrent
	case daysPastDue <= 30:
		return BucketDays1To30
	case daysPastDue <= 60:
		return BucketDays31To60
	case daysPastDue <= 90:
		return BucketDays61To90
	default:
		return BucketOver90
	}
}

type AgingSummary struct {
	Current          money.Amount `json:"current"`
	Days1To30        money.Amount `json:"days_1_30"`
	Days31To60       money.Amount `json:"days_31_60"`
	Days61To90       money.Amount `json:"days_61_90"`
	DaysOver90       money.Amount `json:"days_over_90"`
	TotalOutstanding money.Amount `json:"total_outstanding"`
}

type agingTotals struct {
	buckets map[string]decimal.Decimal
	total   decimal.Decimal
}

func newAgingTotals() *agingTotals {
	return &agingTotals{buckets: map[string]decimal.Decimal{}}
}

func (a *agingTotals) add(bucket string, amount decimal.Decimal) {
	a.buckets[bucket] = a.buckets[bucket].Add(amount)
	a.total = a.total.Add(amount)
}

func (a *agingTotals) merge(other *agingTotals) {
	for bucket, amount := range other.buckets {
		a.buckets[bucket] = a.buckets[bucket].Add(amount)
	}
	a.total = a.total.Add(other.total)
}

func (a *agingTotals) summary() AgingSummary {
	return AgingSummary{
		Current:          money.A(a.buckets[BucketCurrent]),
		Days1To30:        money.A(a.buckets[BucketDays1To30]),
		Days31To60:       money.A(a.buckets[BucketDays31To60]),
		Days61To90:       money.A(a.buckets[BucketDays61To90]),
		DaysOver90:       money.A(a.buckets[BucketOver90]),
		TotalOutstanding: money.A(a.total),
	}
}

type InvoiceAging struct {
	InvoiceID        string       `json:"invoice_id"`
	InvoiceNumber    string       `json:"invoice_number"`
	IssueDate        string       `json:"issue_date"`
	DueDate          string       `json:"due_date"`
	TotalAmount      money.Amount `json:"total_amount"`
	RemainingBalance money.Amount `json:"remaining_balance"`
	DaysPastDue      int          `json:"days_past_due"`
	AgingBucket      string       `json:"aging_bucket"`
}

type ClientAgingDetail struct {
	AgingSummary
	Details []InvoiceAging `json:"details"`
}

type ClientAging struct {
	ClientID    string            `json:"client_id"`
	ClientCode  string            `json:"client_code"`
	ClientName  string            `json:"client_name"`
	ClientType  string            `json:"client_type"`
	CreditLimit *money.Amount     `json:"credit_limit"`
	Aging       ClientAgingDetail `json:"aging"`
}

type ARAging struct {
	ReportType   string            `json:"report_type"`
	AsOfDate     string            `json:"as_of_date"`
	GeneratedAt  string            `json:"generated_at"`
	Clients      []ClientAging     `json:"clients"`
	Summary      AgingSummary      `json:"summary"`
	AgingBuckets map[string]string `json:"aging_buckets"`
}

func (b *Builder) ARAging(asOf time.Time) ARAging {
	asOf = models.DateOf(asOf)
	byClient := map[string][]models.Invoice{}
	for _, inv := range b.snap.Invoices {
		if !inv.Status.IsOpen() || models.DateOf(inv.IssueDate).After(asOf) {
			continue
		}
		byClient[inv.ClientID] = append(byClient[inv.ClientID], inv)
	}

	grand := newAgingTotals()
	clients := []ClientAging{}
	for _, client := range b.snap.Clients {
		if !client.IsActive {
			continue
		}
		totals := newAgingTotals()
		details := []InvoiceAging{}
		for _, inv := range byClient[client.ID] {
			remaining := inv.Total.Sub(b.snap.InvoiceAllocated[inv.ID])
			if !remaining.IsPositive() {
				continue
			}
			days := DaysPastDue(inv.DueDate, asOf)
			bucket := Bucket(days)
			totals.add(bucket, remaining)
			details = append(details, InvoiceAging{
				InvoiceID:        inv.ID,
				InvoiceNumber:    inv.Number,
				IssueDate:        formatDate(inv.IssueDate),
				DueDate:          formatDate(inv.DueDate),
				TotalAmount:      money.A(inv.Total),
				RemainingBalance: money.A(remaining),
				DaysPastDue:      days,
				AgingBucket:      bucket,
			})
		}
		if !totals.total.IsPositive() {
			continue
		}
		grand.merge(totals)
		clients = append(clients, ClientAging{
			ClientID:    client.ID,
			ClientCode:  client.Code,
			ClientName:  client.Name,
			ClientType:  client.Type,
			CreditLimit: optionalAmount(client.CreditLimit),
			Aging:       ClientAgingDetail{AgingSummary: totals.summary(), Details: details},
		})
	}

	return ARAging{
		ReportType:   TypeARAging,
		AsOfDate:     formatDate(asOf),
		GeneratedAt:  b.stamp(),
		Clients:      clients,
		Summary:      grand.summary(),
		AgingBuckets: ARBucketLabels,
	}
}

type PayableAging struct {
	Type             string       `json:"type"`
	ID               string       `json:"id"`
	Number           string       `json:"number"`
	Date             string       `json:"date"`
	DueDate          string       `json:"due_date"`
	TotalAmount      money.Amount `json:"total_amount"`
	RemainingBalance money.Amount `json:"remaining_balance"`
	DaysPastDue      int          `json:"days_past_due"`
	AgingBucket      string       `json:"aging_bucket"`
}

type SupplierAgingDetail struct {
	AgingSummary
	Details []PayableAging `json:"details"`
}

type SupplierAging struct {
	SupplierID   string              `json:"supplier_id"`
	SupplierCode string              `json:"supplier_code"`
	SupplierName string              `json:"supplier_name"`
	PaymentTerms string              `json:"payment_terms"`
	CreditLimit  *money.Amount       `json:"credit_limit"`
	Aging        SupplierAgingDetail `json:"aging"`
}

type APAging struct {
	ReportType   string            `json:"report_type"`
	AsOfDate     string            `json:"as_of_date"`
	GeneratedAt  string            `json:"generated_at"`
	Suppliers    []SupplierAging   `json:"suppliers"`
	Summary      AgingSummary      `json:"summary"`
	AgingBuckets map[string]string `json:"aging_buckets"`
}

// APAging ages purchase orders and expenses. Supplier documents carry no due
// date, so it is the document date plus the supplier's payment terms.
func (b *Builder) APAging(asOf time.Time) APAging {
	asOf = models.DateOf(asOf)
	ordersBySupplier := map[string][]models.PurchaseOrder{}
	for _, po := range b.snap.PurchaseOrders {
		if !po.Status.IsPayable() || models.DateOf(po.OrderDate).After(asOf) {
			continue
		}
		ordersBySupplier[po.SupplierID] = append(ordersBySupplier[po.SupplierID], po)
	}

	grand := newAgingTotals()
	suppliers := []SupplierAging{}
	for _, supplier := range b.snap.Suppliers {
		if !supplier.IsActive {
			continue
		}
		terms := models.PaymentTermsDays(supplier.PaymentTerms)
		totals := newAgingTotals()
		details := []PayableAging{}
		add := func(kind, id, number string, date time.Time, total, allocated decimal.Decimal) {
			remaining := total.Sub(allocated)
			if !remaining.IsPositive() {
				return
			}
			due := models.DateOf(date).AddDate(0, 0, terms)
			days := DaysPastDue(due, asOf)
			bucket := Bucket(days)
			totals.add(bucket, remaining)
			details = append(details, PayableAging{
				Type:             kind,
				ID:               id,
				Number:           number,
				Date:             formatDate(date),
				DueDate:          formatDate(due),
				TotalAmount:      money.A(total),
				RemainingBalance: money.A(remaining),
				DaysPastDue:      days,
				AgingBucket:      bucket,
			})
		}
		for _, po := range ordersBySupplier[supplier.ID] {
			add("purchase_order", po.ID, po.Number, po.OrderDate, po.Total, b.snap.PurchaseOrderAllocated[po.ID])
		}
		for _, exp := range b.snap.Expenses {
			if !exp.Status.IsOpen() || models.DateOf(exp.ExpenseDate).After(asOf) || !supplier.MatchesVendor(exp.VendorName) {
				continue
			}
			add("expense", exp.ID, exp.Number, exp.ExpenseDate, exp.TotalAmount(), b.snap.ExpenseAllocated[exp.ID])
		}
		if !totals.total.IsPositive() {
			continue
		}
		grand.merge(totals)
		suppliers = append(suppliers, SupplierAging{
			SupplierID:   supplier.ID,
			SupplierCode: supplier.Code,
			SupplierName: supplier.DisplayName(),
			PaymentTerms: supplier.PaymentTerms,
			CreditLimit:  optionalAmount(supplier.CreditLimit),
			Aging:        SupplierAgingDetail{AgingSummary: totals.summary(), Details: details},
		})
	}

	return APAging{
		ReportType:   TypeAPAging,
		AsOfDate:     formatDate(asOf),
		GeneratedAt:  b.stamp(),
		Suppliers:    suppliers,
		Summary:      grand.summary(),
		AgingBuckets: APBucketLabels,
	}
}

func optionalAmount(value decimal.NullDecimal) *money.Amount {
	if !value.Valid {
		return nil
	}
	amount := money.A(value.Decimal)
	return &amount
}
