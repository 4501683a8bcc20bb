// Package analytics derives sales reports from placed orders.
package analytics

import (
	"cmp"
	"slices"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/posify/internal/domain/order"
	"github.com/xenking/posify/internal/domain/pricing"
)

// Period is the reporting window.
type Period string

const (
	Today Period = "today"
	Week  Period = "week"
	Month Period = "month"
)

// ErrInvalidPeriod is returned for an unknown period.
var ErrInvalidPeriod = errors.New("invalid period")

// ParsePeriod parses a period name. Empty means today.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return Today, nil
	case Today, Week, Month:
		return p, nil
	default:
		return "", errors.Wrapf(ErrInvalidPeriod, "%q", s)
	}
}

// Window returns the start of the period ending at now and the start of
// the period before it.
func (p Period) Window(now time.Time) (start, prevStart time.Time) {
	switch p {
	case Week:
		start = now.AddDate(0, 0, -7)
		return start, start.AddDate(0, 0, -7)
	case Month:
		start = now.AddDate(0, 0, -30)
		return start, start.AddDate(0, 0, -30)
	default:
		y, m, d := now.Date()
		start = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 0, -1)
	}
}

// Sales is the revenue summary of settled orders.
type Sales struct {
	Total         decimal.Decimal `json:"total"`
	Orders        int             `json:"orders"`
	AvgOrderValue decimal.Decimal `json:"avgOrderValue"`
	// Growth is the percentage change of Total against the previous period.
	Growth decimal.Decimal `json:"growth"`
}

// TopItem is a best-selling menu item.
type TopItem struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// HourBucket is the sales of one hour of the day.
type HourBucket struct {
	Hour   int             `json:"hour"`
	Sales  decimal.Decimal `json:"sales"`
	Orders int             `json:"orders"`
}

// DayBucket is the sales of one calendar day.
type DayBucket struct {
	Day    string          `json:"day"`
	Date   string          `json:"date"`
	Sales  decimal.Decimal `json:"sales"`
	Orders int             `json:"orders"`
}

// CategoryShare is the item revenue of one menu category.
type CategoryShare struct {
	Category   string          `json:"category"`
	Sales      decimal.Decimal `json:"sales"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Report is the analytics dashboard for one period.
type Report struct {
	Period            Period               `json:"period"`
	Sales             Sales                `json:"sales"`
	Orders            map[order.Status]int `json:"orders"`
	TopItems          []TopItem            `json:"topItems"`
	HourlyBreakdown   []HourBucket         `json:"hourlyBreakdown,omitempty"`
	DailyBreakdown    []DayBucket          `json:"dailyBreakdown,omitempty"`
	CategoryBreakdown []CategoryShare      `json:"categoryBreakdown,omitempty"`
}

// Metric returns a single section of the report by its JSON name.
func (r Report) Metric(name string) (any, bool) {
	switch name {
	case "sales":
		return r.Sales, true
	case "orders":
		return r.Orders, true
	case "topItems":
		return r.TopItems, true
	case "hourlyBreakdown":
		return r.HourlyBreakdown, true
	case "dailyBreakdown":
		return r.DailyBreakdown, true
	case "categoryBreakdown":
		return r.CategoryBreakdown, true
	default:
		return nil, false
	}
}

// TopItemsLimit caps the best-seller list.
const TopItemsLimit = 5

var hundred = decimal.NewFromInt(100)

// settled reports whether an order counts towards sales.
func settled(o order.Order) bool {
	return o.PaymentStatus == order.PaymentPaid && o.Status != order.StatusCancelled
}

func sum(orders []order.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.Total)
	}
	return total
}

// Compute builds the report for period p ending at now. Sales figures only
// include paid, non-cancelled orders; status counts include every order
// placed in the period.
func Compute(orders []order.Order, p Period, now time.Time) Report {
	start, prevStart := p.Window(now)

	var current, previous []order.Order
	r := Report{
		Period: p,
		Orders: map[order.Status]int{
			order.StatusPending:   0,
			order.StatusPreparing: 0,
			order.StatusReady:     0,
			order.StatusServed:    0,
			order.StatusCancelled: 0,
		},
		TopItems: []TopItem{},
	}
	for _, o := range orders {
		switch {
		case o.CreatedAt.Before(prevStart) || o.CreatedAt.After(now):
			continue
		case o.CreatedAt.Before(start):
			if settled(o) {
				previous = append(previous, o)
			}
			continue
		}
		r.Orders[o.Status]++
		if settled(o) {
			current = append(current, o)
		}
	}

	r.Sales = salesOf(current, sum(previous))
	r.TopItems = topItems(current)
	switch p {
	case Today:
		r.HourlyBreakdown = hourly(current, now.Location())
	case Week:
		r.DailyBreakdown = daily(current, now)
	case Month:
		r.CategoryBreakdown = categories(current)
	}
	return r
}

func salesOf(orders []order.Order, previous decimal.Decimal) Sales {
	s := Sales{
		Total:         sum(orders),
		Orders:        len(orders),
		AvgOrderValue: decimal.Zero,
		Growth:        decimal.Zero,
	}
	if s.Orders > 0 {
		s.AvgOrderValue = s.Total.Div(decimal.NewFromInt(int64(s.Orders))).Round(2)
	}
	if previous.IsPositive() {
		s.Growth = s.Total.Sub(previous).Div(previous).Mul(hundred).Round(1)
	}
	s.Total = s.Total.Round(2)
	return s
}

func lineRevenue(price decimal.Decimal, qty int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}

func topItems(orders []order.Order) []TopItem {
	byID := map[string]*TopItem{}
	for _, o := range orders {
		for _, l := range o.Items {
			price, err := pricing.EffectivePrice(l.MenuItem)
			if err != nil {
				price = l.MenuItem.Price
			}
			it, ok := byID[l.MenuItem.ID]
			if !ok {
				it = &TopItem{ID: l.MenuItem.ID, Name: l.MenuItem.Name, Revenue: decimal.Zero}
				byID[l.MenuItem.ID] = it
			}
			it.Orders += l.Quantity
			it.Revenue = it.Revenue.Add(lineRevenue(price, l.Quantity))
		}
	}

	out := make([]TopItem, 0, len(byID))
	for _, it := range byID {
		it.Revenue = it.Revenue.Round(2)
		out = append(out, *it)
	}
	slices.SortFunc(out, func(a, b TopItem) int {
		if c := cmp.Compare(b.Orders, a.Orders); c != 0 {
			return c
		}
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if len(out) > TopItemsLimit {
		out = out[:TopItemsLimit]
	}
	return out
}

func hourly(orders []order.Order, loc *time.Location) []HourBucket {
	byHour := map[int]*HourBucket{}
	for _, o := range orders {
		h := o.CreatedAt.In(loc).Hour()
		b, ok := byHour[h]
		if !ok {
			b = &HourBucket{Hour: h, Sales: decimal.Zero}
			byHour[h] = b
		}
		b.Orders++
		b.Sales = b.Sales.Add(o.Total)
	}
	out := make([]HourBucket, 0, len(byHour))
	for _, b := range byHour {
		b.Sales = b.Sales.Round(2)
		out = append(out, *b)
	}
	slices.SortFunc(out, func(a, b HourBucket) int { return cmp.Compare(a.Hour, b.Hour) })
	return out
}

func daily(orders []order.Order, now time.Time) []DayBucket {
	out := make([]DayBucket, 7)
	index := map[string]int{}
	for i := range out {
		d := now.AddDate(0, 0, i-6)
		out[i] = DayBucket{
			Day:   d.Format("Mon"),
			Date:  d.Format(time.DateOnly),
			Sales: decimal.Zero,
		}
		index[out[i].Date] = i
	}
	for _, o := range orders {
		i, ok := index[o.CreatedAt.In(now.Location()).Format(time.DateOnly)]
		if !ok {
			continue
		}
		out[i].Orders++
		out[i].Sales = out[i].Sales.Add(o.Total)
	}
	for i := range out {
		out[i].Sales = out[i].Sales.Round(2)
	}
	return out
}

func categories(orders []order.Order) []CategoryShare {
	byCat := map[string]decimal.Decimal{}
	total := decimal.Zero
	for _, o := range orders {
		for _, l := range o.Items {
			price, err := pricing.EffectivePrice(l.MenuItem)
			if err != nil {
				price = l.MenuItem.Price
			}
			rev := lineRevenue(price, l.Quantity)
			byCat[l.MenuItem.Category] = byCat[l.MenuItem.Category].Add(rev)
			total = total.Add(rev)
		}
	}

	out := make([]CategoryShare, 0, len(byCat))
	for cat, sales := range byCat {
		share := CategoryShare{Category: cat, Sales: sales.Round(2), Percentage: decimal.Zero}
		if total.IsPositive() {
			share.Percentage = sales.Div(total).Mul(hundred).Round(1)
		}
		out = append(out, share)
	}
	slices.SortFunc(out, func(a, b CategoryShare) int {
		if c := b.Sales.Cmp(a.Sales); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}
