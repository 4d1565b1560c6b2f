package reporting

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/salesdesk/internal/domain/models"
	"github.com/mamadbah2/salesdesk/internal/pricing"
)

const (
	dateLayout   = "2006-01-02"
	monthLayout  = "2006-01"
	monthsShown  = 6
	latestShown  = 10
	digestTopN   = 3
	digestPeriod = 7 * 24 * time.Hour
)

// SaleLister is the read side the reports are computed from.
type SaleLister interface {
	ListSales(ctx context.Context) ([]models.Sale, error)
}

// Service exposes sales analytics for the dashboard, the reports page and
// the WhatsApp digest.
type Service struct {
	sales    SaleLister
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a new reporting service instance. loc decides which
// month is current; nil means UTC.
func NewService(sales SaleLister, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{sales: sales, location: loc, logger: logger, now: time.Now}
}

// accumulator folds sales into a period summary. Cost includes freight.
type accumulator struct {
	quantity, revenue, cost, freight decimal.Decimal
	count                            int
}

func (a *accumulator) add(sale models.Sale) {
	totals := sale.Totals()
	a.quantity = a.quantity.Add(sale.TotalQuantity())
	a.revenue = a.revenue.Add(totals.Revenue)
	a.cost = a.cost.Add(totals.Cost)
	a.freight = a.freight.Add(decimal.NewFromFloat(sale.Freight))
	a.count++
}

func (a *accumulator) summary(period string) models.PeriodSummary {
	money := func(d decimal.Decimal) float64 { return pricing.RoundMoney(d).InexactFloat64() }
	return models.PeriodSummary{
		Period:   period,
		Quantity: money(a.quantity),
		Revenue:  money(a.revenue),
		Cost:     money(a.cost),
		Freight:  money(a.freight),
		Profit:   money(a.revenue.Sub(a.cost)),
		Sales:    a.count,
	}
}

// Dashboard aggregates all-time totals, the latest months with sales and the
// current month.
func (s *Service) Dashboard(ctx context.Context) (models.Dashboard, error) {
	sales, err := s.sales.ListSales(ctx)
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("load sales: %w", err)
	}

	currentMonth := s.now().In(s.location).Format(monthLayout)
	var all accumulator
	byMonth := make(map[string]*accumulator)
	for _, sale := range sales {
		all.add(sale)
		month := sale.Date.Format(monthLayout)
		if byMonth[month] == nil {
			byMonth[month] = &accumulator{}
		}
		byMonth[month].add(sale)
	}

	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	if len(months) > monthsShown {
		months = months[:monthsShown]
	}

	dash := models.Dashboard{
		Totals:  all.summary("all"),
		Monthly: make([]models.PeriodSummary, 0, len(months)),
		Latest:  sales[:min(latestShown, len(sales))],
	}
	for _, month := range months {
		dash.Monthly = append(dash.Monthly, byMonth[month].summary(month))
	}
	current := byMonth[currentMonth]
	if current == nil {
		current = &accumulator{}
	}
	dash.Current = current.summary(currentMonth)
	return dash, nil
}

// ClientReport totals every client's sales, highest revenue first.
func (s *Service) ClientReport(ctx context.Context) (models.ClientReport, error) {
	sales, err := s.sales.ListSales(ctx)
	if err != nil {
		return models.ClientReport{}, fmt.Errorf("load sales: %w", err)
	}

	byClient := make(map[string]*accumulator)
	var all accumulator
	for _, sale := range sales {
		if byClient[sale.ClientName] == nil {
			byClient[sale.ClientName] = &accumulator{}
		}
		byClient[sale.ClientName].add(sale)
		all.add(sale)
	}

	report := models.ClientReport{Rows: make([]models.ClientSummary, 0, len(byClient))}
	for name, acc := range byClient {
		report.Rows = append(report.Rows, clientSummary(name, acc))
	}
	sort.Slice(report.Rows, func(i, j int) bool {
		if report.Rows[i].Revenue != report.Rows[j].Revenue {
			return report.Rows[i].Revenue > report.Rows[j].Revenue
		}
		return report.Rows[i].ClientName < report.Rows[j].ClientName
	})
	report.Totals = clientSummary("", &all)
	return report, nil
}

func clientSummary(name string, acc *accumulator) models.ClientSummary {
	p := acc.summary("")
	return models.ClientSummary{ClientName: name, Quantity: p.Quantity, Revenue: p.Revenue, Cost: p.Cost, Profit: p.Profit}
}

// WeeklyDigest renders the sales of the seven days ending on end as a short
// text message.
func (s *Service) WeeklyDigest(ctx context.Context, end time.Time) (string, error) {
	sales, err := s.sales.ListSales(ctx)
	if err != nil {
		return "", fmt.Errorf("load sales: %w", err)
	}

	end = end.In(s.location)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	first := last.Add(-digestPeriod + 24*time.Hour)
	header := fmt.Sprintf("Sales summary (%s - %s)", first.Format(dateLayout), last.Format(dateLayout))

	var week accumulator
	byClient := make(map[string]*accumulator)
	for _, sale := range sales {
		day := sale.Date.UTC()
		if day.Before(first) || day.After(last) {
			continue
		}
		week.add(sale)
		if byClient[sale.ClientName] == nil {
			byClient[sale.ClientName] = &accumulator{}
		}
		byClient[sale.ClientName].add(sale)
	}

	if week.count == 0 {
		s.logger.Debug("weekly digest without sales", zap.String("from", first.Format(dateLayout)))
		return header + ": no sales recorded.", nil
	}

	sum := week.summary("")
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d sales.\n", header, sum.Sales)
	fmt.Fprintf(&b, "Quantity %.2f | SP %.2f | CP %.2f (freight %.2f) | P/L %.2f\n", sum.Quantity, sum.Revenue, sum.Cost, sum.Freight, sum.Profit)

	top := make([]models.ClientSummary, 0, len(byClient))
	for name, acc := range byClient {
		top = append(top, clientSummary(name, acc))
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Revenue != top[j].Revenue {
			return top[i].Revenue > top[j].Revenue
		}
		return top[i].ClientName < top[j].ClientName
	})
	b.WriteString("Top clients:")
	for i, row := range top[:min(digestTopN, len(top))] {
		fmt.Fprintf(&b, "\n%d. %s: SP %.2f, P/L %.2f", i+1, row.ClientName, row.Revenue, row.Profit)
	}
	return b.String(), nil
}
