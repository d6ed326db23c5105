package service

import (
	"context"
	"time"

	"github.com/ANIKETSHETTY47/energy-grid-analytics-go/aggregator"

	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/domain"
)

type SummaryService struct {
	quotations *QuotationService
	now        func() time.Time
}

// ForPartner summarises every quotation the partner has submitted.
func (s *SummaryService) ForPartner(ctx context.Context, sess Session) (domain.Summary, error) {
	list, err := s.quotations.List(ctx, sess)
	if err != nil {
		return domain.Summary{}, err
	}
	return Summarize(list, s.now()), nil
}

// Summarize computes dashboard stats. "Today" is the UTC calendar day of now;
// the conversion rate is a percentage of all quotations.
func Summarize(list []domain.Quotation, now time.Time) domain.Summary {
	var sum domain.Summary
	sum.TotalQuotations = len(list)
	if len(list) == 0 {
		return sum
	}

	y, m, d := now.UTC().Date()
	points := make([]aggregator.Point, len(list))
	for i, q := range list {
		points[i] = aggregator.Point{Value: q.TotalCost, Timestamp: q.DateSubmitted}

		qy, qm, qd := q.DateSubmitted.UTC().Date()
		if qy == y && qm == m && qd == d {
			sum.TodayQuotations++
		}
		switch q.Status {
		case domain.StatusNew:
			sum.StatusBreakdown.New++
		case domain.StatusContacted:
			sum.StatusBreakdown.Contacted++
		case domain.StatusConverted:
			sum.StatusBreakdown.Converted++
		case domain.StatusLost:
			sum.StatusBreakdown.Lost++
		}
	}

	sum.TotalValue = aggregator.Sum(points)
	sum.AverageValue = aggregator.Average(points)
	sum.ConversionRate = float64(sum.StatusBreakdown.Converted) / float64(len(list)) * 100
	return sum
}
