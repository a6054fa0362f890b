package services

import (
	"strings"
	"time"

	"github.com/sejuk-service/aircond-service-api/models"
	"github.com/shopspring/decimal"
)

// TechnicianKPI is the derived per-technician scorecard. It is computed on
// demand from the order collection and never persisted.
type TechnicianKPI struct {
	TechnicianID string  `json:"technician_id"`
	Name         string  `json:"name"`
	JobsDone     int     `json:"jobs_done"`
	TotalAmount  float64 `json:"total_amount"`
	Reworks      int     `json:"reworks"`
}

// PeriodMetrics aggregates completed orders inside one reporting window
type PeriodMetrics struct {
	TotalJobs    int     `json:"total_jobs"`
	TotalRevenue float64 `json:"total_revenue"`
	TotalReworks int     `json:"total_reworks"`
}

// PercentageChanges holds window-over-window deltas, rounded to whole percent
type PercentageChanges struct {
	Jobs    int `json:"jobs"`
	Revenue int `json:"revenue"`
	Reworks int `json:"reworks"`
}

// WeeklyMetrics compares the current Monday-Sunday week with the previous one
type WeeklyMetrics struct {
	CurrentWeek       PeriodMetrics     `json:"current_week"`
	PreviousWeek      PeriodMetrics     `json:"previous_week"`
	PercentageChanges PercentageChanges `json:"percentage_changes"`
}

// MonthlyTrends compares the current calendar month with the previous one
type MonthlyTrends struct {
	CurrentMonth      PeriodMetrics     `json:"current_month"`
	PreviousMonth     PeriodMetrics     `json:"previous_month"`
	PercentageChanges PercentageChanges `json:"percentage_changes"`
}

// TechnicianKPIs folds the order collection into one KPI record per known
// technician. Only completed orders are credited; orders referencing a
// technician id absent from the directory are ignored.
func TechnicianKPIs(orders []models.Order, technicians []models.Technician) []TechnicianKPI {
	kpis := make([]TechnicianKPI, len(technicians))
	index := make(map[string]int, len(technicians))
	for i, tech := range technicians {
		kpis[i] = TechnicianKPI{TechnicianID: tech.ID, Name: tech.Name}
		index[tech.ID] = i
	}

	totals := make([]decimal.Decimal, len(technicians))
	for i := range orders {
		order := &orders[i]
		pos, known := index[order.AssignedTechnicianID]
		if !known || order.Status != models.StatusCompleted {
			continue
		}
		kpis[pos].JobsDone++
		totals[pos] = totals[pos].Add(OrderRevenue(order))
		if mentionsRework(order) {
			kpis[pos].Reworks++
		}
	}

	for i := range kpis {
		kpis[i].TotalAmount = totals[i].Round(2).InexactFloat64()
	}
	return kpis
}

// ComputeWeeklyMetrics partitions completed orders into the current
// Monday-Sunday window and the immediately preceding week, keyed on
// creation time.
func ComputeWeeklyMetrics(orders []models.Order, now time.Time) WeeklyMetrics {
	currentStart := weekStart(now)
	currentEnd := currentStart.AddDate(0, 0, 7)
	previousStart := currentStart.AddDate(0, 0, -7)

	current := metricsInWindow(orders, currentStart, currentEnd)
	previous := metricsInWindow(orders, previousStart, currentStart)

	return WeeklyMetrics{
		CurrentWeek:       current,
		PreviousWeek:      previous,
		PercentageChanges: changesBetween(current, previous),
	}
}

// ComputeMonthlyTrends is the calendar-month variant of the weekly comparison
func ComputeMonthlyTrends(orders []models.Order, now time.Time) MonthlyTrends {
	currentStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	currentEnd := currentStart.AddDate(0, 1, 0)
	previousStart := currentStart.AddDate(0, -1, 0)

	current := metricsInWindow(orders, currentStart, currentEnd)
	previous := metricsInWindow(orders, previousStart, currentStart)

	return MonthlyTrends{
		CurrentMonth:      current,
		PreviousMonth:     previous,
		PercentageChanges: changesBetween(current, previous),
	}
}

// weekStart returns the Monday 00:00 boundary of the week containing t
func weekStart(t time.Time) time.Time {
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday belongs to the week that started six days earlier
	}
	day := t.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}

// metricsInWindow sums completed orders created in [start, end)
func metricsInWindow(orders []models.Order, start, end time.Time) PeriodMetrics {
	var m PeriodMetrics
	revenue := decimal.Zero
	for i := range orders {
		order := &orders[i]
		if order.Status != models.StatusCompleted {
			continue
		}
		if order.CreatedAt.Before(start) || !order.CreatedAt.Before(end) {
			continue
		}
		m.TotalJobs++
		revenue = revenue.Add(OrderRevenue(order))
		if mentionsRework(order) {
			m.TotalReworks++
		}
	}
	m.TotalRevenue = revenue.Round(2).InexactFloat64()
	return m
}

func changesBetween(current, previous PeriodMetrics) PercentageChanges {
	return PercentageChanges{
		Jobs:    percentageChange(decimal.NewFromInt(int64(current.TotalJobs)), decimal.NewFromInt(int64(previous.TotalJobs))),
		Revenue: percentageChange(decimal.NewFromFloat(current.TotalRevenue), decimal.NewFromFloat(previous.TotalRevenue)),
		Reworks: percentageChange(decimal.NewFromInt(int64(current.TotalReworks)), decimal.NewFromInt(int64(previous.TotalReworks))),
	}
}

// percentageChange rounds (current-previous)/previous to a whole percent.
// A zero previous value maps to 100 when current is positive and 0 otherwise,
// so the comparison never divides by zero.
func percentageChange(current, previous decimal.Decimal) int {
	if previous.IsZero() {
		if current.IsPositive() {
			return 100
		}
		return 0
	}
	change := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100))
	return int(change.Round(0).IntPart())
}

// mentionsRework is the historical heuristic for counting reworks: completed
// orders whose remarks or work summary contain the word "rework". There is
// no structured flag on old records, so the substring match stays.
func mentionsRework(o *models.Order) bool {
	return strings.Contains(strings.ToLower(o.Remarks), "rework") ||
		strings.Contains(strings.ToLower(o.WorkDone), "rework")
}
