package report

import "sort"

// SummaryRow is the per-technician reduction of a filtered entry collection.
type SummaryRow struct {
	UserID        string  `json:"user_id"`
	UserName      string  `json:"user_name"`
	TotalMinutes  float64 `json:"total_minutes"`
	TotalAmount   float64 `json:"total_amount"`
	TotalEarnings float64 `json:"total_earnings"`
	EntryCount    int     `json:"entry_count"`
}

// Summarize groups entries by user and accumulates booked minutes, spent
// amounts, earnings (minutes/60 × hourly rate over time entries), and entry
// counts. Rows come back sorted by earnings descending; ties keep first-seen
// order.
func Summarize(entries []Entry) []SummaryRow {
	totals := make(map[string]*SummaryRow)
	order := make([]string, 0)

	for _, e := range entries {
		row, ok := totals[e.UserID]
		if !ok {
			row = &SummaryRow{UserID: e.UserID, UserName: e.UserName}
			totals[e.UserID] = row
			order = append(order, e.UserID)
		}
		row.TotalMinutes += e.MinutesBooked
		row.TotalAmount += e.AmountSpent
		if e.Kind == KindTime {
			row.TotalEarnings += e.MinutesBooked / 60 * e.HourlyRate
		}
		row.EntryCount++
	}

	rows := make([]SummaryRow, 0, len(order))
	for _, userID := range order {
		rows = append(rows, *totals[userID])
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalEarnings > rows[j].TotalEarnings
	})

	return rows
}
