package ledger

import (
	"context"
	"time"

	"himakeu/models"
)

// FinancialSummary is the read-only cash rollup shown on dashboards. Only
// approved rows contribute; pending and rejected rows never move the balance.
type FinancialSummary struct {
	CurrentBalance int64 `json:"currentBalance"`
	TotalIncome    int64 `json:"totalIncome"`
	TotalExpense   int64 `json:"totalExpense"`
	MonthlyIncome  int64 `json:"monthlyIncome"`
	MonthlyExpense int64 `json:"monthlyExpense"`
}

// DuesPeriod is one month of a member's dues standing, derived from the
// ledger rather than kept in its own table.
type DuesPeriod struct {
	Period   string     `json:"period"` // YYYY-MM
	Amount   int64      `json:"amount"`
	Status   string     `json:"status"` // paid | pending | unpaid
	PaidDate *time.Time `json:"paidDate,omitempty"`
}

// FinancialSummary computes income/expense totals over approved rows, all
// time and for the current calendar month, in one aggregate query. Summaries
// are computed per call; two sequential calls may disagree while submissions
// are in flight.
func (s *Store) FinancialSummary(ctx context.Context) (*FinancialSummary, error) {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var row struct {
		TotalIncome    int64
		TotalExpense   int64
		MonthlyIncome  int64
		MonthlyExpense int64
	}
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(SUM(CASE WHEN transaction_type = 'income'  AND status = 'approved' THEN amount ELSE 0 END), 0) AS total_income,
			COALESCE(SUM(CASE WHEN transaction_type = 'expense' AND status = 'approved' THEN amount ELSE 0 END), 0) AS total_expense,
			COALESCE(SUM(CASE WHEN transaction_type = 'income'  AND status = 'approved' AND created_at >= ? THEN amount ELSE 0 END), 0) AS monthly_income,
			COALESCE(SUM(CASE WHEN transaction_type = 'expense' AND status = 'approved' AND created_at >= ? THEN amount ELSE 0 END), 0) AS monthly_expense
		FROM transactions`, monthStart, monthStart).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &FinancialSummary{
		CurrentBalance: row.TotalIncome - row.TotalExpense,
		TotalIncome:    row.TotalIncome,
		TotalExpense:   row.TotalExpense,
		MonthlyIncome:  row.MonthlyIncome,
		MonthlyExpense: row.MonthlyExpense,
	}, nil
}

// MonthlyTotal is one month's bucket in the yearly rollup. Months with no
// approved rows stay at zero.
type MonthlyTotal struct {
	Month   int   `json:"month"` // 1..12
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
}

// YearlySummary breaks approved income and expense down per calendar month of
// one year, for the admin reporting view.
func (s *Store) YearlySummary(ctx context.Context, year int) ([]MonthlyTotal, error) {
	var rows []struct {
		Month           int
		TransactionType string
		Total           int64
	}
	err := s.db.WithContext(ctx).Raw(`
		SELECT MONTH(created_at) AS month, transaction_type, SUM(amount) AS total
		FROM transactions
		WHERE YEAR(created_at) = ? AND status = 'approved'
		GROUP BY MONTH(created_at), transaction_type
		ORDER BY MONTH(created_at)`, year).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]MonthlyTotal, 12)
	for i := range out {
		out[i].Month = i + 1
	}
	for _, r := range rows {
		if r.Month < 1 || r.Month > 12 {
			continue
		}
		switch r.TransactionType {
		case string(models.TypeIncome):
			out[r.Month-1].Income = r.Total
		case string(models.TypeExpense):
			out[r.Month-1].Expense = r.Total
		}
	}
	return out, nil
}

// TotalPaidByMember sums the member's approved income transactions.
func (s *Store) TotalPaidByMember(ctx context.Context, memberID uint) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE member_id = ? AND transaction_type = 'income' AND status = 'approved'`,
		memberID).Scan(&total).Error
	return total, err
}

// DuesStatus derives the member's standing for the last `months` calendar
// months. A period is paid once an approved income submission for it covers
// duesAmount, pending while a submission awaits a decision, unpaid otherwise.
func (s *Store) DuesStatus(ctx context.Context, memberID uint, duesAmount int64, months int) ([]DuesPeriod, error) {
	if months <= 0 {
		months = 6
	}
	now := time.Now()
	// anchor on the first of the month so AddDate never normalizes across
	// month boundaries (May 31 minus one month is May 1, not April 30)
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	periods := make([]string, 0, months)
	for i := 0; i < months; i++ {
		periods = append(periods, anchor.AddDate(0, -i, 0).Format("2006-01"))
	}

	var txns []models.Transaction
	err := s.db.WithContext(ctx).
		Where("member_id = ? AND transaction_type = ? AND period IN ?", memberID, models.TypeIncome, periods).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}

	out := make([]DuesPeriod, 0, months)
	for _, p := range periods {
		dp := DuesPeriod{Period: p, Amount: duesAmount, Status: "unpaid"}
		var approvedSum int64
		for i := range txns {
			t := &txns[i]
			if t.Period != p {
				continue
			}
			switch t.Status {
			case models.StatusApproved:
				approvedSum += t.Amount
				if approvedSum >= duesAmount && dp.PaidDate == nil {
					dp.PaidDate = t.ApprovedAt
				}
			case models.StatusPending:
				if dp.Status == "unpaid" {
					dp.Status = "pending"
				}
			}
		}
		if approvedSum >= duesAmount {
			dp.Status = "paid"
		}
		out = append(out, dp)
	}
	return out, nil
}
