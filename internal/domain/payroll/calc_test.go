package payroll

import (
	"testing"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/attendance"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputePayable(t *testing.T) {
	tests := []struct {
		name        string
		salary      string
		workDays    int
		absent      int
		wantPerDay  string
		wantPayable string
	}{
		{"two absences", "30000", 25, 2, "1200", "27600"},
		{"no absence", "30000", 25, 0, "1200", "30000"},
		{"all absent", "30000", 25, 25, "1200", "0"},
		{"more absences than work days floors at zero", "30000", 25, 30, "1200", "0"},
		{"zero work days treated as one", "1000", 0, 0, "1000", "1000"},
		{"rounded to cents", "10000", 3, 1, "3333.33", "6666.67"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perDay, payable := ComputePayable(decimal.RequireFromString(tt.salary), tt.workDays, tt.absent)
			assert.True(t, decimal.RequireFromString(tt.wantPerDay).Equal(perDay), "perDay = %s", perDay)
			assert.True(t, decimal.RequireFromString(tt.wantPayable).Equal(payable), "payable = %s", payable)
		})
	}
}

func TestComputePayable_MonotonicInAbsence(t *testing.T) {
	salary := decimal.RequireFromString("4750.50")
	_, prev := ComputePayable(salary, 22, 0)
	assert.True(t, prev.Equal(salary.Round(2)))

	for absent := 1; absent <= 30; absent++ {
		_, payable := ComputePayable(salary, 22, absent)
		assert.True(t, payable.LessThanOrEqual(prev), "absent=%d payable=%s prev=%s", absent, payable, prev)
		assert.False(t, payable.IsNegative())
		prev = payable
	}
}

func TestSummarize(t *testing.T) {
	marks := []AttendanceMark{
		{StaffID: "s1", Date: "2025-03-03", Status: attendance.StatusPresent},
		{StaffID: "s1", Date: "2025-03-04", Status: attendance.StatusLate},
		{StaffID: "s1", Date: "2025-03-05", Status: attendance.StatusHalfDay},
		{StaffID: "s1", Date: "2025-03-06", Status: attendance.StatusEarlyExit},
		{StaffID: "s1", Date: "2025-03-07", Status: attendance.StatusAbsent},
		{StaffID: "s1", Date: "2025-03-08", Status: attendance.StatusAbsent},
		{StaffID: "s1", Date: "2025-03-10", Status: attendance.StatusOnLeave},
		{StaffID: "s1", Date: "2025-03-11", Status: attendance.StatusHoliday},
		{StaffID: "s1", Date: "2025-03-09", Status: attendance.StatusWeekend},
	}

	got := Summarize(marks, map[string]bool{"2025-03-08": true})

	assert.Equal(t, AttendanceSummary{
		PresentDays: 4,
		AbsentDays:  1,
		LateDays:    1,
		OnLeaveDays: 2,
		HolidayDays: 1,
	}, got)
}

func TestSettlement_BaseSalary(t *testing.T) {
	s := Settlement{
		Amount:    decimal.RequireFromString("5200"),
		Bonus:     decimal.RequireFromString("500"),
		Deduction: decimal.RequireFromString("300"),
	}
	assert.True(t, decimal.RequireFromString("5000").Equal(s.BaseSalary()))
}

func TestProcessRequest_Validate(t *testing.T) {
	valid := func() ProcessRequest {
		return ProcessRequest{
			StaffID:       "s1",
			Month:         "2025-03",
			Amount:        decimal.RequireFromString("5000"),
			PaymentMethod: "cash",
		}
	}

	t.Run("valid", func(t *testing.T) {
		req := valid()
		assert.NoError(t, req.Validate())
	})

	t.Run("negative base salary", func(t *testing.T) {
		req := valid()
		req.Amount = decimal.RequireFromString("100")
		req.Bonus = decimal.RequireFromString("200")
		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), ErrNegativeBaseSalary.Error())
	})

	t.Run("bad method and month", func(t *testing.T) {
		req := valid()
		req.PaymentMethod = "crypto"
		req.Month = "2025-13"
		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "payment_method")
		assert.Contains(t, err.Error(), "month")
	})
}

func TestBulkRequest_Validate(t *testing.T) {
	t.Run("empty payments", func(t *testing.T) {
		req := BulkRequest{Month: "2025-03", PaymentMethod: "cash"}
		assert.Error(t, req.Validate())
	})

	t.Run("duplicate staff", func(t *testing.T) {
		req := BulkRequest{
			Month:         "2025-03",
			PaymentMethod: "cash",
			Payments: []BulkPayment{
				{StaffID: "s1", Amount: decimal.NewFromInt(10)},
				{StaffID: "s1", Amount: decimal.NewFromInt(20)},
			},
		}
		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "payments[1].staff_id")
	})
}
