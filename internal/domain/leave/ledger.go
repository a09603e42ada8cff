package leave

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/shift"
)

const dateLayout = "2006-01-02"

// ExpandRequestedDates lists the working days in [start, end] as YYYY-MM-DD.
func ExpandRequestedDates(start, end time.Time, workDays []time.Weekday) []string {
	days := shift.WorkingDays(start, end, workDays)
	dates := make([]string, 0, len(days))
	for _, d := range days {
		dates = append(dates, d.Format(dateLayout))
	}
	return dates
}

// Resolution is the outcome of approving an application.
type Resolution struct {
	Approved []string
	Paid     []string
	Rejected []string
	Status   Status
}

// ResolveApproval partitions requested into approved, paid and rejected dates.
// A nil approved means every requested date; a nil paid means none.
// Output lists keep the order of requested.
func ResolveApproval(requested []string, approved, paid *[]string) (Resolution, error) {
	requestedSet := make(map[string]bool, len(requested))
	for _, d := range requested {
		requestedSet[d] = true
	}

	approvedSet := make(map[string]bool)
	if approved == nil {
		for _, d := range requested {
			approvedSet[d] = true
		}
	} else {
		for _, d := range *approved {
			if !requestedSet[d] {
				return Resolution{}, fmt.Errorf("%w: %s", ErrDateNotRequested, d)
			}
			approvedSet[d] = true
		}
	}

	paidSet := make(map[string]bool)
	if paid != nil {
		for _, d := range *paid {
			if !requestedSet[d] {
				return Resolution{}, fmt.Errorf("%w: %s", ErrDateNotRequested, d)
			}
			if approvedSet[d] {
				return Resolution{}, fmt.Errorf("%w: %s", ErrOverlappingDates, d)
			}
			paidSet[d] = true
		}
	}

	res := Resolution{
		Approved: []string{},
		Paid:     []string{},
		Rejected: []string{},
	}
	for _, d := range requested {
		switch {
		case approvedSet[d]:
			res.Approved = append(res.Approved, d)
		case paidSet[d]:
			res.Paid = append(res.Paid, d)
		default:
			res.Rejected = append(res.Rejected, d)
		}
	}

	res.Status = StatusApproved
	if len(res.Rejected) > 0 || len(res.Paid) > 0 {
		res.Status = StatusPartiallyApproved
	}
	return res, nil
}

// GrantedDates returns the approved and paid dates of a granted application.
func (a Application) GrantedDates() []string {
	if !a.Status.Granted() {
		return nil
	}
	dates := make([]string, 0, len(a.ApprovedDates)+len(a.PaidLeaveDates))
	dates = append(dates, a.ApprovedDates...)
	dates = append(dates, a.PaidLeaveDates...)
	return dates
}
