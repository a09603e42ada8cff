package cron

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/leave"
)

// LeaveJobs contains leave-related cron jobs
type LeaveJobs struct {
	leaveService leave.LeaveService
	interval     time.Duration
}

func NewLeaveJobs(leaveService leave.LeaveService, interval time.Duration) *LeaveJobs {
	if interval <= 0 {
		interval = time.Hour
	}
	return &LeaveJobs{
		leaveService: leaveService,
		interval:     interval,
	}
}

func (j *LeaveJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("expire_stale_leave_applications", j.interval, j.ExpireStaleApplications)
}

// ExpireStaleApplications moves pending applications past their expiry to
// expired.
func (j *LeaveJobs) ExpireStaleApplications(ctx context.Context) error {
	_, err := j.leaveService.ExpireStale(ctx)
	return err
}
