package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role       Role
		permission Permission
		want       bool
	}{
		{RoleEmployee, PermissionAttendanceRecord, true},
		{RoleEmployee, PermissionLeaveApply, true},
		{RoleEmployee, PermissionLeaveApprove, false},
		{RoleEmployee, PermissionPayrollProcess, false},
		{RoleManager, PermissionLeaveApprove, true},
		{RoleManager, PermissionAttendanceRecord, true},
		{RoleOwner, PermissionPayrollProcess, true},
		{Role("pending"), PermissionLeaveApply, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.permission), func(t *testing.T) {
			assert.Equal(t, tt.want, HasPermission(tt.role, tt.permission))
		})
	}
}

func TestPrincipal_IsManager(t *testing.T) {
	assert.True(t, Principal{Role: RoleOwner}.IsManager())
	assert.True(t, Principal{Role: RoleManager}.IsManager())
	assert.False(t, Principal{Role: RoleEmployee}.IsManager())
	assert.True(t, Principal{Role: RoleManager}.Can(PermissionPayrollView))
}
