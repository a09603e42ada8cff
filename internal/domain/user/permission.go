package user

import "slices"

type Permission string

const (
	// Attendance
	PermissionAttendanceRecord  Permission = "attendance.record"
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceManage  Permission = "attendance.manage"

	// Leave
	PermissionLeaveApply   Permission = "leave.apply"
	PermissionLeaveViewOwn Permission = "leave.view_own"
	PermissionLeaveViewAll Permission = "leave.view_all"
	PermissionLeaveApprove Permission = "leave.approve"

	// Payroll
	PermissionPayrollView    Permission = "payroll.view"
	PermissionPayrollProcess Permission = "payroll.process"
)

var employeePermissions = []Permission{
	PermissionAttendanceRecord,
	PermissionAttendanceViewOwn,
	PermissionLeaveApply,
	PermissionLeaveViewOwn,
}

var managerPermissions = append(slices.Clone(employeePermissions),
	PermissionAttendanceManage,
	PermissionLeaveViewAll,
	PermissionLeaveApprove,
	PermissionPayrollView,
	PermissionPayrollProcess,
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner:    managerPermissions,
	RoleManager:  managerPermissions,
	RoleEmployee: employeePermissions,
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	return slices.Contains(RolePermissions[role], permission)
}
