package entity

// Status constants for Record
const (
	StatusSubmitted = "SUBMITTED"
	StatusUpdated   = "UPDATED"
)

// Form names
const (
	FormInvoice     = "invoice"
	FormPayroll     = "payroll"
	FormAttendance  = "attendance"
	FormLeave       = "leave"
	FormAccount     = "account"
	FormTransaction = "transaction"
	FormJobPosting  = "job-posting"
)

// Reference data kinds
const (
	RefCustomers   = "customers"
	RefProjects    = "projects"
	RefAccounts    = "accounts"
	RefEmployees   = "employees"
	RefDepartments = "departments"
)

// Leave type constants
const (
	LeaveAnnual        = "annual"
	LeaveSick          = "sick"
	LeaveMaternity     = "maternity"
	LeavePaternity     = "paternity"
	LeaveCompassionate = "compassionate"
	LeaveUnpaid        = "unpaid"
)

// Attendance status constants
const (
	AttendancePresent = "present"
	AttendanceLate    = "late"
	AttendanceAbsent  = "absent"
	AttendanceHalfDay = "half-day"
)
