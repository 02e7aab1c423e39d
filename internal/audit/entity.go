package audit

// Entity tags the kind of record a route mutates. Routes declare their tag
// at registration time; a route without a tag gets no audit capture, so new
// routes must opt in explicitly instead of being matched by path inspection.
type Entity string

const (
	EntityUser         Entity = "users"
	EntityEmployee     Entity = "employees"
	EntityLeave        Entity = "leaves"
	EntityPayslip      Entity = "payslips"
	EntityAnnouncement Entity = "announcements"
)
