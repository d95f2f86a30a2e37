package canonical

// RoleType identifies the role a person holds in the education system.
type RoleType string

// Role types.
const (
	RoleStudent       RoleType = "student"
	RoleGuardian      RoleType = "guardian"
	RoleStaff         RoleType = "staff"
	RoleTeacher       RoleType = "teacher"
	RoleAdministrator RoleType = "administrator"
)

// RelationshipType identifies a relationship between two persons.
type RelationshipType string

// Relationship types.
const (
	RelationParent           RelationshipType = "parent"
	RelationGuardian         RelationshipType = "guardian"
	RelationFather           RelationshipType = "father"
	RelationMother           RelationshipType = "mother"
	RelationStepparent       RelationshipType = "stepparent"
	RelationGrandparent      RelationshipType = "grandparent"
	RelationSibling          RelationshipType = "sibling"
	RelationOtherFamily      RelationshipType = "other_family"
	RelationEmergencyContact RelationshipType = "emergency_contact"
)

// CustodyType identifies a custody arrangement.
type CustodyType string

// Custody arrangements.
const (
	CustodyFull      CustodyType = "full"
	CustodyPartial   CustodyType = "partial"
	CustodyNone      CustodyType = "none"
	CustodyJoint     CustodyType = "joint"
	CustodyPrimary   CustodyType = "primary"
	CustodySecondary CustodyType = "secondary"
)

// EnrollmentStatus identifies the state of a student enrollment.
type EnrollmentStatus string

// Enrollment statuses.
const (
	EnrollmentActive      EnrollmentStatus = "active"
	EnrollmentInactive    EnrollmentStatus = "inactive"
	EnrollmentWithdrawn   EnrollmentStatus = "withdrawn"
	EnrollmentGraduated   EnrollmentStatus = "graduated"
	EnrollmentTransferred EnrollmentStatus = "transferred"
	EnrollmentPending     EnrollmentStatus = "pending"
)

// AttendanceStatus is a canonical attendance outcome for a school day or period.
type AttendanceStatus string

// Attendance statuses.
const (
	AttendancePresent         AttendanceStatus = "present"
	AttendanceAbsent          AttendanceStatus = "absent"
	AttendanceTardy           AttendanceStatus = "tardy"
	AttendanceExcusedAbsent   AttendanceStatus = "excused_absent"
	AttendanceUnexcusedAbsent AttendanceStatus = "unexcused_absent"
	AttendanceEarlyDeparture  AttendanceStatus = "early_departure"
	AttendanceRemote          AttendanceStatus = "remote"
)

// GradeScale identifies how a raw grade value is expressed.
type GradeScale string

// Grade scales.
const (
	ScaleLetter         GradeScale = "letter"
	ScaleNumeric        GradeScale = "numeric"
	ScalePercentage     GradeScale = "percentage"
	ScalePassFail       GradeScale = "pass_fail"
	ScaleStandardsBased GradeScale = "standards_based"
)
