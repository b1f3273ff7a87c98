package domain

// StudentStatus represents the registration lifecycle of a student
type StudentStatus string

const (
	StudentPending  StudentStatus = "PENDING"
	StudentApproved StudentStatus = "APPROVED"
	StudentDenied   StudentStatus = "DENIED"
)

// PaymentStatus represents the verification lifecycle of a payment
type PaymentStatus string

const (
	PaymentUploaded PaymentStatus = "UPLOADED"
	PaymentVerified PaymentStatus = "VERIFIED"
	PaymentDenied   PaymentStatus = "DENIED"
)

// PaymentSource distinguishes how a payment record was created
type PaymentSource string

const (
	PaymentOnlineScreenshot PaymentSource = "ONLINE_SCREENSHOT"
	PaymentOfflineManual    PaymentSource = "OFFLINE_MANUAL"
)

// Meal represents a named meal service window
type Meal string

const (
	MealBreakfast Meal = "BREAKFAST"
	MealLunch     Meal = "LUNCH"
	MealDinner    Meal = "DINNER"
)

// ScanResult is the outcome of one access-control decision
type ScanResult string

const (
	ScanAllowed        ScanResult = "ALLOWED"
	ScanBlockedPayment ScanResult = "BLOCKED_NO_PAYMENT"
	ScanBlockedCut     ScanResult = "BLOCKED_CUT"
	ScanBlockedStatus  ScanResult = "BLOCKED_STATUS"
	ScanBlockedClosure ScanResult = "BLOCKED_CLOSURE"
)

// CutAppliedBy distinguishes who created a mess cut
type CutAppliedBy string

const (
	CutByStudent CutAppliedBy = "STUDENT"
	CutByAdmin   CutAppliedBy = "ADMIN_SYSTEM"
)

// ActorType identifies who performed an audited action
type ActorType string

const (
	ActorStudent ActorType = "STUDENT"
	ActorAdmin   ActorType = "ADMIN"
	ActorSystem  ActorType = "SYSTEM"
)

// Role represents an admin user role
type Role string

// RoleAdmin is the only role the system issues today
const RoleAdmin Role = "ADMIN"
