package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Students & QR
// ============================================================

// Student represents the students table
type Student struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	TgUserID  int64          `gorm:"uniqueIndex;not null" json:"tg_user_id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	RollNo    string         `gorm:"uniqueIndex;size:20;not null" json:"roll_no"`
	RoomNo    string         `gorm:"size:20" json:"room_no"`
	Phone     string         `gorm:"size:15" json:"phone"`
	Status    string         `gorm:"size:10;default:'PENDING';index" json:"status"`
	QRVersion int            `gorm:"not null;default:1" json:"qr_version"`
	QRNonce   string         `gorm:"size:64;not null" json:"-"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Student) TableName() string {
	return "students"
}

// StudentSnapshot DTO shown to scanner operators
type StudentSnapshot struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	RollNo          string `json:"roll_no"`
	RoomNo          string `json:"room_no"`
	Status          string `json:"status"`
	PaymentOK       bool   `json:"payment_ok"`
	HasCutToday     bool   `json:"has_cut_today"`
	HasClosureToday bool   `json:"has_closure_today"`
}

// ============================================================
// Payments
// ============================================================

// Payment represents the payments table
type Payment struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	StudentID       uint       `gorm:"not null;index:idx_payment_student_cycle" json:"student_id"`
	CycleStart      time.Time  `gorm:"type:date;not null;index:idx_payment_student_cycle" json:"cycle_start"`
	CycleEnd        time.Time  `gorm:"type:date;not null" json:"cycle_end"`
	Amount          float64    `gorm:"type:decimal(10,2);not null" json:"amount"`
	ScreenshotURL   string     `gorm:"size:500" json:"screenshot_url,omitempty"`
	Status          string     `gorm:"size:10;default:'NONE';index" json:"status"`
	Source          string     `gorm:"size:20;default:'ONLINE_SCREENSHOT'" json:"source"`
	ReviewerAdminID *uint      `json:"reviewer_admin_id,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Student *Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}

// ============================================================
// Mess cuts & closures
// ============================================================

// MessCut represents the mess_cuts table
type MessCut struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID uint      `gorm:"not null;index:idx_cut_student_range" json:"student_id"`
	FromDate  time.Time `gorm:"type:date;not null;index:idx_cut_student_range" json:"from_date"`
	ToDate    time.Time `gorm:"type:date;not null;index" json:"to_date"`
	AppliedBy string    `gorm:"size:20;default:'STUDENT'" json:"applied_by"`
	CutoffOK  bool      `gorm:"default:true" json:"cutoff_ok"`
	AppliedAt time.Time `gorm:"autoCreateTime" json:"applied_at"`

	Student *Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (MessCut) TableName() string {
	return "mess_cuts"
}

// MessClosure represents the mess_closures table (global, not per student)
type MessClosure struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	FromDate         time.Time `gorm:"type:date;not null;index" json:"from_date"`
	ToDate           time.Time `gorm:"type:date;not null;index" json:"to_date"`
	Reason           string    `gorm:"type:text" json:"reason"`
	CreatedByAdminID uint      `gorm:"not null" json:"created_by_admin_id"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (MessClosure) TableName() string {
	return "mess_closures"
}

// ============================================================
// Scan events (append-only audit of access decisions)
// ============================================================

// ScanEvent represents the scan_events table. Rows are written exactly once
// per completed decision and never updated.
type ScanEvent struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	StudentID    uint      `gorm:"not null;uniqueIndex:idx_scan_dedupe;index:idx_scan_student_time" json:"student_id"`
	Meal         string    `gorm:"size:10;not null;uniqueIndex:idx_scan_dedupe" json:"meal"`
	ScannedAt    time.Time `gorm:"autoCreateTime;uniqueIndex:idx_scan_dedupe;index:idx_scan_student_time" json:"scanned_at"`
	StaffTokenID *uint     `gorm:"index" json:"staff_token_id,omitempty"`
	Result       string    `gorm:"size:30;not null" json:"result"`
	DeviceInfo   string    `gorm:"type:text" json:"device_info,omitempty"`

	Student *Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (ScanEvent) TableName() string {
	return "scan_events"
}

// ============================================================
// Staff tokens
// ============================================================

// StaffToken represents revocable scanner authentication tokens.
// Only the SHA-256 hash of the issued token is stored.
type StaffToken struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Label      string     `gorm:"size:100;not null" json:"label"`
	TokenHash  string     `gorm:"size:64;uniqueIndex;not null" json:"-"`
	IssuedAt   time.Time  `gorm:"autoCreateTime" json:"issued_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Active     bool       `gorm:"default:true;index" json:"active"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

func (StaffToken) TableName() string {
	return "staff_tokens"
}

// IsValid reports whether the token is active and unexpired
func (t *StaffToken) IsValid() bool {
	if !t.Active {
		return false
	}
	if t.ExpiresAt != nil && t.ExpiresAt.Before(time.Now()) {
		return false
	}
	return true
}

// ============================================================
// Audit log
// ============================================================

// AuditLog represents the append-only audit_logs table
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ActorType string    `gorm:"size:10;not null;index" json:"actor_type"`
	ActorID   string    `gorm:"size:50" json:"actor_id"`
	EventType string    `gorm:"size:100;not null;index" json:"event_type"`
	Payload   string    `gorm:"type:text" json:"payload"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// ============================================================
// Notification outbox
// ============================================================

// Notification statuses
const (
	NotifyPending = "PENDING"
	NotifySent    = "SENT"
	NotifyDead    = "DEAD"
)

// RecipientAdminGroup fans a notification out to all configured admin chats
const RecipientAdminGroup = "admin_group"

// Notification represents the notifications outbox table. Services enqueue
// rows; the notify worker drains them and retries failures until MaxRetries,
// after which the row is parked as DEAD.
type Notification struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Recipient   string     `gorm:"size:50;not null" json:"recipient"`
	Message     string     `gorm:"type:text;not null" json:"message"`
	Status      string     `gorm:"size:10;default:'PENDING';index" json:"status"`
	RetryCount  int        `gorm:"default:0" json:"retry_count"`
	MaxRetries  int        `gorm:"default:3" json:"max_retries"`
	LastError   string     `gorm:"type:text" json:"last_error,omitempty"`
	LastRetryAt *time.Time `json:"last_retry_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}

// CanRetry reports whether the worker should attempt this row again
func (n *Notification) CanRetry() bool {
	return n.Status == NotifyPending && n.RetryCount < n.MaxRetries
}

// ============================================================
// Settings (single row, pk=1)
// ============================================================

// Settings holds mutable system state; qr_secret_version is bumped on bulk
// rotation for observability only, per-student version+nonce is the actual
// security boundary.
type Settings struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	QRSecretVersion int       `gorm:"default:1" json:"qr_secret_version"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Settings) TableName() string {
	return "settings"
}

// ============================================================
// Admin users & sessions
// ============================================================

// AdminUser represents the admin_users table
type AdminUser struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'ADMIN'" json:"role"`
	TgUserID  *int64         `gorm:"uniqueIndex" json:"tg_user_id,omitempty"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}

// AdminUserResponse DTO
type AdminUserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *AdminUser) ToResponse() *AdminUserResponse {
	return &AdminUserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents the refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	AdminID   uint       `gorm:"index;not null" json:"admin_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`

	Admin AdminUser `gorm:"foreignKey:AdminID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Student{},
		&Payment{},
		&MessCut{},
		&MessClosure{},
		&ScanEvent{},
		&StaffToken{},
		&AuditLog{},
		&Notification{},
		&Settings{},
		&AdminUser{},
		&RefreshToken{},
	)
}
