package services

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/models"
	"github.com/Afsalkalladi/mess-management/internal/pkg/mealtime"
)

// In-memory repository fakes used across the service tests.

type fakeStudentRepo struct {
	mu       sync.Mutex
	students map[uint]*models.Student
	nextID   uint

	// updateQRHook intercepts UpdateQR to simulate races
	updateQRHook func(id uint, expectedVersion int) (int64, error, bool)
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: make(map[uint]*models.Student), nextID: 1}
}

func (r *fakeStudentRepo) Create(_ context.Context, s *models.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = r.nextID
	r.nextID++
	cp := *s
	r.students[s.ID] = &cp
	return nil
}

func (r *fakeStudentRepo) GetByID(_ context.Context, id uint) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeStudentRepo) GetByTgUserID(_ context.Context, tgUserID int64) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.students {
		if s.TgUserID == tgUserID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeStudentRepo) GetByRollNo(_ context.Context, rollNo string) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.students {
		if s.RollNo == rollNo {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeStudentRepo) Update(_ context.Context, s *models.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.students[s.ID] = &cp
	return nil
}

func (r *fakeStudentRepo) UpdateStatus(_ context.Context, id uint, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Status = status
	return nil
}

func (r *fakeStudentRepo) UpdateQR(_ context.Context, id uint, expectedVersion, newVersion int, newNonce string) (int64, error) {
	if r.updateQRHook != nil {
		if rows, err, handled := r.updateQRHook(id, expectedVersion); handled {
			return rows, err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok || s.QRVersion != expectedVersion {
		return 0, nil
	}
	s.QRVersion = newVersion
	s.QRNonce = newNonce
	return 1, nil
}

func (r *fakeStudentRepo) List(_ context.Context, status string, limit, offset int) ([]models.Student, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Student
	for _, s := range r.students {
		if status == "" || s.Status == status {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeStudentRepo) ListApprovedIDs(_ context.Context) ([]uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uint
	for id := uint(1); id < r.nextID; id++ {
		if s, ok := r.students[id]; ok && s.Status == "APPROVED" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *fakeStudentRepo) ListApproved(_ context.Context) ([]models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Student
	for id := uint(1); id < r.nextID; id++ {
		if s, ok := r.students[id]; ok && s.Status == "APPROVED" {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[uint]*models.Payment
	nextID   uint
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uint]*models.Payment), nextID: 1}
}

func (r *fakePaymentRepo) Create(_ context.Context, p *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	r.nextID++
	cp := *p
	r.payments[p.ID] = &cp
	return nil
}

func (r *fakePaymentRepo) GetByID(_ context.Context, id uint) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePaymentRepo) Update(_ context.Context, p *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.payments[p.ID] = &cp
	return nil
}

func (r *fakePaymentRepo) HasVerifiedPayment(_ context.Context, studentID uint, day time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.StudentID == studentID && p.Status == "VERIFIED" &&
			mealtime.DateInRange(day, p.CycleStart, p.CycleEnd) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePaymentRepo) HasCycleOverlap(_ context.Context, studentID uint, cycleStart, cycleEnd time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.StudentID != studentID {
			continue
		}
		if p.Status != "UPLOADED" && p.Status != "VERIFIED" {
			continue
		}
		if mealtime.RangesOverlap(p.CycleStart, p.CycleEnd, cycleStart, cycleEnd) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePaymentRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, p := range r.payments {
		counts[p.Status]++
	}
	return counts, nil
}

func (r *fakePaymentRepo) ListByStudent(_ context.Context, studentID uint, limit, offset int) ([]models.Payment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Payment
	for _, p := range r.payments {
		if p.StudentID == studentID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakePaymentRepo) ListByStatus(_ context.Context, status string, limit, offset int) ([]models.Payment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Payment
	for _, p := range r.payments {
		if p.Status == status {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakePaymentRepo) ListExpiring(_ context.Context, day time.Time) ([]models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Payment
	for _, p := range r.payments {
		if p.Status == "VERIFIED" && mealtime.DateOf(p.CycleEnd).Equal(mealtime.DateOf(day)) {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeCutRepo struct {
	mu   sync.Mutex
	cuts []*models.MessCut
}

func newFakeCutRepo() *fakeCutRepo { return &fakeCutRepo{} }

func (r *fakeCutRepo) Create(_ context.Context, c *models.MessCut) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = uint(len(r.cuts) + 1)
	cp := *c
	r.cuts = append(r.cuts, &cp)
	return nil
}

func (r *fakeCutRepo) HasActiveCut(_ context.Context, studentID uint, day time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cuts {
		if c.StudentID == studentID && mealtime.DateInRange(day, c.FromDate, c.ToDate) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCutRepo) HasOverlap(_ context.Context, studentID uint, fromDate, toDate time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cuts {
		if c.StudentID == studentID && mealtime.RangesOverlap(c.FromDate, c.ToDate, fromDate, toDate) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCutRepo) ListByStudent(_ context.Context, studentID uint, limit, offset int) ([]models.MessCut, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.MessCut
	for _, c := range r.cuts {
		if c.StudentID == studentID {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeCutRepo) ListInRange(_ context.Context, fromDate, toDate time.Time, limit, offset int) ([]models.MessCut, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.MessCut
	for _, c := range r.cuts {
		if mealtime.RangesOverlap(c.FromDate, c.ToDate, fromDate, toDate) {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeCutRepo) CountCoveringDay(_ context.Context, day time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[uint]bool)
	for _, c := range r.cuts {
		if mealtime.DateInRange(day, c.FromDate, c.ToDate) {
			seen[c.StudentID] = true
		}
	}
	return int64(len(seen)), nil
}

type fakeClosureRepo struct {
	mu       sync.Mutex
	closures []*models.MessClosure
}

func newFakeClosureRepo() *fakeClosureRepo { return &fakeClosureRepo{} }

func (r *fakeClosureRepo) Create(_ context.Context, c *models.MessClosure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = uint(len(r.closures) + 1)
	cp := *c
	r.closures = append(r.closures, &cp)
	return nil
}

func (r *fakeClosureRepo) HasActiveClosure(_ context.Context, day time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.closures {
		if mealtime.DateInRange(day, c.FromDate, c.ToDate) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeClosureRepo) HasOverlap(_ context.Context, fromDate, toDate time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.closures {
		if mealtime.RangesOverlap(c.FromDate, c.ToDate, fromDate, toDate) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeClosureRepo) List(_ context.Context, limit, offset int) ([]models.MessClosure, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.MessClosure
	for _, c := range r.closures {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

type fakeScanRepo struct {
	mu     sync.Mutex
	events []*models.ScanEvent

	createErr error
}

func newFakeScanRepo() *fakeScanRepo { return &fakeScanRepo{} }

func (r *fakeScanRepo) Create(_ context.Context, e *models.ScanEvent) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = uint(len(r.events) + 1)
	cp := *e
	r.events = append(r.events, &cp)
	return nil
}

func (r *fakeScanRepo) ListByStudent(_ context.Context, studentID uint, limit, offset int) ([]models.ScanEvent, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ScanEvent
	for _, e := range r.events {
		if e.StudentID == studentID {
			out = append(out, *e)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeScanRepo) List(_ context.Context, from, to time.Time, result string, limit, offset int) ([]models.ScanEvent, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ScanEvent
	for _, e := range r.events {
		if e.ScannedAt.Before(from) || !e.ScannedAt.Before(to) {
			continue
		}
		if result != "" && e.Result != result {
			continue
		}
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (r *fakeScanRepo) CountByResult(_ context.Context, from, to time.Time) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, e := range r.events {
		if !e.ScannedAt.Before(from) && e.ScannedAt.Before(to) {
			counts[e.Result]++
		}
	}
	return counts, nil
}

func (r *fakeScanRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*models.ScanEvent
	var removed int64
	for _, e := range r.events {
		if e.ScannedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	r.events = kept
	return removed, nil
}

type fakeStaffRepo struct {
	mu     sync.Mutex
	tokens map[uint]*models.StaffToken
	nextID uint
}

func newFakeStaffRepo() *fakeStaffRepo {
	return &fakeStaffRepo{tokens: make(map[uint]*models.StaffToken), nextID: 1}
}

func (r *fakeStaffRepo) Create(_ context.Context, t *models.StaffToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.nextID
	r.nextID++
	cp := *t
	r.tokens[t.ID] = &cp
	return nil
}

func (r *fakeStaffRepo) GetByHash(_ context.Context, hash string) (*models.StaffToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.TokenHash == hash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeStaffRepo) GetByID(_ context.Context, id uint) (*models.StaffToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeStaffRepo) Revoke(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Active = false
	return nil
}

func (r *fakeStaffRepo) TouchLastUsed(_ context.Context, id uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[id]; ok {
		t.LastUsedAt = &at
	}
	return nil
}

func (r *fakeStaffRepo) List(_ context.Context) ([]models.StaffToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.StaffToken
	for id := uint(1); id < r.nextID; id++ {
		if t, ok := r.tokens[id]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*models.AuditLog
}

func newFakeAuditRepo() *fakeAuditRepo { return &fakeAuditRepo{} }

func (r *fakeAuditRepo) Create(_ context.Context, e *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = uint(len(r.entries) + 1)
	cp := *e
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, eventType string, limit, offset int) ([]models.AuditLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.AuditLog
	for _, e := range r.entries {
		if eventType == "" || e.EventType == eventType {
			out = append(out, *e)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeAuditRepo) eventTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		out = append(out, e.EventType)
	}
	return out
}

type fakeNotifRepo struct {
	mu     sync.Mutex
	rows   map[uint]*models.Notification
	nextID uint
}

func newFakeNotifRepo() *fakeNotifRepo {
	return &fakeNotifRepo{rows: make(map[uint]*models.Notification), nextID: 1}
}

func (r *fakeNotifRepo) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = r.nextID
	r.nextID++
	if n.Status == "" {
		n.Status = models.NotifyPending
	}
	cp := *n
	r.rows[n.ID] = &cp
	return nil
}

func (r *fakeNotifRepo) ClaimPending(_ context.Context, limit int) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for id := uint(1); id < r.nextID && len(out) < limit; id++ {
		if n, ok := r.rows[id]; ok && n.Status == models.NotifyPending {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *fakeNotifRepo) MarkSent(_ context.Context, id uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	n.Status = models.NotifySent
	n.SentAt = &at
	return nil
}

func (r *fakeNotifRepo) MarkFailed(_ context.Context, id uint, errMsg string, dead bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	n.RetryCount++
	n.LastError = errMsg
	if dead {
		n.Status = models.NotifyDead
	}
	return nil
}

func (r *fakeNotifRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.rows {
		if n.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotifRepo) messagesFor(recipient string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for id := uint(1); id < r.nextID; id++ {
		if n, ok := r.rows[id]; ok && n.Recipient == recipient {
			out = append(out, n.Message)
		}
	}
	return out
}

type fakeSettingsRepo struct {
	mu      sync.Mutex
	version int

	bumpErr error
}

func newFakeSettingsRepo() *fakeSettingsRepo { return &fakeSettingsRepo{version: 1} }

func (r *fakeSettingsRepo) Get(_ context.Context) (*models.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &models.Settings{ID: 1, QRSecretVersion: r.version}, nil
}

func (r *fakeSettingsRepo) BumpQRSecretVersion(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bumpErr != nil {
		return 0, r.bumpErr
	}
	r.version++
	return r.version, nil
}
