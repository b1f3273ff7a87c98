package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/models"
)

type closureFixture struct {
	svc      *ClosureService
	students *fakeStudentRepo
	closures *fakeClosureRepo
	audits   *fakeAuditRepo
	notifs   *fakeNotifRepo
}

func newClosureFixture() *closureFixture {
	f := &closureFixture{
		students: newFakeStudentRepo(),
		closures: newFakeClosureRepo(),
		audits:   newFakeAuditRepo(),
		notifs:   newFakeNotifRepo(),
	}
	notify := NewNotifyService(f.notifs, nil)
	f.svc = NewClosureService(f.closures, f.students, f.audits, notify)
	return f
}

func TestCreateClosure(t *testing.T) {
	f := newClosureFixture()
	ctx := context.Background()

	// Two approved students and one pending
	for i, status := range []string{"APPROVED", "APPROVED", "PENDING"} {
		require.NoError(t, f.students.Create(ctx, &models.Student{
			TgUserID: int64(100 + i), RollNo: string(rune('A' + i)), Status: status,
		}))
	}

	from := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	closure, err := f.svc.Create(ctx, &ClosureInput{
		FromDate: from,
		ToDate:   from.AddDate(0, 0, 2),
		Reason:   "semester break",
	}, 7)
	require.NoError(t, err)

	assert.Equal(t, "semester break", closure.Reason)
	assert.Equal(t, uint(7), closure.CreatedByAdminID)
	assert.Contains(t, f.audits.eventTypes(), "closure.created")

	// Broadcast reaches only approved students
	assert.Len(t, f.notifs.messagesFor("100"), 1)
	assert.Len(t, f.notifs.messagesFor("101"), 1)
	assert.Empty(t, f.notifs.messagesFor("102"))
	assert.Contains(t, f.notifs.messagesFor("100")[0], "semester break")
}

func TestCreateClosure_OverlapRejected(t *testing.T) {
	f := newClosureFixture()
	ctx := context.Background()

	from := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	_, err := f.svc.Create(ctx, &ClosureInput{FromDate: from, ToDate: from.AddDate(0, 0, 2), Reason: "a"}, 7)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, &ClosureInput{
		FromDate: from.AddDate(0, 0, 2),
		ToDate:   from.AddDate(0, 0, 4),
		Reason:   "b",
	}, 7)
	assert.ErrorIs(t, err, ErrClosureOverlap)

	// Adjacent but non-overlapping is fine
	_, err = f.svc.Create(ctx, &ClosureInput{
		FromDate: from.AddDate(0, 0, 3),
		ToDate:   from.AddDate(0, 0, 4),
		Reason:   "c",
	}, 7)
	assert.NoError(t, err)
}

func TestCreateClosure_InvalidRange(t *testing.T) {
	f := newClosureFixture()

	from := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	_, err := f.svc.Create(context.Background(), &ClosureInput{
		FromDate: from,
		ToDate:   from.AddDate(0, 0, -1),
		Reason:   "x",
	}, 7)
	assert.ErrorIs(t, err, ErrInvalidRange)
}
