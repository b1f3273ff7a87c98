package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/models"
)

func TestDailyReport(t *testing.T) {
	schedule := testSchedule(t)
	scans := newFakeScanRepo()
	cuts := newFakeCutRepo()
	payments := newFakePaymentRepo()
	students := newFakeStudentRepo()
	svc := NewReportService(scans, cuts, payments, students, schedule)
	ctx := context.Background()

	at := time.Date(2026, 3, 10, 13, 0, 0, 0, schedule.Location())
	today := schedule.Today(at)

	// Today's scans: two served, one blocked
	for _, e := range []*models.ScanEvent{
		{StudentID: 1, Meal: "LUNCH", ScannedAt: at, Result: "ALLOWED"},
		{StudentID: 2, Meal: "LUNCH", ScannedAt: at.Add(time.Minute), Result: "ALLOWED"},
		{StudentID: 3, Meal: "LUNCH", ScannedAt: at.Add(2 * time.Minute), Result: "BLOCKED_NO_PAYMENT"},
		// Yesterday's scan stays out of today's report
		{StudentID: 1, Meal: "DINNER", ScannedAt: at.AddDate(0, 0, -1), Result: "ALLOWED"},
	} {
		require.NoError(t, scans.Create(ctx, e))
	}

	require.NoError(t, cuts.Create(ctx, &models.MessCut{StudentID: 4, FromDate: today, ToDate: today}))
	require.NoError(t, payments.Create(ctx, &models.Payment{StudentID: 3, Status: "UPLOADED"}))
	require.NoError(t, students.Create(ctx, &models.Student{TgUserID: 1, RollNo: "R1", Status: "PENDING"}))
	require.NoError(t, students.Create(ctx, &models.Student{TgUserID: 2, RollNo: "R2", Status: "APPROVED"}))

	report, err := svc.Daily(ctx, at)
	require.NoError(t, err)

	assert.Equal(t, "2026-03-10", report.Date)
	assert.Equal(t, int64(3), report.TotalScans)
	assert.Equal(t, int64(2), report.ScansByResult["ALLOWED"])
	assert.Equal(t, int64(1), report.ScansByResult["BLOCKED_NO_PAYMENT"])
	assert.Equal(t, int64(1), report.StudentsOnCut)
	assert.Equal(t, int64(1), report.PendingPayments)
	assert.Equal(t, int64(1), report.PendingRegistrations)

	text := svc.FormatDaily(report)
	assert.Contains(t, text, "Mess report for 2026-03-10")
	assert.Contains(t, text, "Meals served: 2")
	assert.Contains(t, text, "Blocked (no payment): 1")
}

func TestPaymentSummary(t *testing.T) {
	schedule := testSchedule(t)
	payments := newFakePaymentRepo()
	students := newFakeStudentRepo()
	svc := NewReportService(newFakeScanRepo(), newFakeCutRepo(), payments, students, schedule)
	ctx := context.Background()

	at := time.Date(2026, 3, 10, 13, 0, 0, 0, schedule.Location())
	today := schedule.Today(at)

	// Student 1 paid, student 2 is awaiting review, student 3 never uploaded
	for i, roll := range []string{"R1", "R2", "R3"} {
		require.NoError(t, students.Create(ctx, &models.Student{
			TgUserID: int64(100 + i), RollNo: roll, Status: "APPROVED",
		}))
	}
	require.NoError(t, payments.Create(ctx, &models.Payment{
		StudentID: 1, Status: "VERIFIED", CycleStart: today.AddDate(0, 0, -5), CycleEnd: today.AddDate(0, 0, 25),
	}))
	require.NoError(t, payments.Create(ctx, &models.Payment{
		StudentID: 2, Status: "UPLOADED", CycleStart: today, CycleEnd: today.AddDate(0, 1, 0),
	}))
	require.NoError(t, payments.Create(ctx, &models.Payment{
		StudentID: 3, Status: "DENIED", CycleStart: today, CycleEnd: today.AddDate(0, 1, 0),
	}))

	summary, err := svc.Payments(ctx, at)
	require.NoError(t, err)

	assert.Equal(t, int64(1), summary.Verified)
	assert.Equal(t, int64(1), summary.Uploaded)
	assert.Equal(t, int64(1), summary.Denied)
	assert.Equal(t, int64(2), summary.NotUploaded, "students 2 and 3 have no verified cover today")
}

func TestListCuts(t *testing.T) {
	schedule := testSchedule(t)
	cuts := newFakeCutRepo()
	svc := NewReportService(newFakeScanRepo(), cuts, newFakePaymentRepo(), newFakeStudentRepo(), schedule)
	ctx := context.Background()
	day := func(d int) time.Time { return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, cuts.Create(ctx, &models.MessCut{StudentID: 1, FromDate: day(5), ToDate: day(8)}))
	require.NoError(t, cuts.Create(ctx, &models.MessCut{StudentID: 2, FromDate: day(20), ToDate: day(22)}))

	listed, total, err := svc.ListCuts(ctx, day(1), day(10), 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, listed, 1)
	assert.Equal(t, uint(1), listed[0].StudentID)
}

func TestDailyReport_EmptyDay(t *testing.T) {
	schedule := testSchedule(t)
	svc := NewReportService(newFakeScanRepo(), newFakeCutRepo(), newFakePaymentRepo(), newFakeStudentRepo(), schedule)

	report, err := svc.Daily(context.Background(), time.Date(2026, 3, 10, 13, 0, 0, 0, schedule.Location()))
	require.NoError(t, err)
	assert.Zero(t, report.TotalScans)
	assert.Zero(t, report.StudentsOnCut)
	assert.Contains(t, svc.FormatDaily(report), "Meals served: 0")
}
