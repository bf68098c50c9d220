package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/dairycoop/internal/config"
	"github.com/mamadbah2/dairycoop/internal/domain/calendar"
	"github.com/mamadbah2/dairycoop/internal/domain/models"
)

type fakeReports struct {
	dates []time.Time
	err   error
}

func (f *fakeReports) PublishDailyReport(_ context.Context, date time.Time) (models.DailyReport, error) {
	f.dates = append(f.dates, date)
	return models.DailyReport{Date: date, MilkCollected: 40, MilkSold: 30}, f.err
}

type fakeLedger struct{ calls int }

func (f *fakeLedger) Reconcile(context.Context) (models.InventorySnapshot, error) {
	f.calls++
	return models.InventorySnapshot{CurrentStock: 10}, nil
}

type fakeNotifier struct {
	sent []models.OutboundMessageRequest
}

func (f *fakeNotifier) SendOutbound(_ context.Context, req models.OutboundMessageRequest) error {
	f.sent = append(f.sent, req)
	return nil
}

func testConfig(manager string) config.Config {
	return config.Config{
		Coop:      config.CoopConfig{Timezone: "Africa/Nairobi"},
		Reporting: config.ReportingConfig{CronSchedule: "0 20 * * *", ReconcileSchedule: "30 23 * * *"},
		WhatsApp:  config.WhatsAppConfig{ManagerID: manager},
	}
}

func TestSendDailyReport(t *testing.T) {
	reports := &fakeReports{}
	notifier := &fakeNotifier{}
	s := NewScheduler(testConfig("2547000"), reports, &fakeLedger{}, notifier, nil)
	// 22:30 UTC is the next day in Nairobi.
	s.now = func() time.Time { return time.Date(2025, time.June, 7, 22, 30, 0, 0, time.UTC) }

	require.NoError(t, s.SendDailyReport(context.Background()))

	require.Len(t, reports.dates, 1)
	assert.Equal(t, calendar.Date(2025, time.June, 8), reports.dates[0])
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "2547000", notifier.sent[0].To)
	assert.Contains(t, notifier.sent[0].Message, "2025-06-08")
}

func TestSendDailyReportWithoutManager(t *testing.T) {
	notifier := &fakeNotifier{}
	s := NewScheduler(testConfig(""), &fakeReports{}, &fakeLedger{}, notifier, nil)

	require.NoError(t, s.SendDailyReport(context.Background()))
	assert.Empty(t, notifier.sent)
}

func TestSendDailyReportPublishFailure(t *testing.T) {
	notifier := &fakeNotifier{}
	s := NewScheduler(testConfig("2547000"), &fakeReports{err: errors.New("boom")}, &fakeLedger{}, notifier, nil)

	assert.Error(t, s.SendDailyReport(context.Background()))
	assert.Empty(t, notifier.sent)
}

func TestRunReconcile(t *testing.T) {
	ledger := &fakeLedger{}
	s := NewScheduler(testConfig(""), &fakeReports{}, ledger, nil, nil)

	s.runReconcile()
	assert.Equal(t, 1, ledger.calls)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	cfg := testConfig("")
	cfg.Reporting.CronSchedule = "every evening"
	s := NewScheduler(cfg, &fakeReports{}, &fakeLedger{}, nil, nil)

	assert.Error(t, s.Start())
}

func TestStartAndStop(t *testing.T) {
	s := NewScheduler(testConfig(""), &fakeReports{}, &fakeLedger{}, nil, nil)

	require.NoError(t, s.Start())
	s.Stop()
}
