package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medicare-pharmacy/medicare-backend/internal/db"
	"github.com/medicare-pharmacy/medicare-backend/internal/logger"
	"github.com/medicare-pharmacy/medicare-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.NewMemory(name, logger.NewNop())
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	sqlDB, _ := gdb.DB()
	t.Cleanup(func() { sqlDB.Close() })
	return gdb
}

type sentConfirmation struct {
	Phone         string
	DoctorName    string
	ScheduledAt   time.Time
	AppointmentID uuid.UUID
}

// fakeNotifier captures codes instead of sending them.
type fakeNotifier struct {
	mu            sync.Mutex
	otps          map[string]string
	confirmations []sentConfirmation
	failOtp       bool
	failConfirm   bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{otps: map[string]string{}}
}

func (f *fakeNotifier) SendOtp(ctx context.Context, phone, code string) DeliveryResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOtp {
		return failed("provider unavailable")
	}
	f.otps[phone] = code
	id := "SM" + code
	return DeliveryResult{Success: true, ProviderMessageID: &id}
}

func (f *fakeNotifier) SendAppointmentConfirmation(ctx context.Context, phone, doctorName string, scheduledAt time.Time, appointmentID uuid.UUID) DeliveryResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmations = append(f.confirmations, sentConfirmation{phone, doctorName, scheduledAt, appointmentID})
	if f.failConfirm {
		return failed("provider unavailable")
	}
	id := "SMconfirm"
	return DeliveryResult{Success: true, ProviderMessageID: &id}
}

func (f *fakeNotifier) SendNotification(ctx context.Context, phone, text string) DeliveryResult {
	id := "SMnote"
	return DeliveryResult{Success: true, ProviderMessageID: &id}
}

func (f *fakeNotifier) codeFor(phone string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.otps[phone]
}

type fakeTextService struct {
	mu    sync.Mutex
	sent  []string
	to    []string
	err   error
	delay time.Duration
}

func (f *fakeTextService) SendText(ctx context.Context, to, body string) (string, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, body)
	f.to = append(f.to, to)
	return fmt.Sprintf("SM%03d", len(f.sent)), nil
}

type fakeBroadcaster struct {
	mu    sync.Mutex
	sales []types.SaleView
	err   error
}

func (f *fakeBroadcaster) BroadcastSale(ctx context.Context, sale types.SaleView) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sales = append(f.sales, sale)
	return f.err
}

type sentEmail struct {
	To, Subject, Plain, HTML string
}

type fakeEmail struct {
	sent []sentEmail
}

func (f *fakeEmail) SendEmail(ctx context.Context, to, subject, plain, html string) error {
	f.sent = append(f.sent, sentEmail{to, subject, plain, html})
	return nil
}

type fakeBucket struct {
	files map[string][]byte
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{files: map[string][]byte{}}
}

func (f *fakeBucket) UploadFile(ctx context.Context, key string, r io.Reader, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.files[key] = data
	return nil
}

func (f *fakeBucket) DeleteFile(ctx context.Context, key string) error {
	delete(f.files, key)
	return nil
}

func (f *fakeBucket) GetPublicURL(key string) string {
	return "https://storage.example.test/" + key
}

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
