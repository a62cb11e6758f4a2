package services

import (
	"context"
	"testing"
	"time"

	"github.com/medicare-pharmacy/medicare-backend/internal/errordata"
	"github.com/medicare-pharmacy/medicare-backend/internal/logger"
	"github.com/medicare-pharmacy/medicare-backend/internal/repos"
	"github.com/medicare-pharmacy/medicare-backend/internal/types"
)

type bookingFixture struct {
	otp          OtpService
	appointments AppointmentService
	notifier     *fakeNotifier
	otpRepo      repos.OtpRecordRepo
	doctor       *types.Doctor
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	gdb := newTestDB(t)
	log := logger.NewNop()
	notifier := newFakeNotifier()
	otpRepo := repos.NewOtpRecordRepo(gdb, log)
	doctorRepo := repos.NewDoctorRepo(gdb, log)
	appointmentRepo := repos.NewAppointmentRepo(gdb, log)

	doctors, err := doctorRepo.Create(context.Background(), nil, []*types.Doctor{{Name: "Dr. Mehta", Specialty: "General Physician", IsAvailable: true}})
	if err != nil {
		t.Fatalf("create doctor: %v", err)
	}
	return &bookingFixture{
		otp:          NewOtpService(gdb, log, otpRepo, notifier, OtpServiceConfig{}),
		appointments: NewAppointmentService(gdb, log, otpRepo, appointmentRepo, doctorRepo, notifier),
		notifier:     notifier,
		otpRepo:      otpRepo,
		doctor:       doctors[0],
	}
}

func (f *bookingFixture) verify(t *testing.T, phone string) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.otp.RequestOtp(ctx, phone); err != nil {
		t.Fatalf("RequestOtp: %v", err)
	}
	if _, err := f.otp.VerifyOtp(ctx, phone, f.notifier.codeFor(phone)); err != nil {
		t.Fatalf("VerifyOtp: %v", err)
	}
}

func TestAppointmentService_BookingConsumesVerification(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	f.verify(t, "9876543210")

	input := CreateAppointmentInput{
		PhoneNumber:  "9876543210",
		CustomerName: "Asha",
		DoctorID:     f.doctor.ID,
		ScheduledAt:  "2025-01-01T10:00:00",
	}
	appt, err := f.appointments.CreateAppointment(ctx, input)
	if err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}
	want := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	if !appt.ScheduledAt.Equal(want) || !appt.IsVerified || appt.CustomerName != "Asha" {
		t.Errorf("appointment = %+v", appt)
	}
	if appt.Doctor == nil || appt.Doctor.Name != "Dr. Mehta" {
		t.Errorf("doctor not attached: %+v", appt.Doctor)
	}

	recs, err := f.otpRepo.GetByPhoneNumbers(ctx, nil, []string{"9876543210"})
	if err != nil || len(recs) != 0 {
		t.Errorf("otp records after booking = %d, %v; want none", len(recs), err)
	}
	if len(f.notifier.confirmations) != 1 || f.notifier.confirmations[0].AppointmentID != appt.ID {
		t.Errorf("confirmations = %+v", f.notifier.confirmations)
	}

	_, err = f.appointments.CreateAppointment(ctx, input)
	if !errordata.Is(err, errordata.KindNotVerified) {
		t.Errorf("second booking = %v, want NotVerified", err)
	}
	list, _ := f.appointments.GetAppointmentsByPhone(ctx, "9876543210")
	if len(list) != 1 {
		t.Errorf("appointments = %d, want 1", len(list))
	}
}

func TestAppointmentService_RequiresVerification(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	if _, err := f.otp.RequestOtp(ctx, "9876543210"); err != nil {
		t.Fatalf("RequestOtp: %v", err)
	}
	_, err := f.appointments.CreateAppointment(ctx, CreateAppointmentInput{
		PhoneNumber: "9876543210", CustomerName: "Asha", DoctorID: f.doctor.ID, ScheduledAt: "2025-01-01T10:00:00",
	})
	if !errordata.Is(err, errordata.KindNotVerified) {
		t.Fatalf("CreateAppointment = %v, want NotVerified", err)
	}
	if err.Error() != "Phone number not verified. Please verify OTP first." {
		t.Errorf("message = %q", err.Error())
	}
}

func TestAppointmentService_UnknownDoctorKeepsVerification(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	f.verify(t, "9876543210")

	_, err := f.appointments.CreateAppointment(ctx, CreateAppointmentInput{
		PhoneNumber: "9876543210", CustomerName: "Asha", DoctorID: f.doctor.ID + 100, ScheduledAt: "2025-01-01T10:00:00",
	})
	if !errordata.Is(err, errordata.KindDoctorNotFound) {
		t.Fatalf("CreateAppointment = %v, want DoctorNotFound", err)
	}
	rec, err := f.otpRepo.LockVerifiedByPhone(ctx, nil, "9876543210")
	if err != nil || rec == nil {
		t.Errorf("verification should survive a failed booking: %v", err)
	}
}

func TestAppointmentService_InputValidation(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	_, err := f.appointments.CreateAppointment(ctx, CreateAppointmentInput{PhoneNumber: "9876543210", DoctorID: f.doctor.ID, ScheduledAt: "2025-01-01T10:00:00"})
	if !errordata.Is(err, errordata.KindInvalidInput) || err.Error() != "All fields are required" {
		t.Errorf("missing name = %v", err)
	}
	_, err = f.appointments.CreateAppointment(ctx, CreateAppointmentInput{PhoneNumber: "9876543210", CustomerName: "Asha", DoctorID: f.doctor.ID, ScheduledAt: "next tuesday"})
	if !errordata.Is(err, errordata.KindInvalidInput) || err.Error() != "Invalid date format" {
		t.Errorf("bad date = %v", err)
	}
}

func TestAppointmentService_ConfirmationFailureDoesNotFailBooking(t *testing.T) {
	f := newBookingFixture(t)
	f.notifier.failConfirm = true
	f.verify(t, "9876543210")

	appt, err := f.appointments.CreateAppointment(context.Background(), CreateAppointmentInput{
		PhoneNumber: "9876543210", CustomerName: "Asha", DoctorID: f.doctor.ID, ScheduledAt: "2025-01-01 10:00",
	})
	if err != nil || appt == nil {
		t.Fatalf("CreateAppointment = %v, %v; want success", appt, err)
	}
}

func TestAppointmentService_GetAndDelete(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	f.verify(t, "9876543210")
	appt, err := f.appointments.CreateAppointment(ctx, CreateAppointmentInput{
		PhoneNumber: "9876543210", CustomerName: "Asha", DoctorID: f.doctor.ID, ScheduledAt: "2025-01-01T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}

	got, err := f.appointments.GetAppointment(ctx, appt.ID)
	if err != nil || got.ID != appt.ID {
		t.Fatalf("GetAppointment = %v, %v", got, err)
	}
	if err := f.appointments.DeleteAppointment(ctx, appt.ID); err != nil {
		t.Fatalf("DeleteAppointment: %v", err)
	}
	if _, err := f.appointments.GetAppointment(ctx, appt.ID); !errordata.Is(err, errordata.KindNotFound) {
		t.Errorf("GetAppointment after delete = %v, want NotFound", err)
	}
	if err := f.appointments.DeleteAppointment(ctx, appt.ID); !errordata.Is(err, errordata.KindNotFound) {
		t.Errorf("second delete = %v, want NotFound", err)
	}
}

func TestParseScheduledAt(t *testing.T) {
	want := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	for _, s := range []string{"2025-01-01T10:00:00", "2025-01-01T10:00", "2025-01-01 10:00:00", "2025-01-01 10:00", "2025-01-01T15:30:00+05:30"} {
		got, err := ParseScheduledAt(s)
		if err != nil {
			t.Errorf("ParseScheduledAt(%q): %v", s, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseScheduledAt(%q) = %v, want %v", s, got, want)
		}
	}
	if _, err := ParseScheduledAt("01/01/2025"); err == nil {
		t.Error("expected an error for an unsupported layout")
	}
}

func TestAppointmentService_ExpiredVerificationIsRejected(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	f.verify(t, "9876543210")

	late := time.Now().UTC().Add(DefaultOtpTTL + time.Minute)
	f.appointments.(*appointmentService).now = func() time.Time { return late }

	input := CreateAppointmentInput{
		PhoneNumber:  "9876543210",
		CustomerName: "Asha",
		DoctorID:     f.doctor.ID,
		ScheduledAt:  "2025-01-01T10:00:00",
	}
	if _, err := f.appointments.CreateAppointment(ctx, input); !errordata.Is(err, errordata.KindNotVerified) {
		t.Fatalf("late booking = %v, want NotVerified", err)
	}

	// the purge agrees with the booking check
	n, err := f.otpRepo.DeleteExpired(ctx, nil, late)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 1 {
		t.Errorf("DeleteExpired removed %d records, want 1", n)
	}
}
