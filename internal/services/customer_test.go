package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/medicare-pharmacy/medicare-backend/internal/errordata"
	"github.com/medicare-pharmacy/medicare-backend/internal/logger"
	"github.com/medicare-pharmacy/medicare-backend/internal/repos"
	"github.com/medicare-pharmacy/medicare-backend/internal/requestdata"
	"github.com/medicare-pharmacy/medicare-backend/internal/types"
)

type customerFixture struct {
	customers       CustomerService
	newService      func(customerRepo repos.CustomerRepo) CustomerService
	customerRepo    repos.CustomerRepo
	auth            AuthService
	notifier        *fakeNotifier
	appointmentRepo repos.AppointmentRepo
	doctorID        uint
}

func newCustomerFixture(t *testing.T) *customerFixture {
	t.Helper()
	gdb := newTestDB(t)
	log := logger.NewNop()
	notifier := newFakeNotifier()
	otpRepo := repos.NewOtpRecordRepo(gdb, log)
	appointmentRepo := repos.NewAppointmentRepo(gdb, log)
	doctors, err := repos.NewDoctorRepo(gdb, log).Create(context.Background(), nil, []*types.Doctor{{Name: "Dr. Iyer", IsAvailable: true}})
	if err != nil {
		t.Fatalf("create doctor: %v", err)
	}
	auth := NewAuthService(gdb, log, repos.NewAdminUserRepo(gdb, log), repos.NewUserTokenRepo(gdb, log), testJWTSecret, time.Hour)
	otp := NewOtpService(gdb, log, otpRepo, notifier, OtpServiceConfig{})
	customerRepo := repos.NewCustomerRepo(gdb, log)
	newService := func(cr repos.CustomerRepo) CustomerService {
		return NewCustomerService(gdb, log, cr, appointmentRepo, otp, auth)
	}
	return &customerFixture{
		customers:       newService(customerRepo),
		newService:      newService,
		customerRepo:    customerRepo,
		auth:            auth,
		notifier:        notifier,
		appointmentRepo: appointmentRepo,
		doctorID:        doctors[0].ID,
	}
}

func (f *customerFixture) login(t *testing.T, phone, name string) *CustomerLoginResult {
	t.Helper()
	ctx := context.Background()
	if _, err := f.customers.SendLoginOtp(ctx, phone); err != nil {
		t.Fatalf("SendLoginOtp: %v", err)
	}
	res, err := f.customers.VerifyLogin(ctx, phone, f.notifier.codeFor(phone), name)
	if err != nil {
		t.Fatalf("VerifyLogin: %v", err)
	}
	return res
}

func TestCustomerService_FirstLoginCreatesCustomer(t *testing.T) {
	f := newCustomerFixture(t)

	first := f.login(t, "9876543210", "")
	if !first.IsNewCustomer || first.Customer.Name != "Customer 9876543210" || first.Token == "" {
		t.Errorf("first login = %+v", first)
	}

	second := f.login(t, "9876543210", "Asha")
	if second.IsNewCustomer {
		t.Error("second login should not create a customer")
	}
	if second.Customer.ID != first.Customer.ID || second.Customer.Name != "Asha" {
		t.Errorf("second login customer = %+v", second.Customer)
	}
	if second.Token == first.Token {
		t.Error("each login should issue a distinct token")
	}
}

func TestCustomerService_CodeIsSingleUse(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()
	if _, err := f.customers.SendLoginOtp(ctx, "9876543210"); err != nil {
		t.Fatalf("SendLoginOtp: %v", err)
	}
	code := f.notifier.codeFor("9876543210")
	if _, err := f.customers.VerifyLogin(ctx, "9876543210", code, ""); err != nil {
		t.Fatalf("VerifyLogin: %v", err)
	}
	if _, err := f.customers.VerifyLogin(ctx, "9876543210", code, ""); !errordata.Is(err, errordata.KindInvalidOtp) {
		t.Errorf("reused code = %v, want InvalidOtp", err)
	}
}

func TestCustomerService_MyAppointmentsScopedToToken(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()
	for _, a := range []*types.Appointment{
		{DoctorID: f.doctorID, CustomerName: "Asha", PhoneNumber: "9876543210", ScheduledAt: now, IsVerified: true, CreatedAt: now},
		{DoctorID: f.doctorID, CustomerName: "Ravi", PhoneNumber: "9123456780", ScheduledAt: now, IsVerified: true, CreatedAt: now},
	} {
		if _, err := f.appointmentRepo.Create(ctx, nil, a); err != nil {
			t.Fatalf("create appointment: %v", err)
		}
	}

	res := f.login(t, "9876543210", "Asha")
	authed, err := f.auth.SetContextFromToken(ctx, res.Token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	if rd := requestdata.GetRequestData(authed); !rd.IsCustomer() || rd.PhoneNumber != "9876543210" {
		t.Fatalf("request data = %+v", rd)
	}

	mine, err := f.customers.MyAppointments(authed, "")
	if err != nil || len(mine) != 1 || mine[0].CustomerName != "Asha" {
		t.Errorf("MyAppointments = %v, %v", mine, err)
	}
	if _, err := f.customers.MyAppointments(authed, "9123456780"); !errordata.Is(err, errordata.KindForbidden) {
		t.Errorf("other phone = %v, want Forbidden", err)
	}
	if _, err := f.customers.MyAppointments(ctx, ""); !errordata.Is(err, errordata.KindUnauthorized) {
		t.Errorf("anonymous = %v, want Unauthorized", err)
	}

	if err := f.customers.Logout(authed); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := f.auth.SetContextFromToken(ctx, res.Token); !errordata.Is(err, errordata.KindUnauthorized) {
		t.Errorf("token after logout = %v, want Unauthorized", err)
	}
}

type failingCustomerRepo struct {
	repos.CustomerRepo
}

func (failingCustomerRepo) Create(ctx context.Context, tx *gorm.DB, customer *types.Customer) (*types.Customer, error) {
	return nil, errors.New("insert failed")
}

func TestCustomerService_FailedLoginKeepsCode(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()
	phone := "9876543210"

	if _, err := f.customers.SendLoginOtp(ctx, phone); err != nil {
		t.Fatalf("SendLoginOtp: %v", err)
	}
	code := f.notifier.codeFor(phone)

	broken := f.newService(failingCustomerRepo{CustomerRepo: f.customerRepo})
	if _, err := broken.VerifyLogin(ctx, phone, code, ""); err == nil {
		t.Fatal("VerifyLogin should fail when the customer cannot be created")
	}

	res, err := f.customers.VerifyLogin(ctx, phone, code, "")
	if err != nil {
		t.Fatalf("retry with the same code: %v", err)
	}
	if !res.IsNewCustomer || res.Token == "" {
		t.Errorf("retry result = %+v", res)
	}
}
