package services

import (
  "context"
  "fmt"
  "time"

  "gorm.io/gorm"

  "github.com/medicare-pharmacy/medicare-backend/internal/errordata"
  "github.com/medicare-pharmacy/medicare-backend/internal/logger"
  "github.com/medicare-pharmacy/medicare-backend/internal/normalization"
  "github.com/medicare-pharmacy/medicare-backend/internal/repos"
  "github.com/medicare-pharmacy/medicare-backend/internal/requestdata"
  "github.com/medicare-pharmacy/medicare-backend/internal/types"
)

type CustomerLoginResult struct {
  Token           string
  Customer        *types.Customer
  IsNewCustomer   bool
}

// CustomerService is the phone-number login flow for customers.
type CustomerService interface {
  SendLoginOtp(ctx context.Context, phoneNumber string) (*OtpRequestResult, error)
  VerifyLogin(ctx context.Context, phoneNumber, code, name string) (*CustomerLoginResult, error)
  Logout(ctx context.Context) error
  MyAppointments(ctx context.Context, requestedPhone string) ([]*types.Appointment, error)

  upsertCustomerLogic(ctx context.Context, tx *gorm.DB, phoneNumber, name string) (*types.Customer, bool, error)
}

type customerService struct {
  db                *gorm.DB
  log               *logger.Logger
  customerRepo      repos.CustomerRepo
  appointmentRepo   repos.AppointmentRepo
  otpService        OtpService
  authService       AuthService
}

func NewCustomerService(
  db                *gorm.DB,
  log               *logger.Logger,
  customerRepo      repos.CustomerRepo,
  appointmentRepo   repos.AppointmentRepo,
  otpService        OtpService,
  authService       AuthService,
) CustomerService {
  return &customerService{
    db:               db,
    log:              log.With("service", "CustomerService"),
    customerRepo:     customerRepo,
    appointmentRepo:  appointmentRepo,
    otpService:       otpService,
    authService:      authService,
  }
}

func (cs *customerService) SendLoginOtp(ctx context.Context, phoneNumber string) (*OtpRequestResult, error) {
  return cs.otpService.RequestOtp(ctx, phoneNumber)
}

func (cs *customerService) VerifyLogin(ctx context.Context, phoneNumber, code, name string) (*CustomerLoginResult, error) {
  cs.log.Info("Starting VerifyLogin now...")
  phone := normalization.ParseInputString(phoneNumber)
  otp := normalization.ParseInputString(code)
  if phone == "" || otp == "" {
    return nil, errordata.New(errordata.KindInvalidInput, "Phone number and OTP are required")
  }

  result := &CustomerLoginResult{}
  var expired bool
  err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    //1) Consume the code; rolled back with the rest if the login fails
    isExpired, err := cs.otpService.redeemLogic(ctx, tx, phone, otp)
    if err != nil {
      return err
    }
    if isExpired {
      expired = true
      return nil
    }

    //2) Customer & token
    customer, created, err := cs.upsertCustomerLogic(ctx, tx, phone, normalization.ParseInputString(name))
    if err != nil {
      return err
    }
    tok, err := cs.authService.IssueCustomerToken(ctx, tx, customer)
    if err != nil {
      return err
    }
    result.Token = tok
    result.Customer = customer
    result.IsNewCustomer = created
    return nil
  })
  if err != nil {
    cs.log.Warn("Failed to complete customer login", "phoneNumber", phone, "error", err)
    return nil, err
  }
  if expired {
    return nil, errordata.New(errordata.KindOtpExpired, "OTP has expired")
  }
  cs.log.Info("Customer logged in", "customerID", result.Customer.ID, "isNew", result.IsNewCustomer)
  return result, nil
}

func (cs *customerService) upsertCustomerLogic(ctx context.Context, tx *gorm.DB, phoneNumber, name string) (*types.Customer, bool, error) {
  existing, err := cs.customerRepo.GetByPhoneNumber(ctx, tx, phoneNumber)
  if err != nil {
    return nil, false, fmt.Errorf("failed to look up customer: %w", err)
  }
  if existing != nil {
    if name != "" && name != existing.Name {
      if err := cs.customerRepo.UpdateName(ctx, tx, existing.ID, name); err != nil {
        return nil, false, fmt.Errorf("failed to update customer name: %w", err)
      }
      existing.Name = name
    }
    return existing, false, nil
  }
  if name == "" {
    name = "Customer " + phoneNumber
  }
  customer := &types.Customer{PhoneNumber: phoneNumber, Name: name, CreatedAt: time.Now().UTC()}
  if _, err := cs.customerRepo.Create(ctx, tx, customer); err != nil {
    return nil, false, fmt.Errorf("failed to create customer: %w", err)
  }
  return customer, true, nil
}

func (cs *customerService) Logout(ctx context.Context) error {
  return cs.authService.Logout(ctx)
}

// MyAppointments lists appointments for the phone bound to the caller's token. A
// requestedPhone that differs from it is rejected.
func (cs *customerService) MyAppointments(ctx context.Context, requestedPhone string) ([]*types.Appointment, error) {
  rd := requestdata.GetRequestData(ctx)
  if !rd.IsCustomer() {
    return nil, errordata.New(errordata.KindUnauthorized, "Customer authentication required")
  }
  requested := normalization.ParseInputString(requestedPhone)
  if requested != "" && requested != rd.PhoneNumber {
    cs.log.Warn("Customer asked for another phone's appointments", "customerID", rd.CustomerID)
    return nil, errordata.New(errordata.KindForbidden, "You can only view your own appointments")
  }
  return cs.appointmentRepo.GetByPhoneNumber(ctx, nil, rd.PhoneNumber)
}
