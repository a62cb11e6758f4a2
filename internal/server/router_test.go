package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medicare-pharmacy/medicare-backend/internal/db"
	"github.com/medicare-pharmacy/medicare-backend/internal/handlers"
	"github.com/medicare-pharmacy/medicare-backend/internal/logger"
	"github.com/medicare-pharmacy/medicare-backend/internal/middleware"
	"github.com/medicare-pharmacy/medicare-backend/internal/repos"
	"github.com/medicare-pharmacy/medicare-backend/internal/services"
	"github.com/medicare-pharmacy/medicare-backend/internal/socket"
	"github.com/medicare-pharmacy/medicare-backend/internal/types"
)

type capturingNotifier struct {
	mu    sync.Mutex
	codes map[string]string
}

func (n *capturingNotifier) SendOtp(ctx context.Context, phone, code string) services.DeliveryResult {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.codes[phone] = code
	id := "SMtest"
	return services.DeliveryResult{Success: true, ProviderMessageID: &id}
}

func (n *capturingNotifier) SendAppointmentConfirmation(ctx context.Context, phone, doctorName string, at time.Time, id uuid.UUID) services.DeliveryResult {
	sid := "SMconfirm"
	return services.DeliveryResult{Success: true, ProviderMessageID: &sid}
}

func (n *capturingNotifier) SendNotification(ctx context.Context, phone, text string) services.DeliveryResult {
	return services.DeliveryResult{Success: true}
}

func (n *capturingNotifier) code(phone string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.codes[phone]
}

type testServer struct {
	router   *gin.Engine
	notifier *capturingNotifier
	hub      *socket.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()
	gdb, err := db.NewMemory(strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()), log)
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	sqlDB, _ := gdb.DB()
	t.Cleanup(func() { sqlDB.Close() })

	otpRepo := repos.NewOtpRecordRepo(gdb, log)
	doctorRepo := repos.NewDoctorRepo(gdb, log)
	medicineRepo := repos.NewMedicineRepo(gdb, log)
	appointmentRepo := repos.NewAppointmentRepo(gdb, log)
	tokenRepo := repos.NewUserTokenRepo(gdb, log)

	ctx := context.Background()
	if _, err := doctorRepo.Create(ctx, nil, []*types.Doctor{{Name: "Dr. Mehta", Specialty: "General Physician", IsAvailable: true}}); err != nil {
		t.Fatalf("seed doctor: %v", err)
	}
	if _, err := medicineRepo.Create(ctx, nil, []*types.Medicine{{Name: "Paracetamol", StockQuantity: 10, Price: "12.50"}}); err != nil {
		t.Fatalf("seed medicine: %v", err)
	}

	notifier := &capturingNotifier{codes: map[string]string{}}
	hub := socket.NewHub(log, socket.SalesFeedChannel)
	otpService := services.NewOtpService(gdb, log, otpRepo, notifier, services.OtpServiceConfig{})
	authService := services.NewAuthService(gdb, log, repos.NewAdminUserRepo(gdb, log), tokenRepo, "router-test-secret", time.Hour)
	appointmentService := services.NewAppointmentService(gdb, log, otpRepo, appointmentRepo, doctorRepo, notifier)
	customerService := services.NewCustomerService(gdb, log, repos.NewCustomerRepo(gdb, log), appointmentRepo, otpService, authService)
	saleService := services.NewSaleService(gdb, log, medicineRepo, repos.NewSaleRecordRepo(gdb, log), socket.NewSalesFeed(hub), nil, services.SaleServiceConfig{LowStockThreshold: 5})

	router := NewRouter(RouterConfig{
		AllowedOrigins:     []string{"*"},
		AuthMiddleware:     middleware.NewAuthMiddleware(log, authService),
		AuthHandler:        handlers.NewAuthHandler(log, authService),
		OtpHandler:         handlers.NewOtpHandler(log, otpService),
		AppointmentHandler: handlers.NewAppointmentHandler(log, appointmentService),
		CustomerHandler:    handlers.NewCustomerHandler(log, customerService),
		DoctorHandler:      handlers.NewDoctorHandler(log, services.NewDoctorService(gdb, log, doctorRepo, nil)),
		MedicineHandler:    handlers.NewMedicineHandler(log, services.NewMedicineService(gdb, log, medicineRepo, nil)),
		SaleHandler:        handlers.NewSaleHandler(log, saleService),
		WsHandler:          handlers.WsHandler(hub, log, []string{"*"}, socket.SalesFeedChannel),
	})
	return &testServer{router: router, notifier: notifier, hub: hub}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	out := map[string]interface{}{}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

func (ts *testServer) verifyPhone(t *testing.T, phone string) {
	t.Helper()
	w, _ := ts.do(t, http.MethodPost, "/api/otp/request", "", map[string]string{"phone_number": phone})
	if w.Code != http.StatusOK {
		t.Fatalf("otp request status = %d, body %s", w.Code, w.Body.String())
	}
	w, body := ts.do(t, http.MethodPost, "/api/otp/verify", "", map[string]string{"phone_number": phone, "otp_code": ts.notifier.code(phone)})
	if w.Code != http.StatusOK || body["is_verified"] != true {
		t.Fatalf("otp verify status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestRouter_BookingWorkedExample(t *testing.T) {
	ts := newTestServer(t)
	ts.verifyPhone(t, "9876543210")

	booking := map[string]interface{}{
		"phone_number":  "9876543210",
		"customer_name": "Asha",
		"doctor_id":     1,
		"date":          "2025-01-01T10:00:00",
	}
	w, body := ts.do(t, http.MethodPost, "/api/appointments", "", booking)
	if w.Code != http.StatusCreated {
		t.Fatalf("booking status = %d, body %s", w.Code, w.Body.String())
	}
	appt, ok := body["appointment"].(map[string]interface{})
	if !ok || appt["customer_name"] != "Asha" || appt["is_verified"] != true {
		t.Errorf("appointment = %v", body["appointment"])
	}

	w, body = ts.do(t, http.MethodPost, "/api/appointments", "", booking)
	if w.Code != http.StatusBadRequest || body["error"] != "Phone number not verified. Please verify OTP first." {
		t.Errorf("second booking = %d %v", w.Code, body)
	}
}

func TestRouter_BookingErrors(t *testing.T) {
	ts := newTestServer(t)

	w, body := ts.do(t, http.MethodPost, "/api/otp/request", "", map[string]string{"phone_number": "12ab"})
	if w.Code != http.StatusBadRequest || body["error"] != "Invalid phone number format" {
		t.Errorf("bad phone = %d %v", w.Code, body)
	}

	ts.verifyPhone(t, "9876543210")
	w, body = ts.do(t, http.MethodPost, "/api/create-appointment", "", map[string]interface{}{
		"phone_number": "9876543210", "customer_name": "Asha", "doctor": "99", "date": "2025-01-01T10:00:00",
	})
	if w.Code != http.StatusNotFound || body["error"] != "Doctor not found" {
		t.Errorf("unknown doctor = %d %v", w.Code, body)
	}

	w, body = ts.do(t, http.MethodPost, "/api/appointments", "", map[string]interface{}{"phone_number": "9876543210"})
	if w.Code != http.StatusBadRequest || body["error"] != "All fields are required" {
		t.Errorf("missing fields = %d %v", w.Code, body)
	}

	w, body = ts.do(t, http.MethodPost, "/api/verify-otp", "", map[string]string{"phone_number": "9876543210", "otp_code": "000000"})
	if w.Code != http.StatusBadRequest || body["error"] != "Invalid OTP" {
		t.Errorf("wrong code = %d %v", w.Code, body)
	}
}

func TestRouter_AdminAndCustomerAccess(t *testing.T) {
	ts := newTestServer(t)

	if w, _ := ts.do(t, http.MethodGet, "/api/appointments", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous admin list = %d, want 401", w.Code)
	}

	w, body := ts.do(t, http.MethodPost, "/api/register", "", map[string]string{"username": "frontdesk", "password": "s3cretpass"})
	if w.Code != http.StatusCreated {
		t.Fatalf("register = %d %s", w.Code, w.Body.String())
	}
	adminToken, _ := body["token"].(string)

	w, body = ts.do(t, http.MethodPost, "/api/customer/send-otp", "", map[string]string{"phone_number": "9876543210"})
	if w.Code != http.StatusOK {
		t.Fatalf("customer send-otp = %d %v", w.Code, body)
	}
	w, body = ts.do(t, http.MethodPost, "/api/customer/verify-otp", "", map[string]string{
		"phone_number": "9876543210", "otp_code": ts.notifier.code("9876543210"), "customer_name": "Asha",
	})
	if w.Code != http.StatusOK || body["is_new_customer"] != true {
		t.Fatalf("customer verify-otp = %d %v", w.Code, body)
	}
	customerToken, _ := body["token"].(string)

	ts.verifyPhone(t, "9876543210")
	if w, _ := ts.do(t, http.MethodPost, "/api/appointments", "", map[string]interface{}{
		"phone_number": "9876543210", "customer_name": "Asha", "doctor_id": "1", "date": "2025-01-02 09:30",
	}); w.Code != http.StatusCreated {
		t.Fatalf("booking = %d %s", w.Code, w.Body.String())
	}

	w, body = ts.do(t, http.MethodGet, "/api/customer/appointments", customerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("customer appointments = %d %s", w.Code, w.Body.String())
	}
	if list, _ := body["appointments"].([]interface{}); len(list) != 1 {
		t.Errorf("customer appointments = %v", body["appointments"])
	}
	if w, _ := ts.do(t, http.MethodGet, "/api/customer/appointments?phone_number=9123456780", customerToken, nil); w.Code != http.StatusForbidden {
		t.Errorf("other phone = %d, want 403", w.Code)
	}
	if w, _ := ts.do(t, http.MethodGet, "/api/customer/appointments", adminToken, nil); w.Code != http.StatusForbidden {
		t.Errorf("admin on customer route = %d, want 403", w.Code)
	}
	if w, _ := ts.do(t, http.MethodGet, "/api/appointments", customerToken, nil); w.Code != http.StatusForbidden {
		t.Errorf("customer on admin route = %d, want 403", w.Code)
	}

	w, body = ts.do(t, http.MethodGet, "/api/appointments", adminToken, nil)
	if list, _ := body["appointments"].([]interface{}); w.Code != http.StatusOK || len(list) != 1 {
		t.Errorf("admin list = %d %v", w.Code, body)
	}

	if w, _ := ts.do(t, http.MethodPost, "/api/customer/logout", customerToken, nil); w.Code != http.StatusOK {
		t.Errorf("customer logout = %d", w.Code)
	}
	if w, _ := ts.do(t, http.MethodGet, "/api/customer/appointments", customerToken, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("revoked customer token = %d, want 401", w.Code)
	}
}

func TestRouter_SalesFeed(t *testing.T) {
	ts := newTestServer(t)
	_, body := ts.do(t, http.MethodPost, "/api/register", "", map[string]string{"username": "cashier", "password": "s3cretpass"})
	adminToken, _ := body["token"].(string)

	if w, _ := ts.do(t, http.MethodPost, "/api/sales", "", map[string]interface{}{"medicine_id": 1, "quantity": 2}); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous sale = %d, want 401", w.Code)
	}
	w, _ := ts.do(t, http.MethodPost, "/api/sales", adminToken, map[string]interface{}{"medicine_id": 1, "quantity": 2})
	if w.Code != http.StatusCreated {
		t.Fatalf("sale = %d %s", w.Code, w.Body.String())
	}
	w, body = ts.do(t, http.MethodPost, "/api/sales", adminToken, map[string]interface{}{"medicine_id": 1, "quantity": 50})
	if w.Code != http.StatusBadRequest {
		t.Errorf("oversell = %d %v", w.Code, body)
	}

	w, body = ts.do(t, http.MethodGet, "/api/sales-feed", "", nil)
	sales, _ := body["sales"].([]interface{})
	if w.Code != http.StatusOK || len(sales) != 1 {
		t.Fatalf("sales feed = %d %v", w.Code, body)
	}
	if first, _ := sales[0].(map[string]interface{}); first["medicine_name"] != "Paracetamol" {
		t.Errorf("sale = %v", sales[0])
	}

	w, body = ts.do(t, http.MethodGet, "/api/medicines/1", "", nil)
	if w.Code != http.StatusOK || body["stock_quantity"] != float64(8) {
		t.Errorf("medicine after sale = %d %v", w.Code, body)
	}
}

func TestRouter_Healthz(t *testing.T) {
	ts := newTestServer(t)
	if w, _ := ts.do(t, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusOK {
		t.Errorf("healthz = %d", w.Code)
	}
}
