package handlers

import (
  "fmt"
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/medicare-pharmacy/medicare-backend/internal/logger"
  "github.com/medicare-pharmacy/medicare-backend/internal/services"
)

type CustomerHandler struct {
  log               *logger.Logger
  customerService   services.CustomerService
}

func NewCustomerHandler(log *logger.Logger, customerService services.CustomerService) *CustomerHandler {
  return &CustomerHandler{log: log.With("handler", "CustomerHandler"), customerService: customerService}
}

func (ch *CustomerHandler) SendOtp(c *gin.Context) {
  var req struct {
    PhoneNumber     string      `json:"phone_number"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": invalidBodyMessage})
    return
  }
  result, err := ch.customerService.SendLoginOtp(c.Request.Context(), req.PhoneNumber)
  if err != nil {
    respondError(c, ch.log, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{
    "message":      fmt.Sprintf("OTP sent to %s", result.PhoneNumber),
    "phone_number": result.PhoneNumber,
    "message_id":   result.MessageID,
  })
}

func (ch *CustomerHandler) VerifyOtp(c *gin.Context) {
  var req struct {
    PhoneNumber     string      `json:"phone_number"`
    OtpCode         string      `json:"otp_code"`
    CustomerName    string      `json:"customer_name"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": invalidBodyMessage})
    return
  }
  result, err := ch.customerService.VerifyLogin(c.Request.Context(), req.PhoneNumber, req.OtpCode, req.CustomerName)
  if err != nil {
    respondError(c, ch.log, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{
    "message":         "Login successful",
    "token":           result.Token,
    "customer":        result.Customer,
    "is_new_customer": result.IsNewCustomer,
  })
}

func (ch *CustomerHandler) Logout(c *gin.Context) {
  if err := ch.customerService.Logout(c.Request.Context()); err != nil {
    respondError(c, ch.log, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (ch *CustomerHandler) MyAppointments(c *gin.Context) {
  appointments, err := ch.customerService.MyAppointments(c.Request.Context(), c.Query("phone_number"))
  if err != nil {
    respondError(c, ch.log, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"appointments": appointments})
}
