package handlers

import (
  "fmt"
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/medicare-pharmacy/medicare-backend/internal/logger"
  "github.com/medicare-pharmacy/medicare-backend/internal/services"
)

type OtpHandler struct {
  log           *logger.Logger
  otpService    services.OtpService
}

func NewOtpHandler(log *logger.Logger, otpService services.OtpService) *OtpHandler {
  return &OtpHandler{log: log.With("handler", "OtpHandler"), otpService: otpService}
}

func (oh *OtpHandler) RequestOtp(c *gin.Context) {
  var req struct {
    PhoneNumber     string      `json:"phone_number"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": invalidBodyMessage})
    return
  }
  result, err := oh.otpService.RequestOtp(c.Request.Context(), req.PhoneNumber)
  if err != nil {
    respondError(c, oh.log, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{
    "message":      fmt.Sprintf("OTP sent to %s", result.PhoneNumber),
    "phone_number": result.PhoneNumber,
    "message_id":   result.MessageID,
  })
}

func (oh *OtpHandler) VerifyOtp(c *gin.Context) {
  var req struct {
    PhoneNumber     string      `json:"phone_number"`
    OtpCode         string      `json:"otp_code"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": invalidBodyMessage})
    return
  }
  record, err := oh.otpService.VerifyOtp(c.Request.Context(), req.PhoneNumber, req.OtpCode)
  if err != nil {
    respondError(c, oh.log, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{
    "message":      "OTP verified successfully",
    "phone_number": record.PhoneNumber,
    "is_verified":  true,
  })
}
