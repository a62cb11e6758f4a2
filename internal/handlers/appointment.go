package handlers

import (
  "encoding/json"
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/medicare-pharmacy/medicare-backend/internal/errordata"
  "github.com/medicare-pharmacy/medicare-backend/internal/logger"
  "github.com/medicare-pharmacy/medicare-backend/internal/services"
)

type AppointmentHandler struct {
  log                   *logger.Logger
  appointmentService    services.AppointmentService
}

func NewAppointmentHandler(log *logger.Logger, appointmentService services.AppointmentService) *AppointmentHandler {
  return &AppointmentHandler{log: log.With("handler", "AppointmentHandler"), appointmentService: appointmentService}
}

func (ah *AppointmentHandler) CreateAppointment(c *gin.Context) {
  var req struct {
    PhoneNumber     string          `json:"phone_number"`
    CustomerName    string          `json:"customer_name"`
    DoctorID        json.Number     `json:"doctor_id"`
    Doctor          json.Number     `json:"doctor"`
    Date            string          `json:"date"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": invalidBodyMessage})
    return
  }
  doctorID := flexibleID(req.DoctorID)
  if doctorID == 0 {
    doctorID = flexibleID(req.Doctor)
  }
  appointment, err := ah.appointmentService.CreateAppointment(c.Request.Context(), services.CreateAppointmentInput{
    PhoneNumber:  req.PhoneNumber,
    CustomerName: req.CustomerName,
    DoctorID:     doctorID,
    ScheduledAt:  req.Date,
  })
  if err != nil {
    respondError(c, ah.log, err)
    return
  }
  c.JSON(http.StatusCreated, gin.H{"message": "Appointment booked successfully", "appointment": appointment})
}

func (ah *AppointmentHandler) ListAppointments(c *gin.Context) {
  appointments, err := ah.appointmentService.ListAppointments(c.Request.Context())
  if err != nil {
    respondError(c, ah.log, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"appointments": appointments})
}

func (ah *AppointmentHandler) GetAppointment(c *gin.Context) {
  id, ok := uuidParam(c, "id")
  if !ok {
    respondError(c, ah.log, errordata.New(errordata.KindNotFound, "Appointment not found"))
    return
  }
  appointment, err := ah.appointmentService.GetAppointment(c.Request.Context(), id)
  if err != nil {
    respondError(c, ah.log, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"appointment": appointment})
}

func (ah *AppointmentHandler) DeleteAppointment(c *gin.Context) {
  id, ok := uuidParam(c, "id")
  if !ok {
    respondError(c, ah.log, errordata.New(errordata.KindNotFound, "Appointment not found"))
    return
  }
  if err := ah.appointmentService.DeleteAppointment(c.Request.Context(), id); err != nil {
    respondError(c, ah.log, err)
    return
  }
  c.Status(http.StatusNoContent)
}
