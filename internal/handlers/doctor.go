package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/medicare-pharmacy/medicare-backend/internal/errordata"
  "github.com/medicare-pharmacy/medicare-backend/internal/logger"
  "github.com/medicare-pharmacy/medicare-backend/internal/services"
)

type DoctorHandler struct {
  log             *logger.Logger
  doctorService   services.DoctorService
}

func NewDoctorHandler(log *logger.Logger, doctorService services.DoctorService) *DoctorHandler {
  return &DoctorHandler{log: log.With("handler", "DoctorHandler"), doctorService: doctorService}
}

func (dh *DoctorHandler) ListDoctors(c *gin.Context) {
  doctors, err := dh.doctorService.ListDoctors(c.Request.Context(), c.Query("search"))
  if err != nil {
    respondError(c, dh.log, err)
    return
  }
  c.JSON(http.StatusOK, doctors)
}

func (dh *DoctorHandler) GetDoctor(c *gin.Context) {
  id, ok := uintParam(c, "id")
  if !ok {
    respondError(c, dh.log, errordata.New(errordata.KindDoctorNotFound, "Doctor not found"))
    return
  }
  doctor, err := dh.doctorService.GetDoctor(c.Request.Context(), id)
  if err != nil {
    respondError(c, dh.log, err)
    return
  }
  c.JSON(http.StatusOK, doctor)
}

func (dh *DoctorHandler) CreateDoctor(c *gin.Context) {
  var input services.DoctorInput
  if err := c.ShouldBindJSON(&input); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": invalidBodyMessage})
    return
  }
  doctor, err := dh.doctorService.CreateDoctor(c.Request.Context(), input)
  if err != nil {
    respondError(c, dh.log, err)
    return
  }
  c.JSON(http.StatusCreated, doctor)
}

func (dh *DoctorHandler) UpdateDoctor(c *gin.Context) {
  id, ok := uintParam(c, "id")
  if !ok {
    respondError(c, dh.log, errordata.New(errordata.KindDoctorNotFound, "Doctor not found"))
    return
  }
  var input services.DoctorInput
  if err := c.ShouldBindJSON(&input); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": invalidBodyMessage})
    return
  }
  doctor, err := dh.doctorService.UpdateDoctor(c.Request.Context(), id, input)
  if err != nil {
    respondError(c, dh.log, err)
    return
  }
  c.JSON(http.StatusOK, doctor)
}

func (dh *DoctorHandler) DeleteDoctor(c *gin.Context) {
  id, ok := uintParam(c, "id")
  if !ok {
    respondError(c, dh.log, errordata.New(errordata.KindDoctorNotFound, "Doctor not found"))
    return
  }
  if err := dh.doctorService.DeleteDoctor(c.Request.Context(), id); err != nil {
    respondError(c, dh.log, err)
    return
  }
  c.Status(http.StatusNoContent)
}
