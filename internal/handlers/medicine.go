package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/medicare-pharmacy/medicare-backend/internal/errordata"
  "github.com/medicare-pharmacy/medicare-backend/internal/logger"
  "github.com/medicare-pharmacy/medicare-backend/internal/services"
)

const maxImageUploadBytes = 10 << 20

type MedicineHandler struct {
  log               *logger.Logger
  medicineService   services.MedicineService
}

func NewMedicineHandler(log *logger.Logger, medicineService services.MedicineService) *MedicineHandler {
  return &MedicineHandler{log: log.With("handler", "MedicineHandler"), medicineService: medicineService}
}

func medicineNotFound() error {
  return errordata.New(errordata.KindNotFound, "Medicine not found")
}

func (mh *MedicineHandler) ListMedicines(c *gin.Context) {
  medicines, err := mh.medicineService.ListMedicines(c.Request.Context(), c.Query("search"))
  if err != nil {
    respondError(c, mh.log, err)
    return
  }
  c.JSON(http.StatusOK, medicines)
}

func (mh *MedicineHandler) GetMedicine(c *gin.Context) {
  id, ok := uintParam(c, "id")
  if !ok {
    respondError(c, mh.log, medicineNotFound())
    return
  }
  medicine, err := mh.medicineService.GetMedicine(c.Request.Context(), id)
  if err != nil {
    respondError(c, mh.log, err)
    return
  }
  c.JSON(http.StatusOK, medicine)
}

func (mh *MedicineHandler) CreateMedicine(c *gin.Context) {
  var input services.MedicineInput
  if err := c.ShouldBindJSON(&input); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": invalidBodyMessage})
    return
  }
  medicine, err := mh.medicineService.CreateMedicine(c.Request.Context(), input)
  if err != nil {
    respondError(c, mh.log, err)
    return
  }
  c.JSON(http.StatusCreated, medicine)
}

func (mh *MedicineHandler) UpdateMedicine(c *gin.Context) {
  id, ok := uintParam(c, "id")
  if !ok {
    respondError(c, mh.log, medicineNotFound())
    return
  }
  var input services.MedicineInput
  if err := c.ShouldBindJSON(&input); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": invalidBodyMessage})
    return
  }
  medicine, err := mh.medicineService.UpdateMedicine(c.Request.Context(), id, input)
  if err != nil {
    respondError(c, mh.log, err)
    return
  }
  c.JSON(http.StatusOK, medicine)
}

func (mh *MedicineHandler) DeleteMedicine(c *gin.Context) {
  id, ok := uintParam(c, "id")
  if !ok {
    respondError(c, mh.log, medicineNotFound())
    return
  }
  if err := mh.medicineService.DeleteMedicine(c.Request.Context(), id); err != nil {
    respondError(c, mh.log, err)
    return
  }
  c.Status(http.StatusNoContent)
}

// UploadImage expects a multipart form with the file under "image".
func (mh *MedicineHandler) UploadImage(c *gin.Context) {
  id, ok := uintParam(c, "id")
  if !ok {
    respondError(c, mh.log, medicineNotFound())
    return
  }
  c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageUploadBytes)
  fileHeader, err := c.FormFile("image")
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
    return
  }
  file, err := fileHeader.Open()
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "image file is unreadable"})
    return
  }
  defer file.Close()

  medicine, err := mh.medicineService.UploadMedicineImage(c.Request.Context(), id, file)
  if err != nil {
    respondError(c, mh.log, err)
    return
  }
  c.JSON(http.StatusOK, medicine)
}
