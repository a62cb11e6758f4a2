package handlers

import (
  "encoding/json"
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/medicare-pharmacy/medicare-backend/internal/logger"
  "github.com/medicare-pharmacy/medicare-backend/internal/services"
)

type SaleHandler struct {
  log           *logger.Logger
  saleService   services.SaleService
}

func NewSaleHandler(log *logger.Logger, saleService services.SaleService) *SaleHandler {
  return &SaleHandler{log: log.With("handler", "SaleHandler"), saleService: saleService}
}

func (sh *SaleHandler) RecordSale(c *gin.Context) {
  var req struct {
    MedicineID      json.Number     `json:"medicine_id"`
    Quantity        int             `json:"quantity"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": invalidBodyMessage})
    return
  }
  sale, err := sh.saleService.RecordSale(c.Request.Context(), flexibleID(req.MedicineID), req.Quantity)
  if err != nil {
    respondError(c, sh.log, err)
    return
  }
  c.JSON(http.StatusCreated, sale)
}

func (sh *SaleHandler) SalesFeed(c *gin.Context) {
  sales, err := sh.saleService.RecentSales(c.Request.Context())
  if err != nil {
    respondError(c, sh.log, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"sales": sales})
}
