package handlers

import (
  "encoding/json"
  "net/http"
  "strconv"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/medicare-pharmacy/medicare-backend/internal/errordata"
  "github.com/medicare-pharmacy/medicare-backend/internal/logger"
)

const invalidBodyMessage = "invalid request body"

// respondError writes {"error": msg} with the status mapped from err's kind. Unclassified
// errors are logged and replaced with a generic message.
func respondError(c *gin.Context, log *logger.Logger, err error) {
  status := errordata.HTTPStatus(err)
  if status >= http.StatusInternalServerError {
    log.Error("Request failed", "path", c.FullPath(), "error", err)
  }
  c.JSON(status, gin.H{"error": errordata.PublicMessage(err)})
}

func uintParam(c *gin.Context, name string) (uint, bool) {
  v, err := strconv.ParseUint(c.Param(name), 10, 64)
  if err != nil || v == 0 {
    return 0, false
  }
  return uint(v), true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
  id, err := uuid.Parse(c.Param(name))
  if err != nil {
    return uuid.Nil, false
  }
  return id, true
}

// flexibleID accepts a JSON number or a numeric string.
func flexibleID(n json.Number) uint {
  if n == "" {
    return 0
  }
  v, err := strconv.ParseUint(string(n), 10, 64)
  if err != nil {
    return 0
  }
  return uint(v)
}

func Healthz(c *gin.Context) {
  c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
