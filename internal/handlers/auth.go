package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/medicare-pharmacy/medicare-backend/internal/logger"
  "github.com/medicare-pharmacy/medicare-backend/internal/services"
)

type AuthHandler struct {
  log             *logger.Logger
  authService     services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
  return &AuthHandler{log: log.With("handler", "AuthHandler"), authService: authService}
}

type credentialsRequest struct {
  Username        string      `json:"username"`
  Password        string      `json:"password"`
}

func (ah *AuthHandler) Register(c *gin.Context) {
  var req credentialsRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": invalidBodyMessage})
    return
  }
  user, token, err := ah.authService.Register(c.Request.Context(), req.Username, req.Password)
  if err != nil {
    respondError(c, ah.log, err)
    return
  }
  c.JSON(http.StatusCreated, gin.H{
    "token":      token,
    "username":   user.Username,
    "expires_in": int(ah.authService.GetAccessTTL().Seconds()),
  })
}

func (ah *AuthHandler) Login(c *gin.Context) {
  var req credentialsRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": invalidBodyMessage})
    return
  }
  user, token, err := ah.authService.Login(c.Request.Context(), req.Username, req.Password)
  if err != nil {
    respondError(c, ah.log, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{
    "token":      token,
    "username":   user.Username,
    "expires_in": int(ah.authService.GetAccessTTL().Seconds()),
  })
}

func (ah *AuthHandler) Logout(c *gin.Context) {
  if err := ah.authService.Logout(c.Request.Context()); err != nil {
    respondError(c, ah.log, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
