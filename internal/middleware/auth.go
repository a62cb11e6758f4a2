package middleware

import (
  "net/http"
  "strings"

  "github.com/gin-gonic/gin"

  "github.com/medicare-pharmacy/medicare-backend/internal/errordata"
  "github.com/medicare-pharmacy/medicare-backend/internal/logger"
  "github.com/medicare-pharmacy/medicare-backend/internal/requestdata"
  "github.com/medicare-pharmacy/medicare-backend/internal/services"
)

type AuthMiddleware struct {
  log               *logger.Logger
  authService       services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
  middlewareLogger := log.With("Middleware", "AuthMiddleware")
  return &AuthMiddleware{log: middlewareLogger, authService: authService}
}

// RequireAuth accepts any valid admin or customer token.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
  return func(c *gin.Context) {
    if !am.authenticate(c) {
      return
    }
    c.Next()
  }
}

func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
  return am.requireUserType(requestdata.UserTypeAdmin)
}

func (am *AuthMiddleware) RequireCustomer() gin.HandlerFunc {
  return am.requireUserType(requestdata.UserTypeCustomer)
}

func (am *AuthMiddleware) requireUserType(userType string) gin.HandlerFunc {
  return func(c *gin.Context) {
    if !am.authenticate(c) {
      return
    }
    rd := requestdata.GetRequestData(c.Request.Context())
    var ok bool
    switch userType {
    case requestdata.UserTypeAdmin:
      ok = rd.IsAdmin()
    case requestdata.UserTypeCustomer:
      ok = rd.IsCustomer()
    }
    if !ok {
      c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
      return
    }
    c.Next()
  }
}

// authenticate loads request data from the token or aborts the request.
func (am *AuthMiddleware) authenticate(c *gin.Context) bool {
  tokenString := extractToken(c)
  if tokenString == "" {
    c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
    return false
  }
  ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
  if err != nil {
    am.log.Debug("Token rejected", "error", err)
    c.AbortWithStatusJSON(errordata.HTTPStatus(err), gin.H{"error": errordata.PublicMessage(err)})
    return false
  }
  c.Request = c.Request.WithContext(ctx)
  return true
}

func extractToken(c *gin.Context) string {
  authHeader := c.GetHeader("Authorization")
  if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
    return strings.TrimSpace(authHeader[7:])
  }
  return c.Query("token")
}
