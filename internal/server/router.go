package server

import (
  "github.com/gin-gonic/gin"
  "github.com/gin-contrib/cors"

  "github.com/medicare-pharmacy/medicare-backend/internal/handlers"
  "github.com/medicare-pharmacy/medicare-backend/internal/middleware"
)

type RouterConfig struct {
  AllowedOrigins        []string
  AuthMiddleware        *middleware.AuthMiddleware
  AuthHandler           *handlers.AuthHandler
  OtpHandler            *handlers.OtpHandler
  AppointmentHandler    *handlers.AppointmentHandler
  CustomerHandler       *handlers.CustomerHandler
  DoctorHandler         *handlers.DoctorHandler
  MedicineHandler       *handlers.MedicineHandler
  SaleHandler           *handlers.SaleHandler
  WsHandler             gin.HandlerFunc
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.New()
  router.Use(gin.Logger(), gin.Recovery())

  //-----------------------------------------
  // Cors Setup
  //-----------------------------------------
  router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

  //-----------------------------------------
  // Health Routes
  //-----------------------------------------
  router.GET("/healthz", handlers.Healthz)

  //-----------------------------------------
  // Public Routes
  //-----------------------------------------
  api := router.Group("/api")
  {
    api.POST("/otp/request", cfg.OtpHandler.RequestOtp)
    api.POST("/otp/verify", cfg.OtpHandler.VerifyOtp)
    api.POST("/appointments", cfg.AppointmentHandler.CreateAppointment)

    api.POST("/send-otp", cfg.OtpHandler.RequestOtp)
    api.POST("/verify-otp", cfg.OtpHandler.VerifyOtp)
    api.POST("/create-appointment", cfg.AppointmentHandler.CreateAppointment)

    api.POST("/customer/send-otp", cfg.CustomerHandler.SendOtp)
    api.POST("/customer/verify-otp", cfg.CustomerHandler.VerifyOtp)

    api.POST("/register", cfg.AuthHandler.Register)
    api.POST("/login", cfg.AuthHandler.Login)

    api.GET("/doctors", cfg.DoctorHandler.ListDoctors)
    api.GET("/doctors/:id", cfg.DoctorHandler.GetDoctor)
    api.GET("/medicines", cfg.MedicineHandler.ListMedicines)
    api.GET("/medicines/:id", cfg.MedicineHandler.GetMedicine)

    api.GET("/sales-feed", cfg.SaleHandler.SalesFeed)
    api.GET("/ws/sales", cfg.WsHandler)
  }

  //------------------------------------------
  // Customer Routes
  //------------------------------------------
  customer := api.Group("/customer")
  customer.Use(cfg.AuthMiddleware.RequireCustomer())
  customer.POST("/logout", cfg.CustomerHandler.Logout)
  customer.GET("/appointments", cfg.CustomerHandler.MyAppointments)

  //------------------------------------------
  // Admin Routes
  //------------------------------------------
  admin := api.Group("")
  admin.Use(cfg.AuthMiddleware.RequireAdmin())
  admin.POST("/logout", cfg.AuthHandler.Logout)

  //Appointments
  admin.GET("/appointments", cfg.AppointmentHandler.ListAppointments)
  admin.GET("/appointments/:id", cfg.AppointmentHandler.GetAppointment)
  admin.DELETE("/appointments/:id", cfg.AppointmentHandler.DeleteAppointment)

  //Doctors
  admin.POST("/doctors", cfg.DoctorHandler.CreateDoctor)
  admin.PUT("/doctors/:id", cfg.DoctorHandler.UpdateDoctor)
  admin.DELETE("/doctors/:id", cfg.DoctorHandler.DeleteDoctor)

  //Medicines
  admin.POST("/medicines", cfg.MedicineHandler.CreateMedicine)
  admin.PUT("/medicines/:id", cfg.MedicineHandler.UpdateMedicine)
  admin.DELETE("/medicines/:id", cfg.MedicineHandler.DeleteMedicine)
  admin.POST("/medicines/:id/image", cfg.MedicineHandler.UploadImage)

  //Sales
  admin.POST("/sales", cfg.SaleHandler.RecordSale)

  return router
}

func corsConfig(allowedOrigins []string) cors.Config {
  config := cors.Config{
    AllowMethods:     []string{"GET","POST","PUT","DELETE","PATCH","OPTIONS"},
    AllowHeaders:     []string{"Authorization","Content-Type","X-Requested-With"},
  }
  if len(allowedOrigins) == 0 {
    config.AllowAllOrigins = true
    return config
  }
  for _, origin := range allowedOrigins {
    if origin == "*" {
      config.AllowAllOrigins = true
      return config
    }
  }
  config.AllowOrigins = allowedOrigins
  config.AllowCredentials = true
  return config
}
