package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/medipoint/medipointbackend/middleware"
	"github.com/medipoint/medipointbackend/models"
)

// MountRoutes wires the three role groups. The generic handlers serve all
// roles; doctors and patients get their extra endpoints on top.
func MountRoutes(r *gin.Engine, d Deps) {
	mountRole(r.Group("/admins"), d, models.AdminRole)

	doctors := r.Group("/doctors")
	mountRole(doctors, d, models.DoctorRole)
	doctorAdmin := doctors.Group("")
	doctorAdmin.Use(middleware.Auth(d.Store, models.AdminRole))
	{
		doctorAdmin.GET("/pending", PendingDoctors(d))
		doctorAdmin.POST("/activate/:id", ActivateDoctor(d))
	}

	patients := r.Group("/patients")
	mountRole(patients, d, models.PatientRole)
	patientAdmin := patients.Group("")
	patientAdmin.Use(middleware.Auth(d.Store, models.AdminRole))
	{
		patientAdmin.POST("/block/:id", BlockPatient(d))
		patientAdmin.POST("/unblock/:id", UnblockPatient(d))
	}
	patients.POST("/forgot-password", ForgotPassword(d))
	patients.POST("/verify-reset-code", VerifyResetCode(d))
	patients.POST("/reset-password", ResetPassword(d))
}

func mountRole(g *gin.RouterGroup, d Deps, role *models.Role) {
	g.GET("", List(d, role))
	g.GET("/find", Find(d, role))
	g.GET("/get/:id", GetByID(d, role))
	g.POST("/signup", Signup(d, role))
	g.POST("/login", Login(d, role))

	self := g.Group("")
	self.Use(middleware.Auth(d.Store, role))
	{
		self.GET("/me", Me(role))
		self.PATCH("/me", UpdateMe(d, role))
		self.DELETE("/me", DeleteMe(d, role))
		self.POST("/me/picture", UploadPicture(d, role))
		self.POST("/logout", Logout(d, role))
		self.POST("/logout-all", LogoutAll(d, role))
	}

	// Cross-identity management always requires an admin session.
	admin := g.Group("")
	admin.Use(middleware.Auth(d.Store, models.AdminRole))
	{
		admin.PATCH("/:id", UpdateByID(d, role))
		admin.DELETE("/:id", DeleteByID(d, role))
	}
}
