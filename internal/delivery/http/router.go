package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitRouter(handler *Handler) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(RequestTimeout(10 * time.Second))

	// Public Routes
	api := r.Group("/api/v1")
	{
		api.POST("/register", handler.Register)
		api.POST("/login", handler.Login)
		api.GET("/courses", handler.GetCourses)
		api.GET("/courses/:id", OptionalAuthMiddleware(), handler.GetCourseDetail)
		api.GET("/courses/:id/feedback", handler.GetCourseFeedback)
		api.POST("/courses", AuthMiddleware("instructor"), handler.CreateCourse)
	}

	// Protected Routes (any authenticated user)
	protected := api.Group("/")
	protected.Use(AuthMiddleware())
	{
		protected.GET("/profile", handler.GetProfile)
		protected.POST("/courses/:id/enroll", handler.EnrollInCourse)
		protected.GET("/enrollment/:courseId", handler.GetEnrollment)
		protected.PUT("/progress/video", handler.MarkVideoWatched)
		protected.PUT("/progress/quiz", handler.MarkQuizCompleted)
		protected.GET("/progress/:courseId", handler.GetCourseProgress)
		protected.POST("/time", handler.AddTimeSpent)
		protected.POST("/feedback", handler.SubmitFeedback)
		protected.GET("/certificate-eligibility/:courseId", handler.GetCertificateEligibility)
		protected.GET("/dashboard", handler.GetLearnerDashboard)
	}

	// Instructor Only
	instructor := api.Group("/instructor")
	instructor.Use(AuthMiddleware("instructor"))
	{
		instructor.GET("/dashboard", handler.GetInstructorDashboard)
		instructor.GET("/analytics/:courseId", handler.GetCourseAnalytics)
	}

	return r
}
