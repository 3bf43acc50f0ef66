package server

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nexuslearn/nexus/config"
	"github.com/nexuslearn/nexus/internal/handlers"
	"github.com/nexuslearn/nexus/internal/middleware"
	"github.com/nexuslearn/nexus/internal/notifier"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	smtpCfg := config.LoadSMTPConfig()
	var mailer notifier.Mailer = &notifier.LogMailer{Logger: logger}
	if smtpCfg.Host != "" {
		mailer = &notifier.SMTPMailer{
			Host:     smtpCfg.Host,
			Port:     smtpCfg.Port,
			Sender:   smtpCfg.Sender,
			Password: smtpCfg.Password,
		}
	}

	n := notifier.New(db, mailer, logger)
	defer n.Close()

	r := gin.Default()

	SetupRoutes(r, db, n)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return r.Run(":" + port)
}

func SetupRoutes(r *gin.Engine, db *gorm.DB, n *notifier.Notifier) {
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.NotifierMiddleware(n))

	r.GET("/", handlers.Welcome)

	public := r.Group("/v1")
	{
		public.GET("/health", handlers.HealthCheck)
		public.POST("/register", handlers.Register)
		public.POST("/login", handlers.Login)
	}

	// Catalog and review reads are public; an optional token widens course
	// visibility for teachers.
	open := r.Group("/v1")
	open.Use(middleware.OptionalJWTAuthMiddleware())
	{
		coursesOpen := open.Group("/courses")
		{
			coursesOpen.GET("", handlers.ListCourses)
			coursesOpen.GET("/:id", handlers.GetCourse)
		}

		lessonsOpen := open.Group("/lessons")
		{
			lessonsOpen.GET("", handlers.ListLessons)
			lessonsOpen.GET("/:id", handlers.GetLesson)
		}

		courseReviewsOpen := open.Group("/course-reviews")
		{
			courseReviewsOpen.GET("", handlers.ListCourseReviews)
			courseReviewsOpen.GET("/:id", handlers.GetCourseReview)
		}

		teacherReviewsOpen := open.Group("/teacher-reviews")
		{
			teacherReviewsOpen.GET("", handlers.ListTeacherReviews)
			teacherReviewsOpen.GET("/:id", handlers.GetTeacherReview)
		}
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		protected.GET("/profile", handlers.GetProfile)
		protected.PATCH("/profile", handlers.UpdateProfile)

		coursesProtected := protected.Group("/courses")
		{
			coursesProtected.POST("", handlers.CreateCourse)
			coursesProtected.PUT("/:id", handlers.UpdateCourse)
			coursesProtected.DELETE("/:id", handlers.DeleteCourse)
			coursesProtected.POST("/:id/publish", handlers.PublishCourse)
			coursesProtected.POST("/:id/unpublish", handlers.UnpublishCourse)
		}

		lessonsProtected := protected.Group("/lessons")
		{
			lessonsProtected.POST("", handlers.CreateLesson)
			lessonsProtected.PUT("/:id", handlers.UpdateLesson)
			lessonsProtected.DELETE("/:id", handlers.DeleteLesson)
		}

		enrollments := protected.Group("/enrollments")
		{
			enrollments.GET("", handlers.ListEnrollments)
			enrollments.GET("/:id", handlers.GetEnrollment)
			enrollments.POST("", handlers.CreateEnrollment)
			enrollments.PATCH("/:id", handlers.UpdateEnrollment)
			enrollments.POST("/:id/cancel", handlers.CancelEnrollment)
		}

		payments := protected.Group("/payments")
		{
			payments.GET("", handlers.ListPayments)
			payments.GET("/:id", handlers.GetPayment)
			payments.POST("", handlers.CreatePayment)
		}

		courseReviews := protected.Group("/course-reviews")
		{
			courseReviews.POST("", handlers.CreateCourseReview)
			courseReviews.PATCH("/:id", handlers.UpdateCourseReview)
			courseReviews.DELETE("/:id", handlers.DeleteCourseReview)
		}

		teacherReviews := protected.Group("/teacher-reviews")
		{
			teacherReviews.POST("", handlers.CreateTeacherReview)
			teacherReviews.PATCH("/:id", handlers.UpdateTeacherReview)
			teacherReviews.DELETE("/:id", handlers.DeleteTeacherReview)
		}
	}
}
