package http

import (
	"errors"
	"fmt"
	"net/http"

	"skillforge-backend/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	AuthUsecase        domain.AuthUsecase
	CourseUsecase      domain.CourseUsecase
	ProgressUsecase    domain.ProgressUsecase
	CertificateUsecase domain.CertificateUsecase
	FeedbackUsecase    domain.FeedbackUsecase
	AnalyticsUsecase   domain.AnalyticsUsecase
	DashboardUsecase   domain.DashboardUsecase
}

func NewHandler(
	au domain.AuthUsecase,
	cu domain.CourseUsecase,
	pu domain.ProgressUsecase,
	certu domain.CertificateUsecase,
	fu domain.FeedbackUsecase,
	anu domain.AnalyticsUsecase,
	du domain.DashboardUsecase,
) *Handler {
	return &Handler{
		AuthUsecase:        au,
		CourseUsecase:      cu,
		ProgressUsecase:    pu,
		CertificateUsecase: certu,
		FeedbackUsecase:    fu,
		AnalyticsUsecase:   anu,
		DashboardUsecase:   du,
	}
}

// ========== UTILITY FUNCTIONS ==========

func formatValidationErrors(err error) gin.H {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		errors := make(map[string]string)
		for _, f := range ve {
			errors[f.Field()] = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", f.Field(), f.Tag())
		}
		return gin.H{"error": "Validation failed", "details": errors}
	}
	return gin.H{"error": "Invalid request: " + err.Error()}
}

func getUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", errors.New("user ID not found in token")
	}
	return userID.(string), nil
}

func getActor(c *gin.Context) (domain.Actor, error) {
	userID, err := getUserID(c)
	if err != nil {
		return domain.Actor{}, err
	}
	role, exists := c.Get("role")
	if !exists {
		return domain.Actor{}, errors.New("role not found in token")
	}
	return domain.Actor{ID: userID, Role: domain.Role(role.(string))}, nil
}

// respondError maps domain sentinels to HTTP statuses exactly once, here at
// the boundary. The code tag stays stable for clients; the message may change.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_argument", "error": err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"code": "forbidden", "error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "error": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"code": "conflict", "error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal", "error": "Internal server error"})
	}
}

// ========== AUTH HANDLERS ==========

func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Email       string `json:"email" binding:"required,email"`
		Password    string `json:"password" binding:"required,min=6"`
		Role        string `json:"role" binding:"omitempty,oneof=student instructor"`
		LearnerType string `json:"learner_type" binding:"omitempty,oneof=student professional"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, formatValidationErrors(err))
		return
	}

	user := domain.User{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Role:        domain.Role(req.Role),
		LearnerType: req.LearnerType,
	}
	if err := h.AuthUsecase.Register(c.Request.Context(), &user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

func (h *Handler) Login(c *gin.Context) {
	var creds struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, formatValidationErrors(err))
		return
	}

	token, err := h.AuthUsecase.Login(c.Request.Context(), creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	user, err := h.AuthUsecase.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ========== COURSE HANDLERS ==========

func (h *Handler) GetCourses(c *gin.Context) {
	courses, err := h.CourseUsecase.GetAllCourses(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func (h *Handler) GetCourseDetail(c *gin.Context) {
	var userID *string
	if id, err := getUserID(c); err == nil {
		userID = &id
	}

	detail, err := h.CourseUsecase.GetCourseDetails(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"course": detail})
}

func (h *Handler) CreateCourse(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		Name        string  `json:"name" binding:"required"`
		Description string  `json:"description"`
		Price       float64 `json:"price" binding:"min=0"`
		Duration    int     `json:"duration" binding:"min=0"`
		Category    string  `json:"category"`
		Level       string  `json:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
		Thumbnail   string  `json:"thumbnail"`
		Modules     []struct {
			Title    string         `json:"title" binding:"required"`
			Topics   []string       `json:"topics"`
			Duration int            `json:"duration"`
			Videos   []domain.Video `json:"videos"`
			Quizzes  []domain.Quiz  `json:"quizzes"`
		} `json:"modules"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, formatValidationErrors(err))
		return
	}

	course := domain.Course{
		Name:         req.Name,
		Description:  req.Description,
		InstructorID: userID,
		Price:        req.Price,
		Duration:     req.Duration,
		Category:     req.Category,
		Level:        req.Level,
		Thumbnail:    req.Thumbnail,
	}
	modules := make([]domain.CourseModule, len(req.Modules))
	for i, m := range req.Modules {
		modules[i] = domain.CourseModule{
			Title:    m.Title,
			Topics:   m.Topics,
			Duration: m.Duration,
			Videos:   m.Videos,
			Quizzes:  m.Quizzes,
		}
	}

	if err := h.CourseUsecase.CreateCourse(c.Request.Context(), &course, modules); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Course created successfully", "course_id": course.ID})
}

func (h *Handler) EnrollInCourse(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	if err := h.CourseUsecase.Enroll(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Enrolled successfully"})
}

func (h *Handler) GetEnrollment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	enrollment, err := h.CourseUsecase.GetEnrollment(c.Request.Context(), userID, c.Param("courseId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enrollment": enrollment})
}

// ========== PROGRESS HANDLERS ==========

func (h *Handler) MarkVideoWatched(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		CourseID    string `json:"course_id" binding:"required"`
		ModuleIndex *int   `json:"module_index" binding:"required"`
		VideoIndex  *int   `json:"video_index" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, formatValidationErrors(err))
		return
	}

	if err := h.ProgressUsecase.MarkVideoWatched(c.Request.Context(), userID, req.CourseID, *req.ModuleIndex, *req.VideoIndex); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Video marked as watched"})
}

func (h *Handler) MarkQuizCompleted(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		CourseID    string `json:"course_id" binding:"required"`
		ModuleIndex *int   `json:"module_index" binding:"required"`
		QuizIndex   *int   `json:"quiz_index" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, formatValidationErrors(err))
		return
	}

	if err := h.ProgressUsecase.MarkQuizCompleted(c.Request.Context(), userID, req.CourseID, *req.ModuleIndex, *req.QuizIndex); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Quiz marked as completed"})
}

func (h *Handler) GetCourseProgress(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	progress, err := h.ProgressUsecase.GetProgress(c.Request.Context(), userID, c.Param("courseId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

func (h *Handler) AddTimeSpent(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		CourseID string   `json:"course_id" binding:"required"`
		Minutes  *float64 `json:"minutes" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, formatValidationErrors(err))
		return
	}

	if err := h.ProgressUsecase.AddTimeSpent(c.Request.Context(), userID, req.CourseID, *req.Minutes); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Time recorded"})
}

// ========== CERTIFICATE HANDLERS ==========

func (h *Handler) GetCertificateEligibility(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	eligibility, err := h.CertificateUsecase.Eligibility(c.Request.Context(), userID, c.Param("courseId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, eligibility)
}

// ========== FEEDBACK HANDLERS ==========

func (h *Handler) SubmitFeedback(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		CourseID string `json:"course_id" binding:"required"`
		Rating   int    `json:"rating" binding:"required,min=1,max=5"`
		Review   string `json:"review" binding:"required,min=10"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, formatValidationErrors(err))
		return
	}

	feedback, err := h.FeedbackUsecase.Submit(c.Request.Context(), userID, req.CourseID, req.Rating, req.Review)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Feedback submitted", "feedback": feedback})
}

func (h *Handler) GetCourseFeedback(c *gin.Context) {
	feedback, err := h.FeedbackUsecase.GetCourseFeedback(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": feedback})
}

// ========== DASHBOARD & ANALYTICS HANDLERS ==========

func (h *Handler) GetLearnerDashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	dashboard, err := h.DashboardUsecase.GetLearnerDashboard(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (h *Handler) GetInstructorDashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	dashboard, err := h.DashboardUsecase.GetInstructorDashboard(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (h *Handler) GetCourseAnalytics(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	view, err := h.AnalyticsUsecase.CourseAnalytics(c.Request.Context(), actor, c.Param("courseId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
