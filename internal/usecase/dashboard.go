package usecase

import (
	"context"
	"math"

	"skillforge-backend/internal/domain"

	"go.uber.org/zap"
)

type dashboardUsecase struct {
	userRepo        domain.UserRepository
	courseRepo      domain.CourseRepository
	moduleRepo      domain.CourseModuleRepository
	enrollmentRepo  domain.EnrollmentRepository
	feedbackRepo    domain.FeedbackRepository
	certificateCase domain.CertificateUsecase
	logger          *zap.Logger
}

func NewDashboardUsecase(
	ur domain.UserRepository,
	cr domain.CourseRepository,
	mr domain.CourseModuleRepository,
	er domain.EnrollmentRepository,
	fr domain.FeedbackRepository,
	cert domain.CertificateUsecase,
	logger *zap.Logger,
) domain.DashboardUsecase {
	return &dashboardUsecase{
		userRepo:        ur,
		courseRepo:      cr,
		moduleRepo:      mr,
		enrollmentRepo:  er,
		feedbackRepo:    fr,
		certificateCase: cert,
		logger:          logger,
	}
}

func (uc *dashboardUsecase) GetLearnerDashboard(ctx context.Context, userID string) (*domain.LearnerDashboard, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	enrollments, err := uc.enrollmentRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	dashboard := &domain.LearnerDashboard{
		User:            user,
		TotalCourses:    len(enrollments),
		CurrentStreak:   user.CurrentStreak,
		EnrolledCourses: make([]domain.EnrolledCourseSummary, 0, len(enrollments)),
	}

	progressSum := 0
	for _, e := range enrollments {
		course, err := uc.courseRepo.GetByID(ctx, e.CourseID)
		if err != nil {
			// A deleted course should not break the whole dashboard.
			uc.logger.Warn("dashboard course lookup failed",
				zap.String("course_id", e.CourseID), zap.Error(err))
			continue
		}

		modules, err := uc.moduleRepo.GetByCourseID(ctx, e.CourseID)
		if err != nil {
			return nil, err
		}

		totalVideos := 0
		for _, m := range modules {
			totalVideos += len(m.Videos)
		}
		watched := 0
		for _, mp := range e.ModulesProgress {
			watched += len(mp.VideosWatched)
		}
		progress := progressPercentage(watched, totalVideos)
		// Completion is derived, never stored: every video watched.
		completed := totalVideos > 0 && progress == 100

		summary := domain.EnrolledCourseSummary{
			CourseID:       course.ID,
			Name:           course.Name,
			Thumbnail:      course.Thumbnail,
			InstructorName: course.InstructorName,
			Duration:       course.Duration,
			Progress:       progress,
			TimeSpent:      e.TimeSpent,
			LastAccess:     e.LastAccess,
			EnrolledDate:   e.EnrolledDate,
			Completed:      completed,
		}

		eligibility, err := uc.certificateCase.Eligibility(ctx, userID, e.CourseID)
		if err != nil {
			uc.logger.Warn("dashboard eligibility check failed",
				zap.String("course_id", e.CourseID), zap.Error(err))
		} else if eligibility.Eligible {
			summary.CertificateID = eligibility.CertificateID
		}

		dashboard.EnrolledCourses = append(dashboard.EnrolledCourses, summary)
		dashboard.TotalTimeSpent += e.TimeSpent
		progressSum += progress
		if completed {
			dashboard.CompletedCourses++
		}
	}

	if len(dashboard.EnrolledCourses) > 0 {
		dashboard.AverageProgress = int(math.Round(float64(progressSum) / float64(len(dashboard.EnrolledCourses))))
	}
	return dashboard, nil
}

func (uc *dashboardUsecase) GetInstructorDashboard(ctx context.Context, instructorID string) (*domain.InstructorDashboard, error) {
	courses, err := uc.courseRepo.GetByInstructorID(ctx, instructorID)
	if err != nil {
		return nil, err
	}

	dashboard := &domain.InstructorDashboard{
		TotalCourses: len(courses),
		Courses:      make([]domain.CourseStatSummary, 0, len(courses)),
	}

	ratingSum := 0.0
	rated := 0
	for _, course := range courses {
		revenue := float64(course.StudentsEnrolled) * course.Price

		avg := 0.0
		feedback, err := uc.feedbackRepo.GetByCourseID(ctx, course.ID)
		if err != nil {
			uc.logger.Warn("dashboard feedback read failed",
				zap.String("course_id", course.ID), zap.Error(err))
		} else if len(feedback) > 0 {
			avg, _ = ratingStats(feedback)
			ratingSum += avg
			rated++
		}

		dashboard.Courses = append(dashboard.Courses, domain.CourseStatSummary{
			CourseID:         course.ID,
			Name:             course.Name,
			Thumbnail:        course.Thumbnail,
			Price:            course.Price,
			StudentsEnrolled: course.StudentsEnrolled,
			Revenue:          revenue,
			AverageRating:    avg,
		})
		dashboard.TotalStudents += course.StudentsEnrolled
		dashboard.TotalRevenue += revenue
	}

	if rated > 0 {
		dashboard.AverageRating = math.Round(ratingSum/float64(rated)*10) / 10
	}
	return dashboard, nil
}
