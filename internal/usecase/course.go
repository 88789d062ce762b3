package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skillforge-backend/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type courseUsecase struct {
	courseRepo     domain.CourseRepository
	moduleRepo     domain.CourseModuleRepository
	enrollmentRepo domain.EnrollmentRepository
	userRepo       domain.UserRepository
	logger         *zap.Logger
}

func NewCourseUsecase(
	cr domain.CourseRepository,
	mr domain.CourseModuleRepository,
	er domain.EnrollmentRepository,
	ur domain.UserRepository,
	logger *zap.Logger,
) domain.CourseUsecase {
	return &courseUsecase{
		courseRepo:     cr,
		moduleRepo:     mr,
		enrollmentRepo: er,
		userRepo:       ur,
		logger:         logger,
	}
}

func (uc *courseUsecase) CreateCourse(ctx context.Context, course *domain.Course, modules []domain.CourseModule) error {
	if course.Name == "" || course.Price < 0 {
		return fmt.Errorf("course needs a name and a non-negative price: %w", domain.ErrInvalidArgument)
	}

	instructor, err := uc.userRepo.GetByID(ctx, course.InstructorID)
	if err != nil {
		return err
	}

	course.ID = uuid.NewString()
	course.InstructorName = instructor.Name
	course.IsActive = true
	if err := uc.courseRepo.Create(ctx, course); err != nil {
		return err
	}

	now := time.Now().UTC()
	for i := range modules {
		modules[i].CourseID = course.ID
		modules[i].Index = i
		modules[i].CreatedAt = now
		if err := uc.moduleRepo.Create(ctx, &modules[i]); err != nil {
			return fmt.Errorf("creating module %d: %w", i, err)
		}
	}

	uc.logger.Info("course created",
		zap.String("course_id", course.ID),
		zap.String("instructor_id", course.InstructorID),
		zap.Int("modules", len(modules)))
	return nil
}

func (uc *courseUsecase) GetAllCourses(ctx context.Context) ([]domain.Course, error) {
	return uc.courseRepo.GetActive(ctx)
}

func (uc *courseUsecase) GetCourseDetails(ctx context.Context, courseID string, userID *string) (*domain.CourseDetail, error) {
	course, err := uc.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	modules, err := uc.moduleRepo.GetByCourseID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	detail := &domain.CourseDetail{Course: *course, Modules: modules}
	if userID != nil {
		enrolled, err := uc.enrollmentRepo.Exists(ctx, *userID, courseID)
		if err != nil {
			return nil, err
		}
		detail.IsEnrolled = enrolled
	}
	return detail, nil
}

func (uc *courseUsecase) Enroll(ctx context.Context, userID, courseID string) error {
	course, err := uc.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	if !course.IsActive {
		return fmt.Errorf("course %s is not open for enrollment: %w", courseID, domain.ErrForbidden)
	}

	now := time.Now().UTC()
	enrollment := &domain.Enrollment{
		UserID:       userID,
		CourseID:     courseID,
		EnrolledDate: now,
		LastAccess:   now,
	}
	// The unique (user, course) index makes double enrollment a conflict
	// rather than a duplicate record.
	if err := uc.enrollmentRepo.Create(ctx, enrollment); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return fmt.Errorf("already enrolled in course %s: %w", courseID, domain.ErrConflict)
		}
		return err
	}

	if err := uc.courseRepo.IncrementEnrolled(ctx, courseID); err != nil {
		uc.logger.Warn("enrollment counter increment failed",
			zap.String("course_id", courseID), zap.Error(err))
	}

	uc.logger.Info("learner enrolled",
		zap.String("user_id", userID),
		zap.String("course_id", courseID))
	return nil
}

func (uc *courseUsecase) GetEnrollment(ctx context.Context, userID, courseID string) (*domain.Enrollment, error) {
	return uc.enrollmentRepo.GetByUserAndCourse(ctx, userID, courseID)
}

func (uc *courseUsecase) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	return uc.enrollmentRepo.Exists(ctx, userID, courseID)
}
