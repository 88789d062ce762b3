package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"skillforge-backend/internal/domain"

	"go.uber.org/zap"
)

type progressUsecase struct {
	gate           domain.AccessGate
	enrollmentRepo domain.EnrollmentRepository
	moduleRepo     domain.CourseModuleRepository
	eventRepo      domain.WatchEventRepository
	logger         *zap.Logger
}

// NewProgressUsecase builds the Progress Engine. All mutations go through
// the Enrollment Record Store's atomic operators; the engine itself holds
// no per-key locks.
func NewProgressUsecase(
	gate domain.AccessGate,
	er domain.EnrollmentRepository,
	mr domain.CourseModuleRepository,
	wr domain.WatchEventRepository,
	logger *zap.Logger,
) domain.ProgressUsecase {
	return &progressUsecase{
		gate:           gate,
		enrollmentRepo: er,
		moduleRepo:     mr,
		eventRepo:      wr,
		logger:         logger,
	}
}

func (uc *progressUsecase) authorize(ctx context.Context, learnerID, courseID string) error {
	decision, err := uc.gate.Authorize(ctx, domain.Actor{ID: learnerID, Role: domain.RoleStudent}, courseID)
	if err != nil {
		return err
	}
	if !decision.Granted {
		uc.logger.Info("progress access denied",
			zap.String("learner_id", learnerID),
			zap.String("course_id", courseID),
			zap.String("reason", decision.Reason))
		return fmt.Errorf("%s: %w", decision.Reason, domain.ErrForbidden)
	}
	return nil
}

func (uc *progressUsecase) MarkVideoWatched(ctx context.Context, learnerID, courseID string, moduleIndex, videoIndex int) error {
	if moduleIndex < 0 || videoIndex < 0 {
		return fmt.Errorf("module and video indices must be non-negative: %w", domain.ErrInvalidArgument)
	}
	if err := uc.authorize(ctx, learnerID, courseID); err != nil {
		return err
	}

	now := time.Now().UTC()
	// Enrollment first, event append last: a failure in between loses only
	// analytics completeness, never progress.
	if err := uc.enrollmentRepo.AddVideoWatched(ctx, learnerID, courseID, moduleIndex, videoIndex, now); err != nil {
		return err
	}

	// One event per call, even when the set-insert was a no-op: repeat views
	// are real signal for the analytics side.
	return uc.eventRepo.Append(ctx, &domain.WatchEvent{
		UserID:      learnerID,
		CourseID:    courseID,
		ModuleIndex: moduleIndex,
		VideoIndex:  videoIndex,
		WatchedAt:   now,
	})
}

func (uc *progressUsecase) MarkQuizCompleted(ctx context.Context, learnerID, courseID string, moduleIndex, quizIndex int) error {
	if moduleIndex < 0 || quizIndex < 0 {
		return fmt.Errorf("module and quiz indices must be non-negative: %w", domain.ErrInvalidArgument)
	}
	if err := uc.authorize(ctx, learnerID, courseID); err != nil {
		return err
	}

	return uc.enrollmentRepo.AddQuizCompleted(ctx, learnerID, courseID, moduleIndex, quizIndex, time.Now().UTC())
}

func (uc *progressUsecase) GetProgress(ctx context.Context, learnerID, courseID string) (*domain.CourseProgress, error) {
	if err := uc.authorize(ctx, learnerID, courseID); err != nil {
		return nil, err
	}

	enrollment, err := uc.enrollmentRepo.GetByUserAndCourse(ctx, learnerID, courseID)
	if err != nil {
		return nil, err
	}

	modules, err := uc.moduleRepo.GetByCourseID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	totalVideos := 0
	for _, m := range modules {
		totalVideos += len(m.Videos)
	}

	watched := 0
	for _, mp := range enrollment.ModulesProgress {
		watched += len(mp.VideosWatched)
	}

	return &domain.CourseProgress{
		ModulesProgress:    enrollment.ModulesProgress,
		QuizzesProgress:    enrollment.QuizzesProgress,
		ProgressPercentage: progressPercentage(watched, totalVideos),
	}, nil
}

// progressPercentage is round(100 * watched / total), 0 when the course has
// no videos, clamped to 100 for enrollments holding stale indices from a
// since-edited course.
func progressPercentage(watched, totalVideos int) int {
	if totalVideos == 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(watched) / float64(totalVideos)))
	if pct > 100 {
		pct = 100
	}
	return pct
}

func (uc *progressUsecase) AddTimeSpent(ctx context.Context, learnerID, courseID string, minutes float64) error {
	if minutes < 0 || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return fmt.Errorf("minutes must be a non-negative number: %w", domain.ErrInvalidArgument)
	}
	if err := uc.authorize(ctx, learnerID, courseID); err != nil {
		return err
	}

	return uc.enrollmentRepo.AddTimeSpent(ctx, learnerID, courseID, minutes, time.Now().UTC())
}
