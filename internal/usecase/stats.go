package usecase

import (
	"context"

	"skillforge-backend/internal/domain"

	"go.uber.org/zap"
)

// statsUsecase recomputes the denormalized rating and revenue columns on
// courses. It runs on a schedule; a failure on one course does not stop the
// sweep.
type statsUsecase struct {
	courseRepo   domain.CourseRepository
	feedbackRepo domain.FeedbackRepository
	logger       *zap.Logger
}

func NewStatsUsecase(cr domain.CourseRepository, fr domain.FeedbackRepository, logger *zap.Logger) domain.StatsUsecase {
	return &statsUsecase{courseRepo: cr, feedbackRepo: fr, logger: logger}
}

func (uc *statsUsecase) RefreshCourseStats(ctx context.Context) error {
	courses, err := uc.courseRepo.GetActive(ctx)
	if err != nil {
		return err
	}

	refreshed := 0
	for _, course := range courses {
		rating := course.Rating
		feedback, err := uc.feedbackRepo.GetByCourseID(ctx, course.ID)
		if err != nil {
			uc.logger.Warn("stats feedback read failed",
				zap.String("course_id", course.ID), zap.Error(err))
			continue
		}
		if len(feedback) > 0 {
			rating, _ = ratingStats(feedback)
		}

		revenue := float64(course.StudentsEnrolled) * course.Price
		if err := uc.courseRepo.UpdateStats(ctx, course.ID, rating, revenue); err != nil {
			uc.logger.Warn("stats update failed",
				zap.String("course_id", course.ID), zap.Error(err))
			continue
		}
		refreshed++
	}

	uc.logger.Info("course stats refreshed",
		zap.Int("courses", len(courses)),
		zap.Int("refreshed", refreshed))
	return nil
}
