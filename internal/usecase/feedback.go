package usecase

import (
	"context"
	"fmt"
	"strings"

	"skillforge-backend/internal/domain"
)

const minReviewLength = 10

type feedbackUsecase struct {
	gate         domain.AccessGate
	feedbackRepo domain.FeedbackRepository
}

func NewFeedbackUsecase(gate domain.AccessGate, fr domain.FeedbackRepository) domain.FeedbackUsecase {
	return &feedbackUsecase{gate: gate, feedbackRepo: fr}
}

func (uc *feedbackUsecase) Submit(ctx context.Context, userID, courseID string, rating int, review string) (*domain.Feedback, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5: %w", domain.ErrInvalidArgument)
	}
	review = strings.TrimSpace(review)
	if len(review) < minReviewLength {
		return nil, fmt.Errorf("review must be at least %d characters: %w", minReviewLength, domain.ErrInvalidArgument)
	}

	decision, err := uc.gate.Authorize(ctx, domain.Actor{ID: userID, Role: domain.RoleStudent}, courseID)
	if err != nil {
		return nil, err
	}
	if !decision.Granted {
		return nil, fmt.Errorf("%s: %w", decision.Reason, domain.ErrForbidden)
	}

	feedback := &domain.Feedback{
		CourseID: courseID,
		UserID:   userID,
		Rating:   rating,
		Review:   review,
	}
	// One review per learner per course; resubmitting replaces in place.
	if err := uc.feedbackRepo.Upsert(ctx, feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

func (uc *feedbackUsecase) GetCourseFeedback(ctx context.Context, courseID string) ([]domain.Feedback, error) {
	return uc.feedbackRepo.GetByCourseID(ctx, courseID)
}
