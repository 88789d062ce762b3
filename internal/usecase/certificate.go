package usecase

import (
	"context"
	"errors"
	"fmt"

	"skillforge-backend/internal/domain"
)

// certificatePrefix tags every certificate id issued by the platform.
const certificatePrefix = "SF"

type certificateUsecase struct {
	enrollmentRepo domain.EnrollmentRepository
	feedbackRepo   domain.FeedbackRepository
	courseRepo     domain.CourseRepository
}

// NewCertificateUsecase builds the eligibility evaluator. Policy: a learner
// is eligible once enrolled with feedback submitted; full completion is not
// required.
func NewCertificateUsecase(
	er domain.EnrollmentRepository,
	fr domain.FeedbackRepository,
	cr domain.CourseRepository,
) domain.CertificateUsecase {
	return &certificateUsecase{
		enrollmentRepo: er,
		feedbackRepo:   fr,
		courseRepo:     cr,
	}
}

func (uc *certificateUsecase) Eligibility(ctx context.Context, learnerID, courseID string) (*domain.CertificateEligibility, error) {
	if _, err := uc.courseRepo.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("loading course: %w", err)
	}

	enrolled, err := uc.enrollmentRepo.Exists(ctx, learnerID, courseID)
	if err != nil {
		return nil, fmt.Errorf("checking enrollment: %w", err)
	}
	if !enrolled {
		return &domain.CertificateEligibility{Eligible: false}, nil
	}

	hasFeedback, err := uc.feedbackRepo.Exists(ctx, learnerID, courseID)
	if err != nil {
		return nil, fmt.Errorf("checking feedback: %w", err)
	}
	if !hasFeedback {
		return &domain.CertificateEligibility{Eligible: false}, nil
	}

	return &domain.CertificateEligibility{
		Eligible:      true,
		CertificateID: CertificateID(courseID, learnerID),
	}, nil
}

// CertificateID derives the stable, human-readable certificate identifier
// for a (course, learner) pair. No randomness: re-downloading a certificate
// always yields the same id.
func CertificateID(courseID, learnerID string) string {
	return fmt.Sprintf("%s-%s-%s", certificatePrefix, idSuffix(courseID), idSuffix(learnerID))
}

func idSuffix(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}
