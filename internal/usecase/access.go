package usecase

import (
	"context"
	"errors"
	"fmt"

	"skillforge-backend/internal/domain"
)

type accessGate struct {
	enrollmentRepo domain.EnrollmentRepository
	courseRepo     domain.CourseRepository
}

// NewAccessGate builds the authorization predicate for protected course
// resources. The gate is side-effect-free and holds no state between calls,
// so enrollment and ownership changes take effect on the next request.
func NewAccessGate(
	er domain.EnrollmentRepository,
	cr domain.CourseRepository,
) domain.AccessGate {
	return &accessGate{
		enrollmentRepo: er,
		courseRepo:     cr,
	}
}

func (g *accessGate) Authorize(ctx context.Context, actor domain.Actor, courseID string) (domain.Decision, error) {
	switch actor.Role {
	case domain.RoleStudent:
		enrolled, err := g.enrollmentRepo.Exists(ctx, actor.ID, courseID)
		if err != nil {
			return domain.Decision{}, fmt.Errorf("checking enrollment: %w", err)
		}
		if !enrolled {
			return domain.Decision{Granted: false, Reason: "course not enrolled"}, nil
		}
		return domain.Decision{Granted: true}, nil

	case domain.RoleInstructor:
		course, err := g.courseRepo.GetByID(ctx, courseID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.Decision{Granted: false, Reason: "course not found"}, nil
			}
			return domain.Decision{}, fmt.Errorf("loading course: %w", err)
		}
		if course.InstructorID != actor.ID {
			return domain.Decision{Granted: false, Reason: "course does not belong to instructor"}, nil
		}
		return domain.Decision{Granted: true}, nil

	default:
		return domain.Decision{Granted: false, Reason: fmt.Sprintf("unknown role %q", actor.Role)}, nil
	}
}
