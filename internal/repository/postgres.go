package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skillforge-backend/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ========== USER REPOSITORY ==========

type userRepo struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &userRepo{db}
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %q: %w", email, domain.ErrNotFound)
	}
	return &user, err
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return &user, err
}

func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepo) UpdateStreak(ctx context.Context, userID string, current, longest int, lastLogin time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"current_streak":  current,
			"longest_streak":  longest,
			"last_login_date": lastLogin,
		}).Error
}

// ========== COURSE REPOSITORY ==========

type courseRepo struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) domain.CourseRepository {
	return &courseRepo{db}
}

func (r *courseRepo) Create(ctx context.Context, course *domain.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepo) GetActive(ctx context.Context) ([]domain.Course, error) {
	var courses []domain.Course
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("created_at DESC").Find(&courses).Error
	return courses, err
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	var course domain.Course
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("course %s: %w", id, domain.ErrNotFound)
	}
	return &course, err
}

func (r *courseRepo) GetByInstructorID(ctx context.Context, instructorID string) ([]domain.Course, error) {
	var courses []domain.Course
	err := r.db.WithContext(ctx).Where("instructor_id = ?", instructorID).Find(&courses).Error
	return courses, err
}

func (r *courseRepo) IncrementEnrolled(ctx context.Context, courseID string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Course{}).
		Where("id = ?", courseID).
		Update("students_enrolled", gorm.Expr("students_enrolled + 1")).Error
}

func (r *courseRepo) UpdateStats(ctx context.Context, courseID string, rating, revenue float64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Course{}).
		Where("id = ?", courseID).
		Updates(map[string]interface{}{
			"rating":        rating,
			"total_revenue": revenue,
		}).Error
}

// ========== FEEDBACK REPOSITORY ==========

type feedbackRepo struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) domain.FeedbackRepository {
	return &feedbackRepo{db}
}

// Upsert keeps one feedback row per (course, user); a resubmit replaces the
// rating and review in place.
func (r *feedbackRepo) Upsert(ctx context.Context, feedback *domain.Feedback) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "course_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "review", "updated_at"}),
		}).
		Create(feedback).Error
}

func (r *feedbackRepo) GetByCourseID(ctx context.Context, courseID string) ([]domain.Feedback, error) {
	var feedback []domain.Feedback
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at DESC").
		Find(&feedback).Error
	return feedback, err
}

func (r *feedbackRepo) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Feedback{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}
