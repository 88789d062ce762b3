package domain

import (
	"context"
	"time"
)

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdateStreak(ctx context.Context, userID string, current, longest int, lastLogin time.Time) error
}

type CourseRepository interface {
	Create(ctx context.Context, course *Course) error
	GetActive(ctx context.Context) ([]Course, error)
	GetByID(ctx context.Context, id string) (*Course, error)
	GetByInstructorID(ctx context.Context, instructorID string) ([]Course, error)
	IncrementEnrolled(ctx context.Context, courseID string) error
	UpdateStats(ctx context.Context, courseID string, rating, revenue float64) error
}

type CourseModuleRepository interface { // MongoDB
	Create(ctx context.Context, module *CourseModule) error
	GetByCourseID(ctx context.Context, courseID string) ([]CourseModule, error)
}

// EnrollmentRepository is the Enrollment Record Store. All mutations must be
// atomic per (user, course) document so that concurrent writers for the same
// key never lose updates; mutations for different keys are independent.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *Enrollment) error
	GetByUserAndCourse(ctx context.Context, userID, courseID string) (*Enrollment, error)
	GetByUserID(ctx context.Context, userID string) ([]Enrollment, error)
	Exists(ctx context.Context, userID, courseID string) (bool, error)
	// AddVideoWatched inserts videoIndex into the module's watched-set,
	// creating the module entry if absent, and bumps last_access.
	AddVideoWatched(ctx context.Context, userID, courseID string, moduleIndex, videoIndex int, now time.Time) error
	AddQuizCompleted(ctx context.Context, userID, courseID string, moduleIndex, quizIndex int, now time.Time) error
	// AddTimeSpent is an accumulator ($inc), never last-write-wins.
	AddTimeSpent(ctx context.Context, userID, courseID string, minutes float64, now time.Time) error
}

// WatchEventRepository is the append-only Event Log.
type WatchEventRepository interface {
	Append(ctx context.Context, event *WatchEvent) error
	GetByCourseID(ctx context.Context, courseID string) ([]WatchEvent, error)
}

type FeedbackRepository interface {
	Upsert(ctx context.Context, feedback *Feedback) error
	GetByCourseID(ctx context.Context, courseID string) ([]Feedback, error)
	Exists(ctx context.Context, userID, courseID string) (bool, error)
}

// AnalyticsCache holds computed analytics views for a short TTL. A miss or a
// cache error is never fatal; implementations return ok=false instead.
type AnalyticsCache interface {
	Get(ctx context.Context, courseID string) (*AnalyticsView, bool)
	Set(ctx context.Context, courseID string, view *AnalyticsView)
}

type AuthUsecase interface {
	Register(ctx context.Context, user *User) error
	Login(ctx context.Context, email, password string) (string, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
}

type CourseUsecase interface {
	CreateCourse(ctx context.Context, course *Course, modules []CourseModule) error
	GetAllCourses(ctx context.Context) ([]Course, error)
	GetCourseDetails(ctx context.Context, courseID string, userID *string) (*CourseDetail, error)
	Enroll(ctx context.Context, userID, courseID string) error
	GetEnrollment(ctx context.Context, userID, courseID string) (*Enrollment, error)
	IsEnrolled(ctx context.Context, userID, courseID string) (bool, error)
}

// AccessGate is the authorization predicate consulted before any protected
// operation. It is pure and must be re-evaluated on every call; grants are
// never cached across requests.
type AccessGate interface {
	Authorize(ctx context.Context, actor Actor, courseID string) (Decision, error)
}

type ProgressUsecase interface {
	MarkVideoWatched(ctx context.Context, learnerID, courseID string, moduleIndex, videoIndex int) error
	MarkQuizCompleted(ctx context.Context, learnerID, courseID string, moduleIndex, quizIndex int) error
	GetProgress(ctx context.Context, learnerID, courseID string) (*CourseProgress, error)
	AddTimeSpent(ctx context.Context, learnerID, courseID string, minutes float64) error
}

type CertificateUsecase interface {
	Eligibility(ctx context.Context, learnerID, courseID string) (*CertificateEligibility, error)
}

type FeedbackUsecase interface {
	Submit(ctx context.Context, userID, courseID string, rating int, review string) (*Feedback, error)
	GetCourseFeedback(ctx context.Context, courseID string) ([]Feedback, error)
}

type AnalyticsUsecase interface {
	CourseAnalytics(ctx context.Context, actor Actor, courseID string) (*AnalyticsView, error)
}

type DashboardUsecase interface {
	GetLearnerDashboard(ctx context.Context, userID string) (*LearnerDashboard, error)
	GetInstructorDashboard(ctx context.Context, instructorID string) (*InstructorDashboard, error)
}

// StatsUsecase recomputes the denormalized course rating/revenue snapshots.
type StatsUsecase interface {
	RefreshCourseStats(ctx context.Context) error
}
