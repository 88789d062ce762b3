package usecase

import (
	"context"
	"testing"
	"time"

	"skillforge-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAnalyticsFixture(t *testing.T) (domain.AnalyticsUsecase, *fakeCourseRepo, *fakeFeedbackRepo, *fakeEventRepo, *fakeEnrollmentRepo) {
	t.Helper()
	courses := newFakeCourseRepo()
	feedback := newFakeFeedbackRepo()
	events := &fakeEventRepo{}
	enrollments := newFakeEnrollmentRepo()
	gate := NewAccessGate(enrollments, courses)
	uc := NewAnalyticsUsecase(gate, courses, feedback, events, nil, zap.NewNop())
	return uc, courses, feedback, events, enrollments
}

func seedCourse(t *testing.T, courses *fakeCourseRepo) domain.Actor {
	t.Helper()
	require.NoError(t, courses.Create(context.Background(), &domain.Course{
		ID:               "course-1",
		Name:             "Intro to Distributed Systems",
		InstructorID:     "teach-1",
		Price:            50,
		StudentsEnrolled: 4,
		IsActive:         true,
	}))
	return domain.Actor{ID: "teach-1", Role: domain.RoleInstructor}
}

func TestCourseAnalyticsOwnership(t *testing.T) {
	uc, courses, _, _, _ := newAnalyticsFixture(t)
	owner := seedCourse(t, courses)
	ctx := context.Background()

	_, err := uc.CourseAnalytics(ctx, domain.Actor{ID: "teach-2", Role: domain.RoleInstructor}, "course-1")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.CourseAnalytics(ctx, owner, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	view, err := uc.CourseAnalytics(ctx, owner, "course-1")
	require.NoError(t, err)
	assert.Equal(t, "course-1", view.CourseID)
}

func TestCourseAnalyticsRatings(t *testing.T) {
	uc, courses, feedback, _, _ := newAnalyticsFixture(t)
	owner := seedCourse(t, courses)
	ctx := context.Background()

	for i, rating := range []int{5, 5, 4, 3} {
		require.NoError(t, feedback.Upsert(ctx, &domain.Feedback{
			CourseID: "course-1",
			UserID:   string(rune('a' + i)),
			Rating:   rating,
			Review:   "detailed enough review",
		}))
	}

	view, err := uc.CourseAnalytics(ctx, owner, "course-1")
	require.NoError(t, err)

	assert.Equal(t, 4, view.TotalFeedback)
	assert.InDelta(t, 4.3, view.AverageRating, 1e-9)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 1, 4: 1, 5: 2}, view.RatingDistribution)
	assert.InDelta(t, 200.0, view.TotalRevenue, 1e-9)
	assert.Equal(t, 4, view.TotalStudents)
}

func TestCourseAnalyticsWeeklyEngagement(t *testing.T) {
	uc, courses, _, events, _ := newAnalyticsFixture(t)
	owner := seedCourse(t, courses)
	ctx := context.Background()

	// Three views in ISO week 1 of 2025 from two distinct learners, one view
	// in the last ISO week of 2024.
	stamp := func(s string) time.Time {
		ts, err := time.Parse(time.RFC3339, s)
		require.NoError(t, err)
		return ts
	}
	for _, ev := range []domain.WatchEvent{
		{UserID: "u1", CourseID: "course-1", WatchedAt: stamp("2024-12-25T10:00:00Z")},
		{UserID: "u1", CourseID: "course-1", WatchedAt: stamp("2025-01-01T09:00:00Z")},
		{UserID: "u1", CourseID: "course-1", WatchedAt: stamp("2025-01-02T14:00:00Z")},
		{UserID: "u2", CourseID: "course-1", WatchedAt: stamp("2025-01-03T14:30:00Z")},
	} {
		e := ev
		require.NoError(t, events.Append(ctx, &e))
	}

	view, err := uc.CourseAnalytics(ctx, owner, "course-1")
	require.NoError(t, err)

	require.Len(t, view.UserEngagement, 2)
	assert.Equal(t, 2024, view.UserEngagement[0].Year)
	assert.Equal(t, 52, view.UserEngagement[0].Week)
	assert.Equal(t, 1, view.UserEngagement[0].Students)
	assert.Equal(t, 1, view.UserEngagement[0].Views)

	assert.Equal(t, 2025, view.UserEngagement[1].Year)
	assert.Equal(t, 1, view.UserEngagement[1].Week)
	assert.Equal(t, "Week 1, 2025", view.UserEngagement[1].Label)
	assert.Equal(t, 2, view.UserEngagement[1].Students)
	assert.Equal(t, 3, view.UserEngagement[1].Views)
}

func TestCourseAnalyticsPeakHours(t *testing.T) {
	uc, courses, _, events, _ := newAnalyticsFixture(t)
	owner := seedCourse(t, courses)
	ctx := context.Background()

	base := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	for _, hour := range []int{14, 14, 9} {
		require.NoError(t, events.Append(ctx, &domain.WatchEvent{
			UserID:    "u1",
			CourseID:  "course-1",
			WatchedAt: base.Add(time.Duration(hour) * time.Hour),
		}))
	}

	view, err := uc.CourseAnalytics(ctx, owner, "course-1")
	require.NoError(t, err)

	require.Len(t, view.PeakWatchTimes, 2)
	assert.Equal(t, domain.PeakWatchHour{Hour: 9, Views: 1}, view.PeakWatchTimes[0])
	assert.Equal(t, domain.PeakWatchHour{Hour: 14, Views: 2}, view.PeakWatchTimes[1])
}

// A failing event log degrades the engagement sections, not the whole view.
func TestCourseAnalyticsEventLogFailure(t *testing.T) {
	uc, courses, feedback, events, _ := newAnalyticsFixture(t)
	owner := seedCourse(t, courses)
	ctx := context.Background()
	events.failGet = errStoreDown

	require.NoError(t, feedback.Upsert(ctx, &domain.Feedback{
		CourseID: "course-1", UserID: "u1", Rating: 4, Review: "worth the price",
	}))

	view, err := uc.CourseAnalytics(ctx, owner, "course-1")
	require.NoError(t, err)
	assert.Nil(t, view.UserEngagement)
	assert.Nil(t, view.PeakWatchTimes)
	assert.Equal(t, 1, view.TotalFeedback)
}

// Ratings outside 1..5 stay out of both the mean and the histogram.
func TestRatingStatsIgnoresOutOfRange(t *testing.T) {
	avg, dist := ratingStats([]domain.Feedback{
		{Rating: 5}, {Rating: 3}, {Rating: 0}, {Rating: 9},
	})
	assert.InDelta(t, 4.0, avg, 1e-9)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 1, 4: 0, 5: 1}, dist)

	avg, dist = ratingStats([]domain.Feedback{{Rating: -2}})
	assert.Zero(t, avg)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}, dist)
}

func TestCourseAnalyticsNoFeedback(t *testing.T) {
	uc, courses, _, _, _ := newAnalyticsFixture(t)
	owner := seedCourse(t, courses)

	view, err := uc.CourseAnalytics(context.Background(), owner, "course-1")
	require.NoError(t, err)
	assert.Zero(t, view.AverageRating)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}, view.RatingDistribution)
}
