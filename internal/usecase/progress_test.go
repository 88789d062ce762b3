package usecase

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"skillforge-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newProgressFixture(t *testing.T) (domain.ProgressUsecase, *fakeEnrollmentRepo, *fakeModuleRepo, *fakeEventRepo) {
	t.Helper()
	enrollments := newFakeEnrollmentRepo()
	modules := newFakeModuleRepo()
	events := &fakeEventRepo{}
	courses := newFakeCourseRepo()
	gate := NewAccessGate(enrollments, courses)
	uc := NewProgressUsecase(gate, enrollments, modules, events, zap.NewNop())
	return uc, enrollments, modules, events
}

func enroll(t *testing.T, repo *fakeEnrollmentRepo, userID, courseID string) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &domain.Enrollment{
		UserID:       userID,
		CourseID:     courseID,
		EnrolledDate: time.Now().UTC(),
	}))
}

func TestMarkVideoWatchedIdempotent(t *testing.T) {
	uc, enrollments, _, events := newProgressFixture(t)
	enroll(t, enrollments, "learner-1", "course-1")

	ctx := context.Background()
	require.NoError(t, uc.MarkVideoWatched(ctx, "learner-1", "course-1", 0, 2))
	require.NoError(t, uc.MarkVideoWatched(ctx, "learner-1", "course-1", 0, 2))

	e, err := enrollments.GetByUserAndCourse(ctx, "learner-1", "course-1")
	require.NoError(t, err)
	require.Len(t, e.ModulesProgress, 1)
	assert.Equal(t, []int{2}, e.ModulesProgress[0].VideosWatched)

	// The watched-set dedupes, the event log does not.
	assert.Len(t, events.events, 2)
}

func TestMarkVideoWatchedNotEnrolled(t *testing.T) {
	uc, _, _, events := newProgressFixture(t)

	err := uc.MarkVideoWatched(context.Background(), "stranger", "course-1", 0, 0)
	require.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, events.events)
}

func TestMarkVideoWatchedRejectsNegativeIndices(t *testing.T) {
	uc, enrollments, _, _ := newProgressFixture(t)
	enroll(t, enrollments, "learner-1", "course-1")

	err := uc.MarkVideoWatched(context.Background(), "learner-1", "course-1", -1, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	err = uc.MarkVideoWatched(context.Background(), "learner-1", "course-1", 0, -3)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestMarkVideoWatchedConcurrentDistinctVideos(t *testing.T) {
	uc, enrollments, _, events := newProgressFixture(t)
	enroll(t, enrollments, "learner-1", "course-1")

	const n = 32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(video int) {
			defer wg.Done()
			assert.NoError(t, uc.MarkVideoWatched(context.Background(), "learner-1", "course-1", 0, video))
		}(i)
	}
	wg.Wait()

	e, err := enrollments.GetByUserAndCourse(context.Background(), "learner-1", "course-1")
	require.NoError(t, err)
	require.Len(t, e.ModulesProgress, 1)
	assert.Len(t, e.ModulesProgress[0].VideosWatched, n)
	assert.Len(t, events.events, n)
}

func TestMarkVideoWatchedEventCarriesIdentity(t *testing.T) {
	uc, enrollments, _, events := newProgressFixture(t)
	enroll(t, enrollments, "learner-1", "course-1")

	require.NoError(t, uc.MarkVideoWatched(context.Background(), "learner-1", "course-1", 3, 7))

	require.Len(t, events.events, 1)
	ev := events.events[0]
	assert.Equal(t, "learner-1", ev.UserID)
	assert.Equal(t, "course-1", ev.CourseID)
	assert.Equal(t, 3, ev.ModuleIndex)
	assert.Equal(t, 7, ev.VideoIndex)
	assert.False(t, ev.WatchedAt.IsZero())
}

func TestMarkQuizCompletedIdempotent(t *testing.T) {
	uc, enrollments, _, events := newProgressFixture(t)
	enroll(t, enrollments, "learner-1", "course-1")

	ctx := context.Background()
	require.NoError(t, uc.MarkQuizCompleted(ctx, "learner-1", "course-1", 1, 0))
	require.NoError(t, uc.MarkQuizCompleted(ctx, "learner-1", "course-1", 1, 0))

	e, err := enrollments.GetByUserAndCourse(ctx, "learner-1", "course-1")
	require.NoError(t, err)
	require.Len(t, e.QuizzesProgress, 1)
	assert.Equal(t, []int{0}, e.QuizzesProgress[0].QuizzesCompleted)

	// Quizzes produce no watch events.
	assert.Empty(t, events.events)
}

func TestGetProgressPercentage(t *testing.T) {
	uc, enrollments, modules, _ := newProgressFixture(t)
	enroll(t, enrollments, "learner-1", "course-1")

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		require.NoError(t, modules.Create(ctx, &domain.CourseModule{
			CourseID: "course-1",
			Index:    i,
			Videos:   []domain.Video{{URL: "a"}, {URL: "b"}},
		}))
	}

	require.NoError(t, uc.MarkVideoWatched(ctx, "learner-1", "course-1", 0, 0))
	require.NoError(t, uc.MarkVideoWatched(ctx, "learner-1", "course-1", 0, 1))
	require.NoError(t, uc.MarkVideoWatched(ctx, "learner-1", "course-1", 1, 0))

	progress, err := uc.GetProgress(ctx, "learner-1", "course-1")
	require.NoError(t, err)
	assert.Equal(t, 75, progress.ProgressPercentage)
}

func TestGetProgressMonotonic(t *testing.T) {
	uc, enrollments, modules, _ := newProgressFixture(t)
	enroll(t, enrollments, "learner-1", "course-1")

	ctx := context.Background()
	require.NoError(t, modules.Create(ctx, &domain.CourseModule{
		CourseID: "course-1",
		Index:    0,
		Videos:   []domain.Video{{URL: "a"}, {URL: "b"}, {URL: "c"}, {URL: "d"}},
	}))

	previous := 0
	for _, video := range []int{2, 2, 0, 3, 0, 1} {
		require.NoError(t, uc.MarkVideoWatched(ctx, "learner-1", "course-1", 0, video))
		progress, err := uc.GetProgress(ctx, "learner-1", "course-1")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, progress.ProgressPercentage, previous)
		previous = progress.ProgressPercentage
	}
	assert.Equal(t, 100, previous)
}

func TestGetProgressNoVideos(t *testing.T) {
	uc, enrollments, _, _ := newProgressFixture(t)
	enroll(t, enrollments, "learner-1", "course-1")

	progress, err := uc.GetProgress(context.Background(), "learner-1", "course-1")
	require.NoError(t, err)
	assert.Equal(t, 0, progress.ProgressPercentage)
}

func TestProgressPercentageClampsStaleIndices(t *testing.T) {
	assert.Equal(t, 100, progressPercentage(5, 4))
	assert.Equal(t, 100, progressPercentage(4, 4))
	assert.Equal(t, 50, progressPercentage(2, 4))
	assert.Equal(t, 33, progressPercentage(1, 3))
	assert.Equal(t, 0, progressPercentage(0, 0))
}

func TestAddTimeSpentAccumulates(t *testing.T) {
	uc, enrollments, _, _ := newProgressFixture(t)
	enroll(t, enrollments, "learner-1", "course-1")

	ctx := context.Background()
	require.NoError(t, uc.AddTimeSpent(ctx, "learner-1", "course-1", 10.5))
	require.NoError(t, uc.AddTimeSpent(ctx, "learner-1", "course-1", 4.5))

	e, err := enrollments.GetByUserAndCourse(ctx, "learner-1", "course-1")
	require.NoError(t, err)
	assert.InDelta(t, 15.0, e.TimeSpent, 1e-9)
}

func TestAddTimeSpentRejectsInvalid(t *testing.T) {
	uc, enrollments, _, _ := newProgressFixture(t)
	enroll(t, enrollments, "learner-1", "course-1")

	for _, minutes := range []float64{-1, math.NaN(), math.Inf(1)} {
		err := uc.AddTimeSpent(context.Background(), "learner-1", "course-1", minutes)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument, fmt.Sprintf("minutes=%v", minutes))
	}
}
