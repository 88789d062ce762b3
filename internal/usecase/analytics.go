package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"

	"skillforge-backend/internal/domain"

	"go.uber.org/zap"
)

type analyticsUsecase struct {
	gate         domain.AccessGate
	courseRepo   domain.CourseRepository
	feedbackRepo domain.FeedbackRepository
	eventRepo    domain.WatchEventRepository
	cache        domain.AnalyticsCache
	logger       *zap.Logger
}

// NewAnalyticsUsecase builds the instructor analytics view. cache may be nil;
// the usecase then computes every request from scratch.
func NewAnalyticsUsecase(
	gate domain.AccessGate,
	cr domain.CourseRepository,
	fr domain.FeedbackRepository,
	wr domain.WatchEventRepository,
	cache domain.AnalyticsCache,
	logger *zap.Logger,
) domain.AnalyticsUsecase {
	return &analyticsUsecase{
		gate:         gate,
		courseRepo:   cr,
		feedbackRepo: fr,
		eventRepo:    wr,
		cache:        cache,
		logger:       logger,
	}
}

func (uc *analyticsUsecase) CourseAnalytics(ctx context.Context, actor domain.Actor, courseID string) (*domain.AnalyticsView, error) {
	course, err := uc.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	// Ownership is checked before any aggregation work and is never cached.
	decision, err := uc.gate.Authorize(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}
	if !decision.Granted {
		uc.logger.Info("analytics access denied",
			zap.String("actor_id", actor.ID),
			zap.String("course_id", courseID),
			zap.String("reason", decision.Reason))
		return nil, fmt.Errorf("%s: %w", decision.Reason, domain.ErrForbidden)
	}

	if uc.cache != nil {
		if view, ok := uc.cache.Get(ctx, courseID); ok {
			return view, nil
		}
	}

	view := &domain.AnalyticsView{
		CourseID:      course.ID,
		CourseName:    course.Name,
		TotalStudents: course.StudentsEnrolled,
		TotalRevenue:  float64(course.StudentsEnrolled) * course.Price,
	}

	// Sub-aggregate reads degrade independently: a failing source is logged
	// and its section omitted, the rest of the view still renders.
	feedback, err := uc.feedbackRepo.GetByCourseID(ctx, courseID)
	if err != nil {
		uc.logger.Warn("analytics feedback read failed", zap.String("course_id", courseID), zap.Error(err))
	} else {
		view.TotalFeedback = len(feedback)
		view.AverageRating, view.RatingDistribution = ratingStats(feedback)
	}

	events, err := uc.eventRepo.GetByCourseID(ctx, courseID)
	if err != nil {
		uc.logger.Warn("analytics event read failed", zap.String("course_id", courseID), zap.Error(err))
	} else {
		view.UserEngagement = weeklyEngagement(events)
		view.PeakWatchTimes = peakWatchHours(events)
	}

	if uc.cache != nil {
		uc.cache.Set(ctx, courseID, view)
	}
	return view, nil
}

// ratingStats returns the average rating rounded to one decimal and a dense
// distribution with every key 1..5 present even at zero count. Ratings
// outside 1..5 count toward neither the mean nor the histogram.
func ratingStats(feedback []domain.Feedback) (float64, map[int]int) {
	dist := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}

	sum, counted := 0, 0
	for _, f := range feedback {
		if f.Rating < 1 || f.Rating > 5 {
			continue
		}
		sum += f.Rating
		counted++
		dist[f.Rating]++
	}
	if counted == 0 {
		return 0, dist
	}
	avg := math.Round(float64(sum)/float64(counted)*10) / 10
	return avg, dist
}

type weekKey struct {
	year int
	week int
}

// weeklyEngagement buckets the event log by ISO week (UTC). Buckets are
// sparse and sorted ascending; Students counts distinct learners per bucket.
func weeklyEngagement(events []domain.WatchEvent) []domain.WeeklyEngagement {
	if len(events) == 0 {
		return nil
	}

	views := make(map[weekKey]int)
	learners := make(map[weekKey]map[string]struct{})
	for _, ev := range events {
		year, week := ev.WatchedAt.UTC().ISOWeek()
		key := weekKey{year, week}
		views[key]++
		if learners[key] == nil {
			learners[key] = make(map[string]struct{})
		}
		learners[key][ev.UserID] = struct{}{}
	}

	buckets := make([]domain.WeeklyEngagement, 0, len(views))
	for key, count := range views {
		buckets = append(buckets, domain.WeeklyEngagement{
			Year:     key.year,
			Week:     key.week,
			Label:    fmt.Sprintf("Week %d, %d", key.week, key.year),
			Students: len(learners[key]),
			Views:    count,
		})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Year != buckets[j].Year {
			return buckets[i].Year < buckets[j].Year
		}
		return buckets[i].Week < buckets[j].Week
	})
	return buckets
}

// peakWatchHours buckets the event log by hour of day in UTC, emitting only
// hours that saw views, sorted by hour.
func peakWatchHours(events []domain.WatchEvent) []domain.PeakWatchHour {
	if len(events) == 0 {
		return nil
	}

	views := make(map[int]int)
	for _, ev := range events {
		views[ev.WatchedAt.UTC().Hour()]++
	}

	hours := make([]domain.PeakWatchHour, 0, len(views))
	for hour, count := range views {
		hours = append(hours, domain.PeakWatchHour{Hour: hour, Views: count})
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i].Hour < hours[j].Hour })
	return hours
}
