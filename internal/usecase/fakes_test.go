package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"skillforge-backend/internal/domain"
)

// In-memory stores mirroring the production repositories' semantics,
// including atomic per-key mutation so concurrency tests are meaningful.

type enrollKey struct {
	userID   string
	courseID string
}

type fakeEnrollmentRepo struct {
	mu      sync.Mutex
	records map[enrollKey]*domain.Enrollment
	failAdd error
}

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{records: make(map[enrollKey]*domain.Enrollment)}
}

func (r *fakeEnrollmentRepo) Create(ctx context.Context, e *domain.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := enrollKey{e.UserID, e.CourseID}
	if _, ok := r.records[key]; ok {
		return fmt.Errorf("enrollment exists: %w", domain.ErrConflict)
	}
	if e.ModulesProgress == nil {
		e.ModulesProgress = []domain.ModuleProgress{}
	}
	if e.QuizzesProgress == nil {
		e.QuizzesProgress = []domain.QuizProgress{}
	}
	r.records[key] = e
	return nil
}

func (r *fakeEnrollmentRepo) GetByUserAndCourse(ctx context.Context, userID, courseID string) (*domain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.records[enrollKey{userID, courseID}]
	if !ok {
		return nil, fmt.Errorf("enrollment %s/%s: %w", userID, courseID, domain.ErrNotFound)
	}
	copied := *e
	copied.ModulesProgress = append([]domain.ModuleProgress(nil), e.ModulesProgress...)
	copied.QuizzesProgress = append([]domain.QuizProgress(nil), e.QuizzesProgress...)
	return &copied, nil
}

func (r *fakeEnrollmentRepo) GetByUserID(ctx context.Context, userID string) ([]domain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Enrollment
	for key, e := range r.records {
		if key.userID == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEnrollmentRepo) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.records[enrollKey{userID, courseID}]
	return ok, nil
}

func (r *fakeEnrollmentRepo) AddVideoWatched(ctx context.Context, userID, courseID string, moduleIndex, videoIndex int, now time.Time) error {
	if r.failAdd != nil {
		return r.failAdd
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.records[enrollKey{userID, courseID}]
	if !ok {
		return fmt.Errorf("enrollment %s/%s: %w", userID, courseID, domain.ErrNotFound)
	}
	e.LastAccess = now
	for i := range e.ModulesProgress {
		if e.ModulesProgress[i].ModuleIndex == moduleIndex {
			for _, v := range e.ModulesProgress[i].VideosWatched {
				if v == videoIndex {
					return nil
				}
			}
			e.ModulesProgress[i].VideosWatched = append(e.ModulesProgress[i].VideosWatched, videoIndex)
			return nil
		}
	}
	e.ModulesProgress = append(e.ModulesProgress, domain.ModuleProgress{
		ModuleIndex:   moduleIndex,
		VideosWatched: []int{videoIndex},
	})
	return nil
}

func (r *fakeEnrollmentRepo) AddQuizCompleted(ctx context.Context, userID, courseID string, moduleIndex, quizIndex int, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.records[enrollKey{userID, courseID}]
	if !ok {
		return fmt.Errorf("enrollment %s/%s: %w", userID, courseID, domain.ErrNotFound)
	}
	e.LastAccess = now
	for i := range e.QuizzesProgress {
		if e.QuizzesProgress[i].ModuleIndex == moduleIndex {
			for _, q := range e.QuizzesProgress[i].QuizzesCompleted {
				if q == quizIndex {
					return nil
				}
			}
			e.QuizzesProgress[i].QuizzesCompleted = append(e.QuizzesProgress[i].QuizzesCompleted, quizIndex)
			return nil
		}
	}
	e.QuizzesProgress = append(e.QuizzesProgress, domain.QuizProgress{
		ModuleIndex:      moduleIndex,
		QuizzesCompleted: []int{quizIndex},
	})
	return nil
}

func (r *fakeEnrollmentRepo) AddTimeSpent(ctx context.Context, userID, courseID string, minutes float64, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.records[enrollKey{userID, courseID}]
	if !ok {
		return fmt.Errorf("enrollment %s/%s: %w", userID, courseID, domain.ErrNotFound)
	}
	e.TimeSpent += minutes
	e.LastAccess = now
	return nil
}

type fakeModuleRepo struct {
	modules map[string][]domain.CourseModule
}

func newFakeModuleRepo() *fakeModuleRepo {
	return &fakeModuleRepo{modules: make(map[string][]domain.CourseModule)}
}

func (r *fakeModuleRepo) Create(ctx context.Context, m *domain.CourseModule) error {
	r.modules[m.CourseID] = append(r.modules[m.CourseID], *m)
	return nil
}

func (r *fakeModuleRepo) GetByCourseID(ctx context.Context, courseID string) ([]domain.CourseModule, error) {
	return r.modules[courseID], nil
}

type fakeEventRepo struct {
	mu      sync.Mutex
	events  []domain.WatchEvent
	failGet error
}

func (r *fakeEventRepo) Append(ctx context.Context, ev *domain.WatchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *ev)
	return nil
}

func (r *fakeEventRepo) GetByCourseID(ctx context.Context, courseID string) ([]domain.WatchEvent, error) {
	if r.failGet != nil {
		return nil, r.failGet
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WatchEvent
	for _, ev := range r.events {
		if ev.CourseID == courseID {
			out = append(out, ev)
		}
	}
	return out, nil
}

type fakeCourseRepo struct {
	courses map[string]*domain.Course
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: make(map[string]*domain.Course)}
}

func (r *fakeCourseRepo) Create(ctx context.Context, c *domain.Course) error {
	r.courses[c.ID] = c
	return nil
}

func (r *fakeCourseRepo) GetActive(ctx context.Context) ([]domain.Course, error) {
	var out []domain.Course
	for _, c := range r.courses {
		if c.IsActive {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return nil, fmt.Errorf("course %s: %w", id, domain.ErrNotFound)
	}
	return c, nil
}

func (r *fakeCourseRepo) GetByInstructorID(ctx context.Context, instructorID string) ([]domain.Course, error) {
	var out []domain.Course
	for _, c := range r.courses {
		if c.InstructorID == instructorID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) IncrementEnrolled(ctx context.Context, courseID string) error {
	c, ok := r.courses[courseID]
	if !ok {
		return fmt.Errorf("course %s: %w", courseID, domain.ErrNotFound)
	}
	c.StudentsEnrolled++
	return nil
}

func (r *fakeCourseRepo) UpdateStats(ctx context.Context, courseID string, rating, revenue float64) error {
	c, ok := r.courses[courseID]
	if !ok {
		return fmt.Errorf("course %s: %w", courseID, domain.ErrNotFound)
	}
	c.Rating = rating
	c.TotalRevenue = revenue
	return nil
}

type fakeFeedbackRepo struct {
	feedback map[string][]domain.Feedback
	failGet  error
}

func newFakeFeedbackRepo() *fakeFeedbackRepo {
	return &fakeFeedbackRepo{feedback: make(map[string][]domain.Feedback)}
}

func (r *fakeFeedbackRepo) Upsert(ctx context.Context, f *domain.Feedback) error {
	list := r.feedback[f.CourseID]
	for i := range list {
		if list[i].UserID == f.UserID {
			list[i].Rating = f.Rating
			list[i].Review = f.Review
			return nil
		}
	}
	r.feedback[f.CourseID] = append(list, *f)
	return nil
}

func (r *fakeFeedbackRepo) GetByCourseID(ctx context.Context, courseID string) ([]domain.Feedback, error) {
	if r.failGet != nil {
		return nil, r.failGet
	}
	return r.feedback[courseID], nil
}

func (r *fakeFeedbackRepo) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	for _, f := range r.feedback[courseID] {
		if f.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", email, domain.ErrNotFound)
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return u, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, u *domain.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) UpdateStreak(ctx context.Context, userID string, current, longest int, lastLogin time.Time) error {
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	u.CurrentStreak = current
	u.LongestStreak = longest
	u.LastLoginDate = lastLogin
	return nil
}

var errStoreDown = errors.New("store unavailable")
