package domain

import (
	"time"
)

type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
)

// Actor is the already-authenticated caller of a protected operation.
// The core never authenticates; it only authorizes.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

type User struct {
	ID            string    `json:"id" gorm:"type:uuid;primaryKey"`
	Name          string    `json:"name" gorm:"not null"`
	Email         string    `json:"email" gorm:"uniqueIndex;not null"`
	Password      string    `json:"-" gorm:"not null"`
	Role          Role      `json:"role" gorm:"type:varchar(20);default:'student'"`
	ProfileImage  string    `json:"profile_image"`
	LearnerType   string    `json:"learner_type,omitempty" gorm:"type:varchar(20)"` // student or professional
	CurrentStreak int       `json:"current_streak" gorm:"default:0"`
	LongestStreak int       `json:"longest_streak" gorm:"default:0"`
	LastLoginDate time.Time `json:"last_login_date"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

type Course struct {
	ID               string    `json:"id" gorm:"type:uuid;primaryKey"`
	Name             string    `json:"name" gorm:"not null"`
	Description      string    `json:"description" gorm:"type:text"`
	InstructorID     string    `json:"instructor_id" gorm:"type:uuid;not null;index"`
	InstructorName   string    `json:"instructor_name"`
	Price            float64   `json:"price" gorm:"not null"`
	Duration         int       `json:"duration"` // hours
	Category         string    `json:"category"`
	Level            string    `json:"level" gorm:"type:varchar(20)"` // beginner, intermediate, advanced
	Thumbnail        string    `json:"thumbnail" gorm:"default:'default-course.jpg'"`
	Rating           float64   `json:"rating" gorm:"default:0"` // snapshot, refreshed by the stats job
	StudentsEnrolled int       `json:"students_enrolled" gorm:"default:0"`
	TotalRevenue     float64   `json:"total_revenue" gorm:"default:0"` // snapshot: students_enrolled * price
	IsActive         bool      `json:"is_active" gorm:"default:true"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Feedback is one review per (user, course). Resubmitting upserts in place.
type Feedback struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CourseID  string    `json:"course_id" gorm:"type:uuid;not null;uniqueIndex:idx_feedback_course_user"`
	UserID    string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_feedback_course_user"`
	Rating    int       `json:"rating" gorm:"not null"` // 1-5
	Review    string    `json:"review" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// ========== MONGODB MODELS ==========

type Video struct {
	URL         string `json:"url" bson:"url"`
	Description string `json:"description" bson:"description"`
}

type Quiz struct {
	Question      string   `json:"question" bson:"question"`
	Options       []string `json:"options" bson:"options"`
	CorrectAnswer string   `json:"correct_answer" bson:"correct_answer"`
}

// CourseModule lives in MongoDB: nested videos/quizzes are dynamic per course.
type CourseModule struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	CourseID  string    `json:"course_id" bson:"course_id"`
	Index     int       `json:"index" bson:"index"` // position in the course's module list
	Title     string    `json:"title" bson:"title"`
	Topics    []string  `json:"topics" bson:"topics"`
	Duration  int       `json:"duration" bson:"duration"` // minutes
	Videos    []Video   `json:"videos" bson:"videos"`
	Quizzes   []Quiz    `json:"quizzes" bson:"quizzes"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// ModuleProgress tracks the watched-video set for one module of an enrollment.
// VideosWatched has set semantics: re-marking a watched video is a no-op.
type ModuleProgress struct {
	ModuleIndex   int   `json:"module_index" bson:"module_index"`
	VideosWatched []int `json:"videos_watched" bson:"videos_watched"`
	Completed     bool  `json:"completed" bson:"completed"`
}

type QuizProgress struct {
	ModuleIndex      int   `json:"module_index" bson:"module_index"`
	QuizzesCompleted []int `json:"quizzes_completed" bson:"quizzes_completed"`
}

// Enrollment is a learner's ownership record for one course, created exactly
// once at purchase time (unique index on user_id + course_id) and mutated
// only through atomic update operators.
type Enrollment struct {
	ID              string           `json:"id" bson:"_id,omitempty"`
	UserID          string           `json:"user_id" bson:"user_id"`
	CourseID        string           `json:"course_id" bson:"course_id"`
	EnrolledDate    time.Time        `json:"enrolled_date" bson:"enrolled_date"`
	LastAccess      time.Time        `json:"last_access" bson:"last_access"`
	TimeSpent       float64          `json:"time_spent" bson:"time_spent"` // cumulative minutes
	ModulesProgress []ModuleProgress `json:"modules_progress" bson:"modules_progress"`
	QuizzesProgress []QuizProgress   `json:"quizzes_progress" bson:"quizzes_progress"`
}

// WatchEvent is an immutable log entry of a single "video marked watched"
// action. Repeated views produce repeated events; the log is never deduped.
type WatchEvent struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	UserID      string    `json:"user_id" bson:"user_id"`
	CourseID    string    `json:"course_id" bson:"course_id"`
	ModuleIndex int       `json:"module_index" bson:"module_index"`
	VideoIndex  int       `json:"video_index" bson:"video_index"`
	WatchedAt   time.Time `json:"watched_at" bson:"watched_at"`
}

// ========== DERIVED VIEWS / DTOs ==========

// Decision is the Access Gate verdict. Reason is set only on denial.
type Decision struct {
	Granted bool   `json:"granted"`
	Reason  string `json:"reason,omitempty"`
}

type CourseProgress struct {
	ModulesProgress    []ModuleProgress `json:"modules_progress"`
	QuizzesProgress    []QuizProgress   `json:"quizzes_progress"`
	ProgressPercentage int              `json:"progress_percentage"`
}

type CertificateEligibility struct {
	Eligible      bool   `json:"eligible"`
	CertificateID string `json:"certificate_id,omitempty"`
}

// WeeklyEngagement is a sparse ISO (year, week) bucket over the event log.
type WeeklyEngagement struct {
	Year     int    `json:"year"`
	Week     int    `json:"week"`
	Label    string `json:"label"` // e.g. "Week 14, 2024"
	Students int    `json:"students"`
	Views    int    `json:"views"`
}

// PeakWatchHour is an hour-of-day bucket (UTC); only hours with views are emitted.
type PeakWatchHour struct {
	Hour  int `json:"hour"`
	Views int `json:"views"`
}

type AnalyticsView struct {
	CourseID           string             `json:"course_id"`
	CourseName         string             `json:"course_name"`
	TotalStudents      int                `json:"total_students"`
	TotalRevenue       float64            `json:"total_revenue"`
	AverageRating      float64            `json:"average_rating"`
	TotalFeedback      int                `json:"total_feedback"`
	RatingDistribution map[int]int        `json:"rating_distribution"` // dense, keys 1..5
	UserEngagement     []WeeklyEngagement `json:"user_engagement"`
	PeakWatchTimes     []PeakWatchHour    `json:"peak_watch_times"`
}

type CourseDetail struct {
	Course
	Modules    []CourseModule `json:"modules"`
	IsEnrolled bool           `json:"is_enrolled"`
}

type EnrolledCourseSummary struct {
	CourseID       string    `json:"course_id"`
	Name           string    `json:"name"`
	Thumbnail      string    `json:"thumbnail"`
	InstructorName string    `json:"instructor_name"`
	Duration       int       `json:"duration"`
	Progress       int       `json:"progress"`
	TimeSpent      float64   `json:"time_spent"`
	LastAccess     time.Time `json:"last_access"`
	EnrolledDate   time.Time `json:"enrolled_date"`
	Completed      bool      `json:"completed"`
	CertificateID  string    `json:"certificate_id,omitempty"`
}

type LearnerDashboard struct {
	User             *User                   `json:"user"`
	TotalCourses     int                     `json:"total_courses"`
	CompletedCourses int                     `json:"completed_courses"`
	TotalTimeSpent   float64                 `json:"total_time_spent"`
	AverageProgress  int                     `json:"average_progress"`
	CurrentStreak    int                     `json:"current_streak"`
	EnrolledCourses  []EnrolledCourseSummary `json:"enrolled_courses"`
}

type CourseStatSummary struct {
	CourseID         string  `json:"course_id"`
	Name             string  `json:"name"`
	Thumbnail        string  `json:"thumbnail"`
	Price            float64 `json:"price"`
	StudentsEnrolled int     `json:"students_enrolled"`
	Revenue          float64 `json:"revenue"`
	AverageRating    float64 `json:"average_rating"`
}

type InstructorDashboard struct {
	TotalCourses  int                 `json:"total_courses"`
	TotalStudents int                 `json:"total_students"`
	TotalRevenue  float64             `json:"total_revenue"`
	AverageRating float64             `json:"average_rating"`
	Courses       []CourseStatSummary `json:"courses"`
}
