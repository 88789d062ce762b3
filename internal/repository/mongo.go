package repository

import (
	"context"
	"fmt"
	"time"

	"skillforge-backend/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ========== COURSE MODULE REPOSITORY ==========

type courseModuleRepo struct {
	db *mongo.Database
}

func NewCourseModuleRepository(db *mongo.Database) domain.CourseModuleRepository {
	return &courseModuleRepo{db}
}

func (r *courseModuleRepo) Create(ctx context.Context, module *domain.CourseModule) error {
	if module.ID == "" {
		module.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.db.Collection("course_modules").InsertOne(ctx, module)
	return err
}

func (r *courseModuleRepo) GetByCourseID(ctx context.Context, courseID string) ([]domain.CourseModule, error) {
	cursor, err := r.db.Collection("course_modules").Find(ctx,
		bson.M{"course_id": courseID},
		options.Find().SetSort(bson.D{{Key: "index", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var modules []domain.CourseModule
	if err := cursor.All(ctx, &modules); err != nil {
		return nil, err
	}
	return modules, nil
}

// ========== ENROLLMENT REPOSITORY ==========

// enrollmentRepo is the Enrollment Record Store. Every mutation is a single
// UpdateOne built from $addToSet / $inc / $set, which MongoDB applies
// atomically per document, so concurrent writers for the same
// (user, course) key serialize in the store and never lose updates.
type enrollmentRepo struct {
	db *mongo.Database
}

func NewEnrollmentRepository(db *mongo.Database) domain.EnrollmentRepository {
	return &enrollmentRepo{db}
}

func (r *enrollmentRepo) collection() *mongo.Collection {
	return r.db.Collection("enrollments")
}

func (r *enrollmentRepo) Create(ctx context.Context, enrollment *domain.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = primitive.NewObjectID().Hex()
	}
	if enrollment.ModulesProgress == nil {
		enrollment.ModulesProgress = []domain.ModuleProgress{}
	}
	if enrollment.QuizzesProgress == nil {
		enrollment.QuizzesProgress = []domain.QuizProgress{}
	}
	_, err := r.collection().InsertOne(ctx, enrollment)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("enrollment %s/%s already exists: %w", enrollment.UserID, enrollment.CourseID, domain.ErrConflict)
	}
	return err
}

func (r *enrollmentRepo) GetByUserAndCourse(ctx context.Context, userID, courseID string) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment
	err := r.collection().FindOne(ctx, bson.M{"user_id": userID, "course_id": courseID}).Decode(&enrollment)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("enrollment %s/%s: %w", userID, courseID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepo) GetByUserID(ctx context.Context, userID string) ([]domain.Enrollment, error) {
	cursor, err := r.collection().Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "enrolled_date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var enrollments []domain.Enrollment
	if err := cursor.All(ctx, &enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepo) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	count, err := r.collection().CountDocuments(ctx, bson.M{"user_id": userID, "course_id": courseID})
	return count > 0, err
}

func (r *enrollmentRepo) AddVideoWatched(ctx context.Context, userID, courseID string, moduleIndex, videoIndex int, now time.Time) error {
	entry := bson.M{
		"module_index":   moduleIndex,
		"videos_watched": []int{videoIndex},
		"completed":      false,
	}
	return r.addToIndexSet(ctx, userID, courseID, moduleIndex, now,
		"modules_progress", "videos_watched", videoIndex, entry)
}

func (r *enrollmentRepo) AddQuizCompleted(ctx context.Context, userID, courseID string, moduleIndex, quizIndex int, now time.Time) error {
	entry := bson.M{
		"module_index":     moduleIndex,
		"quizzes_completed": []int{quizIndex},
	}
	return r.addToIndexSet(ctx, userID, courseID, moduleIndex, now,
		"quizzes_progress", "quizzes_completed", quizIndex, entry)
}

// addToIndexSet inserts value into the per-module set under field/setField,
// creating the module entry when absent. Two atomic updates cover the two
// states; the $ne guard on the push keeps a racing create from producing a
// duplicate module entry, and the loop re-runs the set-insert after losing
// that race.
func (r *enrollmentRepo) addToIndexSet(ctx context.Context, userID, courseID string, moduleIndex int, now time.Time, field, setField string, value int, entry bson.M) error {
	key := bson.M{"user_id": userID, "course_id": courseID}

	for attempt := 0; attempt < 3; attempt++ {
		res, err := r.collection().UpdateOne(ctx,
			bson.M{"user_id": userID, "course_id": courseID, field + ".module_index": moduleIndex},
			bson.M{
				"$addToSet": bson.M{field + ".$." + setField: value},
				"$set":      bson.M{"last_access": now},
			})
		if err != nil {
			return err
		}
		if res.MatchedCount > 0 {
			return nil
		}

		res, err = r.collection().UpdateOne(ctx,
			bson.M{"user_id": userID, "course_id": courseID, field + ".module_index": bson.M{"$ne": moduleIndex}},
			bson.M{
				"$push": bson.M{field: entry},
				"$set":  bson.M{"last_access": now},
			})
		if err != nil {
			return err
		}
		if res.MatchedCount > 0 {
			return nil
		}

		// Neither filter matched: the enrollment is missing, or a concurrent
		// writer pushed the module entry between the two updates.
		count, err := r.collection().CountDocuments(ctx, key)
		if err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("enrollment %s/%s: %w", userID, courseID, domain.ErrNotFound)
		}
	}
	return fmt.Errorf("enrollment %s/%s: retries exhausted: %w", userID, courseID, domain.ErrConflict)
}

func (r *enrollmentRepo) AddTimeSpent(ctx context.Context, userID, courseID string, minutes float64, now time.Time) error {
	res, err := r.collection().UpdateOne(ctx,
		bson.M{"user_id": userID, "course_id": courseID},
		bson.M{
			"$inc": bson.M{"time_spent": minutes},
			"$set": bson.M{"last_access": now},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("enrollment %s/%s: %w", userID, courseID, domain.ErrNotFound)
	}
	return nil
}

// ========== WATCH EVENT REPOSITORY ==========

// watchEventRepo is the append-only Event Log. Appends are independent and
// order-tolerant; no locking is needed.
type watchEventRepo struct {
	db *mongo.Database
}

func NewWatchEventRepository(db *mongo.Database) domain.WatchEventRepository {
	return &watchEventRepo{db}
}

func (r *watchEventRepo) Append(ctx context.Context, event *domain.WatchEvent) error {
	if event.ID == "" {
		event.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.db.Collection("watch_events").InsertOne(ctx, event)
	return err
}

func (r *watchEventRepo) GetByCourseID(ctx context.Context, courseID string) ([]domain.WatchEvent, error) {
	cursor, err := r.db.Collection("watch_events").Find(ctx,
		bson.M{"course_id": courseID},
		options.Find().SetSort(bson.D{{Key: "watched_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []domain.WatchEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// EnsureIndexes creates the indexes the store's invariants depend on: the
// unique (user_id, course_id) pair on enrollments and the event-log query
// index.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("enrollments").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "course_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = db.Collection("watch_events").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "course_id", Value: 1}, {Key: "watched_at", Value: 1}},
	})
	if err != nil {
		return err
	}
	_, err = db.Collection("course_modules").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "course_id", Value: 1}, {Key: "index", Value: 1}},
	})
	return err
}
