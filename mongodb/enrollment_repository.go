package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"go.pilab.hu/coursehub/domain"
)

// EnrollmentRepositoryMongo implements domain.EnrollmentRepository over the
// user_courses collection.
type EnrollmentRepositoryMongo struct {
	collection *mongo.Collection
}

func NewEnrollmentRepositoryMongo(ctx context.Context, db *mongo.Database) (*EnrollmentRepositoryMongo, error) {
	repo := &EnrollmentRepositoryMongo{collection: db.Collection(UserCoursesCollection)}

	_, err := repo.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			// One enrollment per student/course pair.
			Keys: bson.D{
				{Key: "student_uuid", Value: 1},
				{Key: "course_uuid", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *EnrollmentRepositoryMongo) Create(ctx context.Context, e *domain.Enrollment) error {
	if _, err := r.collection.InsertOne(ctx, e); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Already enrolled; auto-assignment treats this as a skip.
			return nil
		}
		return storeErr("create enrollment", err)
	}
	return nil
}

func (r *EnrollmentRepositoryMongo) Exists(ctx context.Context, studentUUID, courseUUID string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx,
		bson.M{"student_uuid": studentUUID, "course_uuid": courseUUID})
	if err != nil {
		return false, storeErr("enrollment lookup", err)
	}
	return count > 0, nil
}

func (r *EnrollmentRepositoryMongo) ListByStudent(ctx context.Context, studentUUID string) ([]*domain.Enrollment, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"student_uuid": studentUUID},
		options.Find().SetSort(bson.D{{Key: "assigned_at", Value: 1}}))
	if err != nil {
		return nil, storeErr("list enrollments", err)
	}
	defer cursor.Close(ctx)

	var enrollments []*domain.Enrollment
	if err = cursor.All(ctx, &enrollments); err != nil {
		return nil, storeErr("decode enrollments", err)
	}
	return enrollments, nil
}

func (r *EnrollmentRepositoryMongo) DeleteByCourse(ctx context.Context, courseUUID string) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"course_uuid": courseUUID})
	if err != nil {
		return 0, storeErr("delete enrollments by course", err)
	}
	return result.DeletedCount, nil
}

var _ domain.EnrollmentRepository = (*EnrollmentRepositoryMongo)(nil)
