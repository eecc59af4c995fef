package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"go.pilab.hu/coursehub/domain"
)

// CourseRepositoryMongo implements domain.CourseRepository.
type CourseRepositoryMongo struct {
	collection *mongo.Collection
}

func NewCourseRepositoryMongo(ctx context.Context, db *mongo.Database) (*CourseRepositoryMongo, error) {
	repo := &CourseRepositoryMongo{collection: db.Collection(CoursesCollection)}

	_, err := repo.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "uuid_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Auto-assignment lookup by department tag.
			Keys: bson.D{{Key: "departments", Value: 1}, {Key: "auto_assign", Value: 1}},
		},
	})
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *CourseRepositoryMongo) Create(ctx context.Context, course *domain.Course) error {
	if _, err := r.collection.InsertOne(ctx, course); err != nil {
		return storeErr("create course", err)
	}
	return nil
}

func (r *CourseRepositoryMongo) Get(ctx context.Context, uuid string) (*domain.Course, error) {
	var course domain.Course
	err := r.collection.FindOne(ctx, bson.M{"uuid_id": uuid}).Decode(&course)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, storeErr("get course", err)
	}
	return &course, nil
}

func (r *CourseRepositoryMongo) List(ctx context.Context) ([]*domain.Course, error) {
	cursor, err := r.collection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, storeErr("list courses", err)
	}
	defer cursor.Close(ctx)

	var courses []*domain.Course
	if err = cursor.All(ctx, &courses); err != nil {
		return nil, storeErr("decode courses", err)
	}
	return courses, nil
}

func (r *CourseRepositoryMongo) Update(ctx context.Context, course *domain.Course) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"uuid_id": course.UUID}, course)
	if err != nil {
		return storeErr("update course", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrCourseNotFound
	}
	return nil
}

func (r *CourseRepositoryMongo) Delete(ctx context.Context, uuid string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"uuid_id": uuid})
	if err != nil {
		return storeErr("delete course", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrCourseNotFound
	}
	return nil
}

func (r *CourseRepositoryMongo) ListAutoAssignByDepartment(ctx context.Context, department string) ([]*domain.Course, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"departments": department, "auto_assign": true})
	if err != nil {
		return nil, storeErr("list auto-assign courses", err)
	}
	defer cursor.Close(ctx)

	var courses []*domain.Course
	if err = cursor.All(ctx, &courses); err != nil {
		return nil, storeErr("decode auto-assign courses", err)
	}
	return courses, nil
}

var _ domain.CourseRepository = (*CourseRepositoryMongo)(nil)
