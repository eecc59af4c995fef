package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"go.pilab.hu/coursehub/domain"
)

// DepartmentRepositoryMongo implements domain.DepartmentRepository.
type DepartmentRepositoryMongo struct {
	collection *mongo.Collection
}

func NewDepartmentRepositoryMongo(ctx context.Context, db *mongo.Database) (*DepartmentRepositoryMongo, error) {
	repo := &DepartmentRepositoryMongo{collection: db.Collection(DepartmentsCollection)}

	_, err := repo.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "uuid_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *DepartmentRepositoryMongo) Create(ctx context.Context, dept *domain.Department) error {
	if _, err := r.collection.InsertOne(ctx, dept); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDepartmentExists
		}
		return storeErr("create department", err)
	}
	return nil
}

func (r *DepartmentRepositoryMongo) Get(ctx context.Context, uuid string) (*domain.Department, error) {
	return r.findOne(ctx, bson.M{"uuid_id": uuid})
}

func (r *DepartmentRepositoryMongo) GetByName(ctx context.Context, name string) (*domain.Department, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *DepartmentRepositoryMongo) findOne(ctx context.Context, filter bson.M) (*domain.Department, error) {
	var dept domain.Department
	err := r.collection.FindOne(ctx, filter).Decode(&dept)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDepartmentNotFound
		}
		return nil, storeErr("get department", err)
	}
	return &dept, nil
}

func (r *DepartmentRepositoryMongo) List(ctx context.Context) ([]*domain.Department, error) {
	cursor, err := r.collection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, storeErr("list departments", err)
	}
	defer cursor.Close(ctx)

	var depts []*domain.Department
	if err = cursor.All(ctx, &depts); err != nil {
		return nil, storeErr("decode departments", err)
	}
	return depts, nil
}

func (r *DepartmentRepositoryMongo) Update(ctx context.Context, dept *domain.Department) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"uuid_id": dept.UUID}, dept)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDepartmentExists
		}
		return storeErr("update department", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrDepartmentNotFound
	}
	return nil
}

func (r *DepartmentRepositoryMongo) Delete(ctx context.Context, uuid string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"uuid_id": uuid})
	if err != nil {
		return storeErr("delete department", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrDepartmentNotFound
	}
	return nil
}

var _ domain.DepartmentRepository = (*DepartmentRepositoryMongo)(nil)
