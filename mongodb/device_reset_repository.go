package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"go.pilab.hu/coursehub/domain"
)

// DeviceResetRepositoryMongo implements domain.DeviceResetRepository.
type DeviceResetRepositoryMongo struct {
	collection *mongo.Collection
}

func NewDeviceResetRepositoryMongo(ctx context.Context, db *mongo.Database) (*DeviceResetRepositoryMongo, error) {
	repo := &DeviceResetRepositoryMongo{collection: db.Collection(DeviceResetsCollection)}

	_, err := repo.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "student_uuid", Value: 1}, {Key: "status", Value: 1}},
		},
	})
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *DeviceResetRepositoryMongo) Create(ctx context.Context, req *domain.DeviceResetRequest) error {
	if _, err := r.collection.InsertOne(ctx, req); err != nil {
		return storeErr("create device reset request", err)
	}
	return nil
}

func (r *DeviceResetRepositoryMongo) Get(ctx context.Context, requestID string) (*domain.DeviceResetRequest, error) {
	return r.findOne(ctx, bson.M{"_id": requestID})
}

func (r *DeviceResetRepositoryMongo) FindPending(ctx context.Context, studentUUID string) (*domain.DeviceResetRequest, error) {
	return r.findOne(ctx, bson.M{"student_uuid": studentUUID, "status": domain.ResetPending})
}

func (r *DeviceResetRepositoryMongo) findOne(ctx context.Context, filter bson.M) (*domain.DeviceResetRequest, error) {
	var req domain.DeviceResetRequest
	err := r.collection.FindOne(ctx, filter).Decode(&req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrResetRequestNotFound
		}
		return nil, storeErr("get device reset request", err)
	}
	return &req, nil
}

func (r *DeviceResetRepositoryMongo) List(ctx context.Context, status string) ([]*domain.DeviceResetRequest, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	cursor, err := r.collection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, storeErr("list device reset requests", err)
	}
	defer cursor.Close(ctx)

	var reqs []*domain.DeviceResetRequest
	if err = cursor.All(ctx, &reqs); err != nil {
		return nil, storeErr("decode device reset requests", err)
	}
	return reqs, nil
}

// Resolve transitions a pending request to its terminal status. The filter
// includes status=pending, so a racing second resolver loses and gets
// ErrResetRequestResolved.
func (r *DeviceResetRepositoryMongo) Resolve(ctx context.Context, requestID, status string, by domain.Identity, at time.Time) (*domain.DeviceResetRequest, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": requestID, "status": domain.ResetPending},
		bson.M{"$set": bson.M{
			"status":           status,
			"resolved_at":      at,
			"resolved_by_uuid": by.UserUUID,
			"resolved_by_role": by.Role,
		}},
	)
	if err != nil {
		return nil, storeErr("resolve device reset request", err)
	}
	if result.MatchedCount == 0 {
		// Unknown id or already resolved.
		if _, err := r.Get(ctx, requestID); err != nil {
			return nil, err
		}
		return nil, domain.ErrResetRequestResolved
	}
	return r.Get(ctx, requestID)
}

var _ domain.DeviceResetRepository = (*DeviceResetRepositoryMongo)(nil)
