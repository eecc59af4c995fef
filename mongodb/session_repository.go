package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"go.pilab.hu/coursehub/domain"
)

// SessionRepositoryMongo implements domain.SessionRepository using MongoDB.
// The session id is the document _id, which gives the global-uniqueness
// constraint for free.
type SessionRepositoryMongo struct {
	collection *mongo.Collection
}

// NewSessionRepositoryMongo creates a new SessionRepositoryMongo and ensures
// the indexes backing ListActive.
func NewSessionRepositoryMongo(ctx context.Context, db *mongo.Database) (*SessionRepositoryMongo, error) {
	repo := &SessionRepositoryMongo{
		collection: db.Collection(SessionsCollection),
	}

	indexModels := []mongo.IndexModel{
		{
			// Active-set listing and revoke-all, ordered by creation.
			Keys: bson.D{
				{Key: "user_uuid", Value: 1},
				{Key: "revoked", Value: 1},
				{Key: "created_at", Value: 1},
			},
		},
	}
	if _, err := repo.collection.Indexes().CreateMany(ctx, indexModels, options.CreateIndexes()); err != nil {
		log.Warn().Err(err).Msg("Issue creating indexes for sessions collection (might already exist)")
	} else {
		log.Info().Msg("Indexes for sessions collection ensured.")
	}

	return repo, nil
}

// storeErr wraps transient driver failures so callers can map them to a
// retryable response.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}

// Create inserts a new session. Id collisions surface as
// domain.ErrDuplicateSessionID for the caller to retry with a fresh id.
func (r *SessionRepositoryMongo) Create(ctx context.Context, session *domain.Session) error {
	_, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateSessionID
		}
		log.Error().Err(err).Msg("Error storing session in MongoDB")
		return storeErr("insert session", err)
	}
	return nil
}

// Get retrieves a session by id.
func (r *SessionRepositoryMongo) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	var session domain.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSessionNotFound
		}
		log.Error().Err(err).Str("session_id", sessionID).Msg("Error getting session from MongoDB")
		return nil, storeErr("get session", err)
	}
	return &session, nil
}

// ListActive returns the user's non-revoked sessions, created_at ascending
// with the session id as a deterministic tiebreak.
func (r *SessionRepositoryMongo) ListActive(ctx context.Context, userUUID string) ([]*domain.Session, error) {
	filter := bson.M{"user_uuid": userUUID, "revoked": false}
	sort := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, sort)
	if err != nil {
		log.Error().Err(err).Str("user_uuid", userUUID).Msg("Error listing active sessions from MongoDB")
		return nil, storeErr("list active sessions", err)
	}
	defer cursor.Close(ctx)

	var sessions []*domain.Session
	if err = cursor.All(ctx, &sessions); err != nil {
		log.Error().Err(err).Msg("Error decoding active sessions from MongoDB")
		return nil, storeErr("decode active sessions", err)
	}
	return sessions, nil
}

// Revoke is a compare-and-set on the single record: only a non-revoked
// session is updated, so revoking twice reports no change without error.
func (r *SessionRepositoryMongo) Revoke(ctx context.Context, sessionID string) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": sessionID, "revoked": false},
		bson.M{"$set": bson.M{"revoked": true}},
	)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Error revoking session in MongoDB")
		return false, storeErr("revoke session", err)
	}
	if result.MatchedCount > 0 {
		return true, nil
	}

	// No active record matched: distinguish already-revoked from unknown.
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": sessionID})
	if err != nil {
		return false, storeErr("revoke session lookup", err)
	}
	if count == 0 {
		return false, domain.ErrSessionNotFound
	}
	return false, nil
}

// RevokeAll revokes every active session for the user, optionally sparing
// exceptSessionID. Returns the number revoked.
func (r *SessionRepositoryMongo) RevokeAll(ctx context.Context, userUUID, exceptSessionID string) (int64, error) {
	filter := bson.M{"user_uuid": userUUID, "revoked": false}
	if exceptSessionID != "" {
		filter["_id"] = bson.M{"$ne": exceptSessionID}
	}

	result, err := r.collection.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"revoked": true}})
	if err != nil {
		log.Error().Err(err).Str("user_uuid", userUUID).Msg("Error revoking sessions by user in MongoDB")
		return 0, storeErr("revoke all sessions", err)
	}
	return result.ModifiedCount, nil
}

// Touch advances last_used_at on an active session. $max keeps the field
// monotonically non-decreasing even when touches race.
func (r *SessionRepositoryMongo) Touch(ctx context.Context, sessionID string, at time.Time) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": sessionID, "revoked": false},
		bson.M{"$max": bson.M{"last_used_at": at}},
	)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Error touching session in MongoDB")
		return storeErr("touch session", err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": sessionID})
	if err != nil {
		return storeErr("touch session lookup", err)
	}
	if count == 0 {
		return domain.ErrSessionNotFound
	}
	return domain.ErrSessionRevoked
}

var _ domain.SessionRepository = (*SessionRepositoryMongo)(nil)
