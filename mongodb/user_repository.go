package mongodb

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"go.pilab.hu/coursehub/domain"
)

// UserRepositoryMongo implements domain.UserRepository across the per-role
// account collections.
type UserRepositoryMongo struct {
	db *mongo.Database
}

// NewUserRepositoryMongo creates the repository and ensures the unique email
// index on each account collection.
func NewUserRepositoryMongo(ctx context.Context, db *mongo.Database) (*UserRepositoryMongo, error) {
	repo := &UserRepositoryMongo{db: db}

	for _, name := range []string{AdminsCollection, StudentsCollection, TeachersCollection} {
		_, err := db.Collection(name).Indexes().CreateMany(ctx, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "email_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "uuid_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		})
		if err != nil {
			log.Warn().Err(err).Str("collection", name).Msg("Issue creating indexes (might already exist)")
		}
	}
	return repo, nil
}

func (r *UserRepositoryMongo) collection(role domain.Role) *mongo.Collection {
	switch role {
	case domain.RoleAdmin:
		return r.db.Collection(AdminsCollection)
	case domain.RoleStudent:
		return r.db.Collection(StudentsCollection)
	default:
		return r.db.Collection(TeachersCollection)
	}
}

// FindByEmail resolves an email to an account, trying admins, students and
// teachers in that order, matching the login resolution order of the API.
func (r *UserRepositoryMongo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleStudent, domain.RoleTeacher} {
		var user domain.User
		err := r.collection(role).FindOne(ctx, bson.M{"email_id": email}).Decode(&user)
		if err == nil {
			user.Role = role
			return &user, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			log.Error().Err(err).Str("role", string(role)).Msg("Error finding user by email in MongoDB")
			return nil, storeErr("find user by email", err)
		}
	}
	return nil, domain.ErrUserNotFound
}

// Create inserts a user into the role's collection. Duplicate emails surface
// as domain.ErrEmailTaken.
func (r *UserRepositoryMongo) Create(ctx context.Context, role domain.Role, user *domain.User) error {
	_, err := r.collection(role).InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		log.Error().Err(err).Str("role", string(role)).Msg("Error creating user in MongoDB")
		return storeErr("create user", err)
	}
	return nil
}

func (r *UserRepositoryMongo) Get(ctx context.Context, role domain.Role, uuid string) (*domain.User, error) {
	var user domain.User
	err := r.collection(role).FindOne(ctx, bson.M{"uuid_id": uuid}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, storeErr("get user", err)
	}
	user.Role = role
	return &user, nil
}

func (r *UserRepositoryMongo) List(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	cursor, err := r.collection(role).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, storeErr("list users", err)
	}
	defer cursor.Close(ctx)

	var users []*domain.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, storeErr("decode users", err)
	}
	for _, u := range users {
		u.Role = role
	}
	return users, nil
}

func (r *UserRepositoryMongo) Update(ctx context.Context, role domain.Role, user *domain.User) error {
	result, err := r.collection(role).ReplaceOne(ctx, bson.M{"uuid_id": user.UUID}, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		return storeErr("update user", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryMongo) Delete(ctx context.Context, role domain.Role, uuid string) error {
	result, err := r.collection(role).DeleteOne(ctx, bson.M{"uuid_id": uuid})
	if err != nil {
		return storeErr("delete user", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// CountStudentsByDepartment backs the department-deletion guard.
func (r *UserRepositoryMongo) CountStudentsByDepartment(ctx context.Context, department string) (int64, error) {
	count, err := r.db.Collection(StudentsCollection).CountDocuments(ctx, bson.M{"department": department})
	if err != nil {
		return 0, storeErr("count students by department", err)
	}
	return count, nil
}

var _ domain.UserRepository = (*UserRepositoryMongo)(nil)
