package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"go.pilab.hu/coursehub/domain"
	"go.pilab.hu/coursehub/session"
)

// UserService owns account creation and maintenance for the three role
// collections.
type UserService struct {
	users      domain.UserRepository
	hasher     PasswordHasher
	enrollment *EnrollmentService
	sessions   *session.Manager
}

func NewUserService(
	users domain.UserRepository,
	hasher PasswordHasher,
	enrollment *EnrollmentService,
	sessions *session.Manager,
) *UserService {
	return &UserService{
		users:      users,
		hasher:     hasher,
		enrollment: enrollment,
		sessions:   sessions,
	}
}

// CreateInput is the common account-creation payload; role-specific fields
// are read per role.
type CreateInput struct {
	Email    string
	Password string
	Name     string

	CollegeName       string
	StudentAllowCount int

	Department    string
	SubDepartment string
	AdminUUID     string

	Bio string
}

// Create registers an account in the role's collection. Students are
// auto-enrolled into their department's auto_assign courses.
func (s *UserService) Create(ctx context.Context, role domain.Role, in CreateInput) (*domain.User, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		UUID:              uuid.NewString(),
		Email:             in.Email,
		PasswordHash:      hash,
		Name:              in.Name,
		CreatedAt:         now,
		UpdatedAt:         now,
		CollegeName:       in.CollegeName,
		StudentAllowCount: in.StudentAllowCount,
		Department:        in.Department,
		SubDepartment:     in.SubDepartment,
		AdminUUID:         in.AdminUUID,
		Bio:               in.Bio,
		Role:              role,
	}
	if err := s.users.Create(ctx, role, user); err != nil {
		return nil, err
	}

	if role == domain.RoleStudent && in.Department != "" {
		if _, err := s.enrollment.AutoAssign(ctx, user.UUID, in.Department); err != nil {
			// Account exists, assignment can be repaired later.
			log.Warn().Err(err).Str("student_uuid", user.UUID).Msg("auto-assignment failed")
		}
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, role domain.Role, uuid string) (*domain.User, error) {
	return s.users.Get(ctx, role, uuid)
}

func (s *UserService) List(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	return s.users.List(ctx, role)
}

// UpdateInput carries mutable profile fields. Nil pointers mean "unchanged".
type UpdateInput struct {
	Email         *string
	Password      *string
	Name          *string
	Department    *string
	SubDepartment *string
	Bio           *string
	CollegeName   *string
}

// Update applies the changes. A student's department change re-runs
// auto-assignment for the new department.
func (s *UserService) Update(ctx context.Context, role domain.Role, uuid string, in UpdateInput) (*domain.User, error) {
	user, err := s.users.Get(ctx, role, uuid)
	if err != nil {
		return nil, err
	}

	departmentChanged := false
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Department != nil && *in.Department != user.Department {
		user.Department = *in.Department
		departmentChanged = true
	}
	if in.SubDepartment != nil {
		user.SubDepartment = *in.SubDepartment
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if in.CollegeName != nil {
		user.CollegeName = *in.CollegeName
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, role, user); err != nil {
		return nil, err
	}

	if role == domain.RoleStudent && departmentChanged && user.Department != "" {
		if _, err := s.enrollment.AutoAssign(ctx, user.UUID, user.Department); err != nil {
			log.Warn().Err(err).Str("student_uuid", user.UUID).Msg("auto-assignment failed")
		}
	}
	return user, nil
}

// Delete removes the account and revokes all of its sessions so a deleted
// user cannot keep an authenticated device.
func (s *UserService) Delete(ctx context.Context, role domain.Role, uuid string) error {
	if err := s.users.Delete(ctx, role, uuid); err != nil {
		return err
	}
	if _, err := s.sessions.LogoutAll(ctx, uuid); err != nil {
		log.Warn().Err(err).Str("user_uuid", uuid).Msg("failed to revoke sessions of deleted user")
	}
	return nil
}
