package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"go.pilab.hu/coursehub/domain"
)

// EnrollmentService handles course assignment, including the department-based
// auto-assignment that runs when a student account is created or its
// department changes.
type EnrollmentService struct {
	courses     domain.CourseRepository
	enrollments domain.EnrollmentRepository
}

func NewEnrollmentService(courses domain.CourseRepository, enrollments domain.EnrollmentRepository) *EnrollmentService {
	return &EnrollmentService{courses: courses, enrollments: enrollments}
}

// AutoAssign enrolls the student into every auto_assign course tagged with
// their department, skipping courses they are already enrolled in. Returns
// the uuids of the courses newly assigned.
func (s *EnrollmentService) AutoAssign(ctx context.Context, studentUUID, department string) ([]string, error) {
	courses, err := s.courses.ListAutoAssignByDepartment(ctx, department)
	if err != nil {
		return nil, err
	}

	var assigned []string
	for _, course := range courses {
		exists, err := s.enrollments.Exists(ctx, studentUUID, course.UUID)
		if err != nil {
			return assigned, err
		}
		if exists {
			continue
		}
		e := &domain.Enrollment{
			UUID:           uuid.NewString(),
			StudentUUID:    studentUUID,
			CourseUUID:     course.UUID,
			AssignedByRole: "system",
			AssignedByUUID: "auto-assign",
			AssignedAt:     time.Now().UTC(),
			Status:         domain.EnrollmentActive,
		}
		if err := s.enrollments.Create(ctx, e); err != nil {
			return assigned, err
		}
		assigned = append(assigned, course.UUID)
	}

	if len(assigned) > 0 {
		log.Info().
			Str("student_uuid", studentUUID).
			Str("department", department).
			Int("courses", len(assigned)).
			Msg("auto-assigned department courses")
	}
	return assigned, nil
}

// Assign creates a manual enrollment on behalf of an admin or teacher.
func (s *EnrollmentService) Assign(ctx context.Context, studentUUID, courseUUID string, by domain.Identity) (*domain.Enrollment, error) {
	if _, err := s.courses.Get(ctx, courseUUID); err != nil {
		return nil, err
	}
	e := &domain.Enrollment{
		UUID:           uuid.NewString(),
		StudentUUID:    studentUUID,
		CourseUUID:     courseUUID,
		AssignedByRole: string(by.Role),
		AssignedByUUID: by.UserUUID,
		AssignedAt:     time.Now().UTC(),
		Status:         domain.EnrollmentActive,
	}
	if err := s.enrollments.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// ListForStudent returns the student's enrollments with their courses
// resolved.
func (s *EnrollmentService) ListForStudent(ctx context.Context, studentUUID string) ([]*domain.Course, error) {
	enrollments, err := s.enrollments.ListByStudent(ctx, studentUUID)
	if err != nil {
		return nil, err
	}
	courses := make([]*domain.Course, 0, len(enrollments))
	for _, e := range enrollments {
		course, err := s.courses.Get(ctx, e.CourseUUID)
		if err != nil {
			// The course may have been deleted out from under the enrollment.
			continue
		}
		courses = append(courses, course)
	}
	return courses, nil
}
