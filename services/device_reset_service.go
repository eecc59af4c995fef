package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"go.pilab.hu/coursehub/domain"
	"go.pilab.hu/coursehub/session"
)

// DeviceResetService implements the admin-approved device reset workflow: a
// student who has lost access to every enrolled device files a request, and
// approval clears all of their sessions at once.
type DeviceResetService struct {
	resets   domain.DeviceResetRepository
	sessions *session.Manager
}

func NewDeviceResetService(resets domain.DeviceResetRepository, sessions *session.Manager) *DeviceResetService {
	return &DeviceResetService{resets: resets, sessions: sessions}
}

// Request files a reset request for the student. If a pending request already
// exists it is returned as-is instead of creating a duplicate.
func (s *DeviceResetService) Request(ctx context.Context, studentUUID, reason string) (*domain.DeviceResetRequest, error) {
	existing, err := s.resets.FindPending(ctx, studentUUID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrResetRequestNotFound) {
		return nil, err
	}

	req := &domain.DeviceResetRequest{
		RequestID:   uuid.NewString(),
		StudentUUID: studentUUID,
		Status:      domain.ResetPending,
		Reason:      reason,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.resets.Create(ctx, req); err != nil {
		return nil, err
	}
	log.Info().Str("student_uuid", studentUUID).Str("request_id", req.RequestID).
		Msg("device reset requested")
	return req, nil
}

// List returns reset requests oldest first, optionally filtered by status.
func (s *DeviceResetService) List(ctx context.Context, status string) ([]*domain.DeviceResetRequest, error) {
	return s.resets.List(ctx, status)
}

// Approve resolves the request and revokes every active session for the
// student. The resolve runs first: once a request leaves pending it cannot be
// re-approved, so the revocation cannot be replayed through this path.
func (s *DeviceResetService) Approve(ctx context.Context, requestID string, by domain.Identity) (*domain.DeviceResetRequest, error) {
	req, err := s.resets.Resolve(ctx, requestID, domain.ResetApproved, by, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	count, err := s.sessions.LogoutAll(ctx, req.StudentUUID)
	if err != nil {
		log.Error().Err(err).Str("request_id", requestID).
			Msg("device reset approved but session revocation failed")
		return nil, err
	}
	log.Info().
		Str("request_id", requestID).
		Str("student_uuid", req.StudentUUID).
		Int64("sessions_revoked", count).
		Msg("device reset approved")
	return req, nil
}

// Reject resolves the request without touching any sessions.
func (s *DeviceResetService) Reject(ctx context.Context, requestID string, by domain.Identity) (*domain.DeviceResetRequest, error) {
	return s.resets.Resolve(ctx, requestID, domain.ResetRejected, by, time.Now().UTC())
}
