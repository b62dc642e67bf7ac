package reservation

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/driano7/Xoco-POS-sub003/internal/email"
	"github.com/driano7/Xoco-POS-sub003/internal/model"
	"github.com/driano7/Xoco-POS-sub003/internal/repository"
	"github.com/driano7/Xoco-POS-sub003/internal/status"
	syncpkg "github.com/driano7/Xoco-POS-sub003/internal/sync"
	apperrors "github.com/driano7/Xoco-POS-sub003/pkg/errors"
	"github.com/driano7/Xoco-POS-sub003/pkg/logger"
	"github.com/driano7/Xoco-POS-sub003/pkg/security"
)

// encPrefix marks a phone number stored encrypted. Rows written before
// encryption was enabled stay readable.
const encPrefix = "enc:"

type Service struct {
	repo    repository.ReservationRepository
	writer  *syncpkg.Writer
	enc     security.Encryptor
	emailer email.Service
	mirror  repository.LocalMirror
	health  *syncpkg.Health
	logger  *logger.Logger
	now     func() time.Time
}

func NewService(repo repository.ReservationRepository, writer *syncpkg.Writer, enc security.Encryptor, emailer email.Service, mirror repository.LocalMirror, health *syncpkg.Health, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		writer:  writer,
		enc:     enc,
		emailer: emailer,
		mirror:  mirror,
		health:  health,
		logger:  log,
		now:     time.Now,
	}
}

// WithClock overrides the clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) CreateReservation(ctx context.Context, req *model.CreateReservationRequest) (*model.Reservation, *syncpkg.Result, error) {
	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		return nil, nil, apperrors.BadRequest("invalid branch id", err)
	}

	now := s.now()
	res := &model.Reservation{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BranchID:        branchID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		PartySize:       req.PartySize,
		ReservationDate: req.ReservationDate,
		ReservationTime: req.ReservationTime,
		Status:          model.ReservationStatusPending,
		Notes:           req.Notes,
	}

	ops := []model.SyncOp{{
		Kind:  model.SyncOpInsert,
		Table: "reservations",
		Rows:  []map[string]interface{}{s.row(res)},
	}}

	result, err := s.writer.Apply(ctx, "reservations:insert", ops, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	// SMTP is independent of the remote database, so the confirmation
	// goes out even when the write was queued offline.
	if s.emailer != nil && res.CustomerEmail != "" {
		go func(r model.Reservation) {
			if err := s.emailer.SendReservationConfirmation(context.Background(), r.CustomerEmail, r.CustomerName, r.ReservationDate, r.ReservationTime); err != nil {
				s.logger.Warn("failed to send reservation confirmation", "reservation_id", r.ID.String())
			}
		}(*res)
	}
	return res, result, nil
}

func (s *Service) UpdateReservation(ctx context.Context, id uuid.UUID, req *model.UpdateReservationRequest) (*model.Reservation, *syncpkg.Result, error) {
	res, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	res.CustomerPhone = s.decryptPhone(res.CustomerPhone)

	if req.Status != nil {
		res.Status = *req.Status
	}
	if req.PartySize != nil {
		res.PartySize = *req.PartySize
	}
	if req.ReservationDate != nil {
		res.ReservationDate = *req.ReservationDate
	}
	if req.ReservationTime != nil {
		res.ReservationTime = *req.ReservationTime
	}
	if req.Notes != nil {
		res.Notes = *req.Notes
	}
	res.UpdatedAt = s.now()

	ops := []model.SyncOp{{
		Kind:        model.SyncOpUpsert,
		Table:       "reservations",
		Rows:        []map[string]interface{}{s.row(res)},
		ConflictKey: "id",
	}}

	result, err := s.writer.Apply(ctx, "reservations:update", ops, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update reservation: %w", err)
	}
	return res, result, nil
}

func (s *Service) CancelReservation(ctx context.Context, id uuid.UUID) (*model.Reservation, *syncpkg.Result, error) {
	cancelled := model.ReservationStatusCancelled
	return s.UpdateReservation(ctx, id, &model.UpdateReservationRequest{Status: &cancelled})
}

func (s *Service) GetReservation(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	if s.offline() {
		return s.getFromMirror(ctx, id)
	}
	res, err := s.repo.Get(ctx, id)
	if err != nil {
		if s.mirror != nil && s.health != nil && s.health.IsTransient(err) {
			s.health.MarkFailure(err)
			return s.getFromMirror(ctx, id)
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	derived := status.DeriveReservation(*res, s.now())
	derived.CustomerPhone = s.decryptPhone(derived.CustomerPhone)
	return &derived, nil
}

// ListReservations reads from the remote store, or from the local
// mirror while it is down, so the book a host sees during an outage
// still includes reservations taken during it.
func (s *Service) ListReservations(ctx context.Context, filters *model.ReservationFilters) ([]model.Reservation, error) {
	if s.offline() {
		return s.listFromMirror(ctx, filters)
	}
	reservations, err := s.repo.List(ctx, filters)
	if err != nil {
		if s.mirror != nil && s.health != nil && s.health.IsTransient(err) {
			s.health.MarkFailure(err)
			return s.listFromMirror(ctx, filters)
		}
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return s.present(reservations, filters), nil
}

// offline reports whether reads should go to the local mirror instead
// of attempting the remote store.
func (s *Service) offline() bool {
	return s.mirror != nil && s.health != nil && !s.health.ShouldPreferRemote()
}

func (s *Service) present(reservations []model.Reservation, filters *model.ReservationFilters) []model.Reservation {
	reservations = status.AnnotateReservations(reservations, s.now())
	visible := make([]model.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if r.IsHidden && !filters.IncludeHidden {
			continue
		}
		r.CustomerPhone = s.decryptPhone(r.CustomerPhone)
		visible = append(visible, r)
	}
	return visible
}

func (s *Service) getFromMirror(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	rows, err := s.mirror.List(ctx, "reservations")
	if err != nil {
		return nil, fmt.Errorf("failed to read local reservations: %w", err)
	}
	for _, row := range rows {
		r, ok := reservationFromRow(row)
		if !ok || r.ID != id {
			continue
		}
		derived := status.DeriveReservation(r, s.now())
		derived.CustomerPhone = s.decryptPhone(derived.CustomerPhone)
		return &derived, nil
	}
	return nil, fmt.Errorf("reservation %s not found", id)
}

func (s *Service) listFromMirror(ctx context.Context, filters *model.ReservationFilters) ([]model.Reservation, error) {
	rows, err := s.mirror.List(ctx, "reservations")
	if err != nil {
		return nil, fmt.Errorf("failed to read local reservations: %w", err)
	}
	var reservations []model.Reservation
	for _, row := range rows {
		r, ok := reservationFromRow(row)
		if !ok || r.BranchID != filters.BranchID {
			continue
		}
		if filters.Status != "" && r.Status != filters.Status {
			continue
		}
		reservations = append(reservations, r)
	}
	return s.present(reservations, filters), nil
}

func (s *Service) row(r *model.Reservation) map[string]interface{} {
	return map[string]interface{}{
		"id":               r.ID.String(),
		"branch_id":        r.BranchID.String(),
		"customer_name":    r.CustomerName,
		"customer_phone":   s.encryptPhone(r.CustomerPhone),
		"customer_email":   r.CustomerEmail,
		"party_size":       r.PartySize,
		"reservation_date": r.ReservationDate,
		"reservation_time": r.ReservationTime,
		"status":           string(r.Status),
		"notes":            r.Notes,
		"created_at":       r.CreatedAt,
		"updated_at":       r.UpdatedAt,
	}
}

// reservationFromRow is the inverse of row for mirror reads. Mirror
// rows went through a JSON round trip, so numbers come back as float64
// and timestamps as RFC 3339 strings. The phone stays in its stored
// form; decryption happens on presentation like every other read.
func reservationFromRow(row map[string]interface{}) (model.Reservation, bool) {
	id, err := uuid.Parse(rowString(row, "id"))
	if err != nil {
		return model.Reservation{}, false
	}
	branchID, err := uuid.Parse(rowString(row, "branch_id"))
	if err != nil {
		return model.Reservation{}, false
	}
	return model.Reservation{
		Base: model.Base{
			ID:        id,
			CreatedAt: rowTime(row, "created_at"),
			UpdatedAt: rowTime(row, "updated_at"),
		},
		BranchID:        branchID,
		CustomerName:    rowString(row, "customer_name"),
		CustomerPhone:   rowString(row, "customer_phone"),
		CustomerEmail:   rowString(row, "customer_email"),
		PartySize:       rowInt(row, "party_size"),
		ReservationDate: rowString(row, "reservation_date"),
		ReservationTime: rowString(row, "reservation_time"),
		Status:          model.ReservationStatus(rowString(row, "status")),
		Notes:           rowString(row, "notes"),
	}, true
}

func rowString(row map[string]interface{}, key string) string {
	s, _ := row[key].(string)
	return s
}

func rowInt(row map[string]interface{}, key string) int {
	switch v := row[key].(type) {
	case float64:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func rowTime(row map[string]interface{}, key string) time.Time {
	switch v := row[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (s *Service) encryptPhone(phone string) string {
	if s.enc == nil || phone == "" || strings.HasPrefix(phone, encPrefix) {
		return phone
	}
	ct, err := s.enc.Encrypt([]byte(phone))
	if err != nil {
		s.logger.Warn("failed to encrypt customer phone, storing plaintext")
		return phone
	}
	return encPrefix + base64.StdEncoding.EncodeToString(ct)
}

func (s *Service) decryptPhone(stored string) string {
	if s.enc == nil || !strings.HasPrefix(stored, encPrefix) {
		return stored
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, encPrefix))
	if err != nil {
		return stored
	}
	plain, err := s.enc.Decrypt(raw)
	if err != nil {
		s.logger.Warn("failed to decrypt customer phone")
		return stored
	}
	return string(plain)
}
