package appointment

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	dateTimeLayout = "2006-01-02T15:04"
	dateLayout     = "2006-01-02"
)

// PatientChecker reports whether a patient exists. The patient repository
// satisfies it; keeping the interface local avoids a package cycle.
type PatientChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	repo     Repository
	patients PatientChecker
}

func NewService(repo Repository, patients PatientChecker) *Service {
	return &Service{repo: repo, patients: patients}
}

func parseDateTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(dateTimeLayout, s)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Appointment, error) {
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("%w: patient_id must be a uuid", ErrInvalid)
	}
	if strings.TrimSpace(req.ProviderName) == "" {
		return nil, fmt.Errorf("%w: provider_name is required", ErrInvalid)
	}
	dateTime, err := parseDateTime(req.DateTime)
	if err != nil {
		return nil, fmt.Errorf("%w: date_time must be RFC 3339 or YYYY-MM-DDTHH:MM", ErrInvalid)
	}

	a := &Appointment{
		PatientID:    patientID,
		ProviderName: strings.TrimSpace(req.ProviderName),
		DateTime:     dateTime,
		Reason:       trimPtr(req.Reason),
	}
	if err := applySchedule(a, req.RepeatSchedule, req.EndDate); err != nil {
		return nil, err
	}

	ok, err := s.patients.Exists(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPatientNotFound
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ProviderName != nil {
		if strings.TrimSpace(*req.ProviderName) == "" {
			return nil, fmt.Errorf("%w: provider_name cannot be empty", ErrInvalid)
		}
		a.ProviderName = strings.TrimSpace(*req.ProviderName)
	}
	if req.DateTime != nil {
		dateTime, err := parseDateTime(*req.DateTime)
		if err != nil {
			return nil, fmt.Errorf("%w: date_time must be RFC 3339 or YYYY-MM-DDTHH:MM", ErrInvalid)
		}
		a.DateTime = dateTime
	}
	if req.Reason != nil {
		a.Reason = trimPtr(req.Reason)
	}

	// Schedule fields are validated together so a partial update can never
	// leave an end date without a repeat schedule.
	repeat := req.RepeatSchedule
	if repeat == nil {
		repeat = a.RepeatSchedule
	}
	endDate := req.EndDate
	if endDate == nil && a.EndDate != nil {
		formatted := a.EndDate.Format(dateLayout)
		endDate = &formatted
	}
	a.RepeatSchedule = nil
	a.EndDate = nil
	if err := applySchedule(a, repeat, endDate); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// ListByPatient returns the patient's appointments in chronological order,
// whatever order the repository hands them back in.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	items, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].DateTime.Before(items[j].DateTime) })
	return items, nil
}

// applySchedule normalizes and validates the recurrence pair. An empty
// string clears the field; an end date without a repeat schedule is rejected
// rather than silently dropped.
func applySchedule(a *Appointment, repeat, endDate *string) error {
	if repeat != nil && *repeat != "" {
		if !ValidRepeatSchedules[*repeat] {
			return fmt.Errorf("%w: repeat_schedule must be Daily, Weekly or Monthly", ErrInvalid)
		}
		a.RepeatSchedule = repeat
	}
	if endDate != nil && *endDate != "" {
		if a.RepeatSchedule == nil {
			return fmt.Errorf("%w: end_date requires a repeat_schedule", ErrInvalid)
		}
		t, err := time.Parse(dateLayout, *endDate)
		if err != nil {
			return fmt.Errorf("%w: end_date must be YYYY-MM-DD", ErrInvalid)
		}
		a.EndDate = &t
	}
	return nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
