package prescription

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

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

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Prescription, error) {
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("%w: patient_id must be a uuid", ErrInvalid)
	}
	if strings.TrimSpace(req.MedicationName) == "" {
		return nil, fmt.Errorf("%w: medication_name is required", ErrInvalid)
	}
	if strings.TrimSpace(req.Dosage) == "" {
		return nil, fmt.Errorf("%w: dosage is required", ErrInvalid)
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalid)
	}
	refillDate, err := time.Parse(dateLayout, req.RefillDate)
	if err != nil {
		return nil, fmt.Errorf("%w: refill_date must be YYYY-MM-DD", ErrInvalid)
	}
	if !ValidRefillSchedules[req.RefillSchedule] {
		return nil, fmt.Errorf("%w: refill_schedule must be Weekly, Monthly, Quarterly or As Needed", ErrInvalid)
	}

	ok, err := s.patients.Exists(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPatientNotFound
	}

	p := &Prescription{
		PatientID:      patientID,
		MedicationName: strings.TrimSpace(req.MedicationName),
		Dosage:         strings.TrimSpace(req.Dosage),
		Quantity:       req.Quantity,
		RefillDate:     refillDate,
		RefillSchedule: req.RefillSchedule,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Prescription, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.MedicationName != nil {
		if strings.TrimSpace(*req.MedicationName) == "" {
			return nil, fmt.Errorf("%w: medication_name cannot be empty", ErrInvalid)
		}
		p.MedicationName = strings.TrimSpace(*req.MedicationName)
	}
	if req.Dosage != nil {
		if strings.TrimSpace(*req.Dosage) == "" {
			return nil, fmt.Errorf("%w: dosage cannot be empty", ErrInvalid)
		}
		p.Dosage = strings.TrimSpace(*req.Dosage)
	}
	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalid)
		}
		p.Quantity = *req.Quantity
	}
	if req.RefillDate != nil {
		refillDate, err := time.Parse(dateLayout, *req.RefillDate)
		if err != nil {
			return nil, fmt.Errorf("%w: refill_date must be YYYY-MM-DD", ErrInvalid)
		}
		p.RefillDate = refillDate
	}
	if req.RefillSchedule != nil {
		if !ValidRefillSchedules[*req.RefillSchedule] {
			return nil, fmt.Errorf("%w: refill_schedule must be Weekly, Monthly, Quarterly or As Needed", ErrInvalid)
		}
		p.RefillSchedule = *req.RefillSchedule
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Prescription, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// ListByPatient returns the patient's prescriptions ordered by refill date,
// whatever order the repository hands them back in.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error) {
	items, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].RefillDate.Before(items[j].RefillDate) })
	return items, nil
}
