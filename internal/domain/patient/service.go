package patient

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medrec/medrec/internal/domain/appointment"
	"github.com/medrec/medrec/internal/domain/prescription"
	"github.com/medrec/medrec/internal/platform/auth"
)

const (
	dateLayout        = "2006-01-02"
	minPasswordLength = 8
)

// AppointmentStore is the slice of the appointment repository the patient
// service needs for detail views and the cascade delete.
type AppointmentStore interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error)
	DeleteByPatient(ctx context.Context, patientID uuid.UUID) error
}

// PrescriptionStore mirrors AppointmentStore for prescriptions.
type PrescriptionStore interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*prescription.Prescription, error)
	DeleteByPatient(ctx context.Context, patientID uuid.UUID) error
}

// TxRunner runs fn so that every repository call inside commits or rolls
// back as one unit. In production it is db.WithTx bound to the pool.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	repo       Repository
	appts      AppointmentStore
	rxs        PrescriptionStore
	runTx      TxRunner
	bcryptCost int
}

func NewService(repo Repository, appts AppointmentStore, rxs PrescriptionStore, runTx TxRunner, bcryptCost int) *Service {
	return &Service{repo: repo, appts: appts, rxs: rxs, runTx: runTx, bcryptCost: bcryptCost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Patient, error) {
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return nil, fmt.Errorf("%w: first_name and last_name are required", ErrInvalid)
	}
	email := normalizeEmail(req.Email)
	if !validEmail(email) {
		return nil, fmt.Errorf("%w: email is malformed", ErrInvalid)
	}
	if len(req.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalid, minPasswordLength)
	}
	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("%w: date_of_birth must be YYYY-MM-DD", ErrInvalid)
	}
	if dob.After(time.Now()) {
		return nil, fmt.Errorf("%w: date_of_birth cannot be in the future", ErrInvalid)
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	p := &Patient{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: hash,
		DateOfBirth:  dob,
		Phone:        trimPtr(req.Phone),
		Address:      trimPtr(req.Address),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

// GetWithRecords returns the patient plus their appointments and
// prescriptions, each in the order the repositories define.
func (s *Service) GetWithRecords(ctx context.Context, id uuid.UUID) (*WithRecords, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	appts, err := s.appts.ListByPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	rxs, err := s.rxs.ListByPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	if appts == nil {
		appts = []*appointment.Appointment{}
	}
	if rxs == nil {
		rxs = []*prescription.Prescription{}
	}
	sort.SliceStable(appts, func(i, j int) bool { return appts[i].DateTime.Before(appts[j].DateTime) })
	sort.SliceStable(rxs, func(i, j int) bool { return rxs[i].RefillDate.Before(rxs[j].RefillDate) })
	return &WithRecords{Patient: *p, Appointments: appts, Prescriptions: rxs}, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		if strings.TrimSpace(*req.FirstName) == "" {
			return nil, fmt.Errorf("%w: first_name cannot be empty", ErrInvalid)
		}
		p.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		if strings.TrimSpace(*req.LastName) == "" {
			return nil, fmt.Errorf("%w: last_name cannot be empty", ErrInvalid)
		}
		p.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if !validEmail(email) {
			return nil, fmt.Errorf("%w: email is malformed", ErrInvalid)
		}
		p.Email = email
	}
	if req.Password != nil {
		if len(*req.Password) < minPasswordLength {
			return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalid, minPasswordLength)
		}
		hash, err := auth.HashPassword(*req.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		p.PasswordHash = hash
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse(dateLayout, *req.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("%w: date_of_birth must be YYYY-MM-DD", ErrInvalid)
		}
		p.DateOfBirth = dob
	}
	if req.Phone != nil {
		p.Phone = trimPtr(req.Phone)
	}
	if req.Address != nil {
		p.Address = trimPtr(req.Address)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the patient and every record they own in one transaction.
// Children go first so the patient row's foreign keys never dangle; if any
// step fails the whole delete rolls back.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.runTx(ctx, func(ctx context.Context) error {
		if err := s.appts.DeleteByPatient(ctx, id); err != nil {
			return err
		}
		if err := s.rxs.DeleteByPatient(ctx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, id)
	})
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// VerifyCredentials checks an email and password pair. Unknown email and
// wrong password collapse into the same ErrInvalidCredentials; the dummy
// compare in CheckPassword keeps the two paths close in timing.
func (s *Service) VerifyCredentials(ctx context.Context, email, password string) (*Patient, error) {
	p, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		auth.CheckPassword("", password)
		return nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(p.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return p, nil
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
