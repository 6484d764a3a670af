package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	items map[uuid.UUID]*Appointment
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	cp := *a
	m.items[a.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, a *Appointment) error {
	if _, ok := m.items[a.ID]; !ok {
		return ErrNotFound
	}
	cp := *a
	m.items[a.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Appointment, int, error) {
	var items []*Appointment
	for _, a := range m.items {
		items = append(items, a)
	}
	return items, len(m.items), nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	var items []*Appointment
	for _, a := range m.items {
		if a.PatientID == patientID {
			items = append(items, a)
		}
	}
	return items, nil
}

func (m *mockRepo) DeleteByPatient(_ context.Context, patientID uuid.UUID) error {
	for id, a := range m.items {
		if a.PatientID == patientID {
			delete(m.items, id)
		}
	}
	return nil
}

type mockPatients struct {
	known map[uuid.UUID]bool
}

func (m *mockPatients) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return m.known[id], nil
}

func newTestService() (*Service, *mockRepo, uuid.UUID) {
	repo := newMockRepo()
	patientID := uuid.New()
	patients := &mockPatients{known: map[uuid.UUID]bool{patientID: true}}
	return NewService(repo, patients), repo, patientID
}

func strPtr(s string) *string { return &s }

func TestCreate(t *testing.T) {
	svc, _, patientID := newTestService()

	a, err := svc.Create(context.Background(), CreateRequest{
		PatientID:    patientID.String(),
		ProviderName: "Dr. Haynes",
		DateTime:     "2026-09-15T10:30",
		Reason:       strPtr("Annual physical"),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if a.ID == uuid.Nil {
		t.Error("expected id to be assigned")
	}
	if a.DateTime.Hour() != 10 || a.DateTime.Minute() != 30 {
		t.Errorf("date_time parsed as %v", a.DateTime)
	}
	if a.RepeatSchedule != nil {
		t.Error("expected no repeat schedule")
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _, patientID := newTestService()

	tests := []struct {
		name string
		req  CreateRequest
		want error
	}{
		{
			"missing provider",
			CreateRequest{PatientID: patientID.String(), DateTime: "2026-09-15T10:30"},
			ErrInvalid,
		},
		{
			"bad patient id",
			CreateRequest{PatientID: "not-a-uuid", ProviderName: "Dr. Haynes", DateTime: "2026-09-15T10:30"},
			ErrInvalid,
		},
		{
			"unparseable date",
			CreateRequest{PatientID: patientID.String(), ProviderName: "Dr. Haynes", DateTime: "tomorrow"},
			ErrInvalid,
		},
		{
			"unknown repeat schedule",
			CreateRequest{PatientID: patientID.String(), ProviderName: "Dr. Haynes", DateTime: "2026-09-15T10:30", RepeatSchedule: strPtr("Yearly")},
			ErrInvalid,
		},
		{
			"end date without repeat",
			CreateRequest{PatientID: patientID.String(), ProviderName: "Dr. Haynes", DateTime: "2026-09-15T10:30", EndDate: strPtr("2026-12-01")},
			ErrInvalid,
		},
		{
			"unknown patient",
			CreateRequest{PatientID: uuid.New().String(), ProviderName: "Dr. Haynes", DateTime: "2026-09-15T10:30"},
			ErrPatientNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("Create() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCreate_Recurring(t *testing.T) {
	svc, _, patientID := newTestService()

	a, err := svc.Create(context.Background(), CreateRequest{
		PatientID:      patientID.String(),
		ProviderName:   "Dr. Haynes",
		DateTime:       "2026-09-15T10:30",
		RepeatSchedule: strPtr(RepeatWeekly),
		EndDate:        strPtr("2026-12-01"),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if a.RepeatSchedule == nil || *a.RepeatSchedule != RepeatWeekly {
		t.Errorf("repeat_schedule = %v, want Weekly", a.RepeatSchedule)
	}
	if a.EndDate == nil || a.EndDate.Format("2006-01-02") != "2026-12-01" {
		t.Errorf("end_date = %v", a.EndDate)
	}
}

func TestListByPatient_Ordering(t *testing.T) {
	svc, _, patientID := newTestService()

	// Inserted newest first; the list must still come back chronological.
	for _, dt := range []string{"2026-12-01T09:00", "2026-09-15T10:30", "2026-10-20T14:00"} {
		if _, err := svc.Create(context.Background(), CreateRequest{
			PatientID:    patientID.String(),
			ProviderName: "Dr. Haynes",
			DateTime:     dt,
		}); err != nil {
			t.Fatalf("Create(%s) error = %v", dt, err)
		}
	}

	items, err := svc.ListByPatient(context.Background(), patientID)
	if err != nil {
		t.Fatalf("ListByPatient() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i].DateTime.Before(items[i-1].DateTime) {
			t.Fatalf("appointments out of order: %v before %v", items[i-1].DateTime, items[i].DateTime)
		}
	}
}

func TestUpdate(t *testing.T) {
	svc, _, patientID := newTestService()
	a, err := svc.Create(context.Background(), CreateRequest{
		PatientID:    patientID.String(),
		ProviderName: "Dr. Haynes",
		DateTime:     "2026-09-15T10:30",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := svc.Update(context.Background(), a.ID, UpdateRequest{
		ProviderName:   strPtr("Dr. Okafor"),
		RepeatSchedule: strPtr(RepeatMonthly),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.ProviderName != "Dr. Okafor" {
		t.Errorf("provider_name = %q", updated.ProviderName)
	}
	if updated.RepeatSchedule == nil || *updated.RepeatSchedule != RepeatMonthly {
		t.Errorf("repeat_schedule = %v", updated.RepeatSchedule)
	}
	if !updated.DateTime.Equal(a.DateTime) {
		t.Error("date_time should be unchanged")
	}
}

func TestUpdate_ClearSchedule(t *testing.T) {
	svc, _, patientID := newTestService()
	a, err := svc.Create(context.Background(), CreateRequest{
		PatientID:      patientID.String(),
		ProviderName:   "Dr. Haynes",
		DateTime:       "2026-09-15T10:30",
		RepeatSchedule: strPtr(RepeatDaily),
		EndDate:        strPtr("2026-10-01"),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Clearing the repeat schedule must clear the end date too, otherwise
	// the update would leave an end date on a one-off appointment.
	_, err = svc.Update(context.Background(), a.ID, UpdateRequest{RepeatSchedule: strPtr("")})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected invalid when end date survives a cleared schedule, got %v", err)
	}

	updated, err := svc.Update(context.Background(), a.ID, UpdateRequest{
		RepeatSchedule: strPtr(""),
		EndDate:        strPtr(""),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.RepeatSchedule != nil || updated.EndDate != nil {
		t.Errorf("schedule not cleared: %v %v", updated.RepeatSchedule, updated.EndDate)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Update(context.Background(), uuid.New(), UpdateRequest{ProviderName: strPtr("Dr. Okafor")})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	svc, repo, patientID := newTestService()
	a, err := svc.Create(context.Background(), CreateRequest{
		PatientID:    patientID.String(),
		ProviderName: "Dr. Haynes",
		DateTime:     "2026-09-15T10:30",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Delete(context.Background(), a.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(repo.items) != 0 {
		t.Error("expected appointment removed")
	}
	if err := svc.Delete(context.Background(), a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}
