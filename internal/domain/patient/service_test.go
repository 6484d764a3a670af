package patient

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/medrec/medrec/internal/domain/appointment"
	"github.com/medrec/medrec/internal/domain/prescription"
)

// testBcryptCost keeps the hashing in tests fast.
const testBcryptCost = 4

type mockRepo struct {
	items map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	for _, existing := range m.items {
		if existing.Email == p.Email {
			return ErrDuplicateEmail
		}
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*Patient, error) {
	for _, p := range m.items {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.items[p.ID]; !ok {
		return ErrNotFound
	}
	for id, existing := range m.items {
		if id != p.ID && existing.Email == p.Email {
			return ErrDuplicateEmail
		}
	}
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var items []*Patient
	for _, p := range m.items {
		items = append(items, p)
	}
	return items, len(m.items), nil
}

func (m *mockRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.items[id]
	return ok, nil
}

type mockAppts struct {
	byPatient map[uuid.UUID][]*appointment.Appointment
}

func (m *mockAppts) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	return m.byPatient[patientID], nil
}

func (m *mockAppts) DeleteByPatient(_ context.Context, patientID uuid.UUID) error {
	delete(m.byPatient, patientID)
	return nil
}

type mockRxs struct {
	byPatient map[uuid.UUID][]*prescription.Prescription
	failOn    uuid.UUID
}

func (m *mockRxs) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*prescription.Prescription, error) {
	return m.byPatient[patientID], nil
}

func (m *mockRxs) DeleteByPatient(_ context.Context, patientID uuid.UUID) error {
	if patientID == m.failOn {
		return errors.New("storage failure")
	}
	delete(m.byPatient, patientID)
	return nil
}

// passthroughTx mimics db.WithTx without a database: it runs fn and records
// that it was invoked.
type txRecorder struct {
	calls int
}

func (t *txRecorder) run(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type fixture struct {
	svc   *Service
	repo  *mockRepo
	appts *mockAppts
	rxs   *mockRxs
	tx    *txRecorder
}

func newFixture() *fixture {
	repo := newMockRepo()
	appts := &mockAppts{byPatient: make(map[uuid.UUID][]*appointment.Appointment)}
	rxs := &mockRxs{byPatient: make(map[uuid.UUID][]*prescription.Prescription)}
	tx := &txRecorder{}
	return &fixture{
		svc:   NewService(repo, appts, rxs, tx.run, testBcryptCost),
		repo:  repo,
		appts: appts,
		rxs:   rxs,
		tx:    tx,
	}
}

func strPtr(s string) *string { return &s }

func validCreate() CreateRequest {
	return CreateRequest{
		FirstName:   "Maya",
		LastName:    "Lindqvist",
		Email:       "maya@example.com",
		Password:    "correct horse battery",
		DateOfBirth: "1988-04-12",
		Phone:       strPtr("555-0142"),
	}
}

func TestCreate(t *testing.T) {
	f := newFixture()

	p, err := f.svc.Create(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected id to be assigned")
	}
	if p.PasswordHash == "" || p.PasswordHash == "correct horse battery" {
		t.Error("password must be stored hashed")
	}
	if !strings.HasPrefix(p.PasswordHash, "$2") {
		t.Errorf("password_hash = %q, want bcrypt", p.PasswordHash)
	}
}

func TestCreate_NormalizesEmail(t *testing.T) {
	f := newFixture()
	req := validCreate()
	req.Email = "  Maya@Example.COM "

	p, err := f.svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.Email != "maya@example.com" {
		t.Errorf("email = %q, want lowercased and trimmed", p.Email)
	}
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name   string
		mutate func(*CreateRequest)
	}{
		{"missing first name", func(r *CreateRequest) { r.FirstName = " " }},
		{"missing last name", func(r *CreateRequest) { r.LastName = "" }},
		{"malformed email", func(r *CreateRequest) { r.Email = "not-an-email" }},
		{"short password", func(r *CreateRequest) { r.Password = "short" }},
		{"bad date of birth", func(r *CreateRequest) { r.DateOfBirth = "12/04/1988" }},
		{"future date of birth", func(r *CreateRequest) { r.DateOfBirth = "2099-01-01" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreate()
			tt.mutate(&req)
			if _, err := f.svc.Create(context.Background(), req); !errors.Is(err, ErrInvalid) {
				t.Errorf("Create() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.Create(context.Background(), validCreate()); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}

	_, err := f.svc.Create(context.Background(), validCreate())
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("Create() error = %v, want ErrDuplicateEmail", err)
	}
}

func TestVerifyCredentials(t *testing.T) {
	f := newFixture()
	created, err := f.svc.Create(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	p, err := f.svc.VerifyCredentials(context.Background(), "maya@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("VerifyCredentials() error = %v", err)
	}
	if p.ID != created.ID {
		t.Error("returned wrong patient")
	}

	// Case and whitespace in the email must not matter.
	if _, err := f.svc.VerifyCredentials(context.Background(), " MAYA@example.com ", "correct horse battery"); err != nil {
		t.Errorf("normalized email error = %v", err)
	}

	if _, err := f.svc.VerifyCredentials(context.Background(), "maya@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := f.svc.VerifyCredentials(context.Background(), "nobody@example.com", "correct horse battery"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v, want ErrInvalidCredentials", err)
	}
}

func TestUpdate_PasswordRehashed(t *testing.T) {
	f := newFixture()
	p, err := f.svc.Create(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	oldHash := p.PasswordHash

	updated, err := f.svc.Update(context.Background(), p.ID, UpdateRequest{Password: strPtr("a brand new secret")})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.PasswordHash == oldHash {
		t.Error("expected a new hash")
	}
	if _, err := f.svc.VerifyCredentials(context.Background(), p.Email, "a brand new secret"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
	if _, err := f.svc.VerifyCredentials(context.Background(), p.Email, "correct horse battery"); !errors.Is(err, ErrInvalidCredentials) {
		t.Error("old password still accepted")
	}
}

func TestGetWithRecords(t *testing.T) {
	f := newFixture()
	p, err := f.svc.Create(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	f.appts.byPatient[p.ID] = []*appointment.Appointment{
		{ID: uuid.New(), PatientID: p.ID, ProviderName: "Dr. Haynes"},
	}

	got, err := f.svc.GetWithRecords(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetWithRecords() error = %v", err)
	}
	if len(got.Appointments) != 1 {
		t.Errorf("appointments = %d, want 1", len(got.Appointments))
	}
	if got.Prescriptions == nil {
		t.Error("prescriptions must be an empty slice, not nil")
	}
}

func TestGetWithRecords_Ordering(t *testing.T) {
	f := newFixture()
	p, err := f.svc.Create(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	day := func(d int) time.Time { return time.Date(2026, 9, d, 0, 0, 0, 0, time.UTC) }
	f.appts.byPatient[p.ID] = []*appointment.Appointment{
		{ID: uuid.New(), PatientID: p.ID, DateTime: day(20)},
		{ID: uuid.New(), PatientID: p.ID, DateTime: day(5)},
		{ID: uuid.New(), PatientID: p.ID, DateTime: day(12)},
	}
	f.rxs.byPatient[p.ID] = []*prescription.Prescription{
		{ID: uuid.New(), PatientID: p.ID, RefillDate: day(28)},
		{ID: uuid.New(), PatientID: p.ID, RefillDate: day(3)},
	}

	got, err := f.svc.GetWithRecords(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetWithRecords() error = %v", err)
	}
	for i := 1; i < len(got.Appointments); i++ {
		if got.Appointments[i].DateTime.Before(got.Appointments[i-1].DateTime) {
			t.Fatal("appointments not in chronological order")
		}
	}
	if !got.Prescriptions[0].RefillDate.Equal(day(3)) {
		t.Error("prescriptions not ordered by refill date")
	}
}

func TestDelete_Cascades(t *testing.T) {
	f := newFixture()
	p, err := f.svc.Create(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	f.appts.byPatient[p.ID] = []*appointment.Appointment{{ID: uuid.New(), PatientID: p.ID}}
	f.rxs.byPatient[p.ID] = []*prescription.Prescription{{ID: uuid.New(), PatientID: p.ID}}

	if err := f.svc.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if f.tx.calls != 1 {
		t.Errorf("transaction runs = %d, want 1", f.tx.calls)
	}
	if _, ok := f.appts.byPatient[p.ID]; ok {
		t.Error("appointments survived the cascade")
	}
	if _, ok := f.rxs.byPatient[p.ID]; ok {
		t.Error("prescriptions survived the cascade")
	}
	if _, err := f.svc.GetByID(context.Background(), p.ID); !errors.Is(err, ErrNotFound) {
		t.Error("patient survived the cascade")
	}
}

func TestDelete_FailurePropagates(t *testing.T) {
	f := newFixture()
	p, err := f.svc.Create(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	f.rxs.failOn = p.ID

	if err := f.svc.Delete(context.Background(), p.ID); err == nil {
		t.Fatal("expected error from failing prescription delete")
	}
}
