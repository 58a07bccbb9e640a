package stubserver

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/psiclinic/clinic-cli/internal/model"
	"github.com/psiclinic/clinic-cli/pkg/errors"
)

// account is a stub credential record.
type account struct {
	Psychologist model.Psychologist
	PasswordHash []byte
}

// Store keeps every stub entity in memory. It exists so the client can
// be developed and integration-tested without the real backend; nothing
// here survives a restart and that is the point.
type Store struct {
	mu           sync.RWMutex
	accounts     map[string]*account // keyed by email
	patients     map[uuid.UUID]*model.Patient
	appointments map[uuid.UUID]*model.Appointment
	sessions     map[uuid.UUID]*model.Session
	approvals    map[uuid.UUID]*model.Approval
	suggestions  map[uuid.UUID]*model.Suggestion
}

func NewStore() *Store {
	return &Store{
		accounts:     make(map[string]*account),
		patients:     make(map[uuid.UUID]*model.Patient),
		appointments: make(map[uuid.UUID]*model.Appointment),
		sessions:     make(map[uuid.UUID]*model.Session),
		approvals:    make(map[uuid.UUID]*model.Approval),
		suggestions:  make(map[uuid.UUID]*model.Suggestion),
	}
}

func stamp() model.Base {
	now := time.Now().UTC()
	return model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// AddAccount registers a sign-in credential.
func (s *Store) AddAccount(p model.Psychologist, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.Base = stamp()
	}
	s.accounts[strings.ToLower(p.Email)] = &account{Psychologist: p, PasswordHash: hash}
	return nil
}

// Authenticate checks credentials and returns the matching profile.
func (s *Store) Authenticate(email, password string) (*model.Psychologist, error) {
	s.mu.RLock()
	acc, ok := s.accounts[strings.ToLower(email)]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.Unauthorized(model.ErrInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(password)); err != nil {
		return nil, errors.Unauthorized(model.ErrInvalidCredentials)
	}
	p := acc.Psychologist
	return &p, nil
}

// Profile returns the psychologist with the given id.
func (s *Store) Profile(id uuid.UUID) (*model.Psychologist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, acc := range s.accounts {
		if acc.Psychologist.ID == id {
			p := acc.Psychologist
			return &p, nil
		}
	}
	return nil, errors.NewNotFound("psychologist", nil)
}

// CreatePatient stores a new patient. Duplicate CPFs are rejected the
// way the real backend rejects them.
func (s *Store) CreatePatient(p *model.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.patients {
		if existing.CPF == p.CPF {
			return errors.NewConflict("patient with this CPF already exists", nil)
		}
	}
	p.Base = stamp()
	p.Active = true
	s.patients[p.ID] = p
	return nil
}

func (s *Store) GetPatient(id uuid.UUID) (*model.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patients[id]
	if !ok {
		return nil, errors.NewNotFound("patient", nil)
	}
	cp := *p
	return &cp, nil
}

func (s *Store) UpdatePatient(id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.patients[id]
	if !ok {
		return nil, errors.NewNotFound("patient", nil)
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Phone != nil {
		p.Phone = *req.Phone
	}
	if req.Email != nil {
		p.Email = *req.Email
	}
	if req.Gender != nil {
		p.Gender = *req.Gender
	}
	if req.Expertise != nil {
		p.Expertise = *req.Expertise
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if req.ImageURL != nil {
		p.ImageURL = *req.ImageURL
	}
	if req.DateOfBirth != nil {
		if dob, err := time.Parse("2006-01-02", *req.DateOfBirth); err == nil {
			p.DateOfBirth = dob
		}
	}
	p.UpdatedAt = time.Now().UTC()

	cp := *p
	return &cp, nil
}

func (s *Store) DeletePatient(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.patients[id]; !ok {
		return errors.NewNotFound("patient", nil)
	}
	delete(s.patients, id)
	return nil
}

// PatientQuery mirrors the list endpoint's query parameters.
type PatientQuery struct {
	PageIndex int
	PerPage   int
	Name      string
	CPF       string
	Status    string
}

// ListPatients applies filters, sorts by name and paginates.
func (s *Store) ListPatients(q PatientQuery) *model.Page[model.Patient] {
	if q.PerPage <= 0 {
		q.PerPage = 10
	}
	if q.PageIndex < 0 {
		q.PageIndex = 0
	}

	s.mu.RLock()
	matched := make([]model.Patient, 0, len(s.patients))
	for _, p := range s.patients {
		if q.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Name)) {
			continue
		}
		if q.CPF != "" && !strings.Contains(p.CPF, digitsOnly(q.CPF)) {
			continue
		}
		if q.Status == "active" && !p.Active {
			continue
		}
		if q.Status == "inactive" && p.Active {
			continue
		}
		matched = append(matched, *p)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	total := len(matched)
	start := q.PageIndex * q.PerPage
	if start > total {
		start = total
	}
	end := start + q.PerPage
	if end > total {
		end = total
	}

	return &model.Page[model.Patient]{
		Items:     matched[start:end],
		Total:     total,
		PageIndex: q.PageIndex,
		PerPage:   q.PerPage,
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CreateAppointment schedules a new appointment.
func (s *Store) CreateAppointment(a *model.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.Base = stamp()
	}
	if a.Status == "" {
		a.Status = model.AppointmentStatusScheduled
	}
	s.appointments[a.ID] = a
}

func (s *Store) ListAppointments(patientID uuid.UUID, status model.AppointmentStatus) []model.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		if patientID != uuid.Nil && a.PatientID != patientID {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out
}

func (s *Store) UpdateAppointment(id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, errors.NewNotFound("appointment", nil)
	}

	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, errors.NewValidation("invalid appointment status", nil)
		}
		a.Status = *req.Status
	}
	if req.ScheduledAt != nil {
		a.ScheduledAt = *req.ScheduledAt
	}
	if req.Diagnosis != nil {
		a.Diagnosis = *req.Diagnosis
	}
	if req.Notes != nil {
		a.Notes = *req.Notes
	}
	if req.Content != nil {
		a.Content = *req.Content
	}
	a.UpdatedAt = time.Now().UTC()

	cp := *a
	return &cp, nil
}

// StartSession flips a pending appointment to ATTENDING and opens its
// session. Status transitions are owned here, never by the client.
func (s *Store) StartSession(appointmentID uuid.UUID) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[appointmentID]
	if !ok {
		return nil, errors.NewNotFound("appointment", nil)
	}
	if !a.Pending() {
		return nil, errors.NewConflict("appointment cannot be started in status "+string(a.Status), nil)
	}

	a.Status = model.AppointmentStatusAttending
	a.UpdatedAt = time.Now().UTC()

	session := &model.Session{
		Base:          stamp(),
		AppointmentID: appointmentID,
		StartedAt:     time.Now().UTC(),
	}
	s.sessions[session.ID] = session

	cp := *session
	return &cp, nil
}

// FinishSession persists notes, closes the session and marks the
// appointment FINISHED.
func (s *Store) FinishSession(sessionID uuid.UUID, notes string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, errors.NewNotFound("session", nil)
	}
	if session.FinishedAt != nil {
		return nil, errors.NewConflict("session already finished", nil)
	}

	now := time.Now().UTC()
	session.Notes = notes
	session.FinishedAt = &now
	session.UpdatedAt = now

	if a, ok := s.appointments[session.AppointmentID]; ok {
		a.Status = model.AppointmentStatusFinished
		a.Notes = notes
		a.UpdatedAt = now
	}

	cp := *session
	return &cp, nil
}

// AddApproval queues a pending practitioner.
func (s *Store) AddApproval(a *model.Approval) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.Base = stamp()
	}
	if a.RequestedAt.IsZero() {
		a.RequestedAt = time.Now().UTC()
	}
	s.approvals[a.ID] = a
}

func (s *Store) ListApprovals() []model.Approval {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Approval, 0, len(s.approvals))
	for _, a := range s.approvals {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.Before(out[j].RequestedAt) })
	return out
}

func (s *Store) Approve(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.approvals[id]
	if !ok {
		return errors.NewNotFound("approval", nil)
	}
	delete(s.approvals, id)

	for _, acc := range s.accounts {
		if acc.Psychologist.ID == a.PsychologistID {
			acc.Psychologist.Approval = model.ApprovalStatusApproved
		}
	}
	return nil
}

// CreateSuggestion stores a community suggestion in PENDING state.
func (s *Store) CreateSuggestion(sg *model.Suggestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sg.ID == uuid.Nil {
		sg.Base = stamp()
	}
	if sg.Status == "" {
		sg.Status = model.SuggestionStatusPending
	}
	s.suggestions[sg.ID] = sg
}

func (s *Store) ListSuggestions() []model.Suggestion {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Suggestion, 0, len(s.suggestions))
	for _, sg := range s.suggestions {
		out = append(out, *sg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *Store) LikeSuggestion(id uuid.UUID) (*model.Suggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sg, ok := s.suggestions[id]
	if !ok {
		return nil, errors.NewNotFound("suggestion", nil)
	}
	sg.Likes++
	sg.UpdatedAt = time.Now().UTC()

	cp := *sg
	return &cp, nil
}

// TransitionSuggestion advances a suggestion along its lifecycle.
func (s *Store) TransitionSuggestion(id uuid.UUID, next model.SuggestionStatus) (*model.Suggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sg, ok := s.suggestions[id]
	if !ok {
		return nil, errors.NewNotFound("suggestion", nil)
	}

	allowed := false
	for _, st := range sg.Status.NextStatuses() {
		if st == next {
			allowed = true
		}
	}
	if !allowed {
		return nil, errors.NewConflict("invalid suggestion transition "+string(sg.Status)+" -> "+string(next), nil)
	}

	sg.Status = next
	sg.UpdatedAt = time.Now().UTC()

	cp := *sg
	return &cp, nil
}
