package stubserver

import (
	"time"

	"github.com/google/uuid"

	"github.com/psiclinic/clinic-cli/internal/model"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password123"

// DemoEmail signs into the seeded psychologist.
const DemoEmail = "dra.ana@psiclinic.com.br"

// SeedDemo loads a small demo data set: one approved psychologist, a
// handful of patients with scheduled appointments, two pending
// approvals and a few suggestions.
func SeedDemo(s *Store) error {
	psy := model.Psychologist{
		Base:      model.Base{ID: uuid.New(), CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()},
		Name:      "Dra. Ana Carvalho",
		CRP:       "06/123456",
		Email:     DemoEmail,
		Phone:     "11987654321",
		Expertise: "Cognitive Behavioral Therapy",
		Approval:  model.ApprovalStatusApproved,
	}
	if err := s.AddAccount(psy, DemoPassword); err != nil {
		return err
	}

	patients := []*model.Patient{
		{Name: "Maria Silva", CPF: "52998224725", Phone: "11912345678", Email: "maria@example.com", Gender: model.GenderFemale},
		{Name: "João Souza", CPF: "11144477735", Phone: "21998765432", Email: "joao@example.com", Gender: model.GenderMale},
		{Name: "Carla Pereira", CPF: "35524678901", Phone: "31987651234", Email: "carla@example.com", Gender: model.GenderFemale},
	}
	for i, p := range patients {
		p.DateOfBirth = time.Date(1985+i*5, time.March, 10, 0, 0, 0, 0, time.UTC)
		if err := s.CreatePatient(p); err != nil {
			return err
		}
		s.CreateAppointment(&model.Appointment{
			PatientID:      p.ID,
			PsychologistID: psy.ID,
			ScheduledAt:    time.Now().Add(time.Duration(i+1) * time.Hour),
		})
	}

	pendingStaff := []struct{ name, email string }{
		{"Dr. Bruno Lima", "bruno.lima@psiclinic.com.br"},
		{"Dra. Paula Rocha", "paula.rocha@psiclinic.com.br"},
	}
	for _, staff := range pendingStaff {
		pending := model.Psychologist{
			Base:     model.Base{ID: uuid.New(), CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()},
			Name:     staff.name,
			Email:    staff.email,
			Approval: model.ApprovalStatusPending,
		}
		if err := s.AddAccount(pending, DemoPassword); err != nil {
			return err
		}
		s.AddApproval(&model.Approval{
			PsychologistID: pending.ID,
			Name:           pending.Name,
			Email:          pending.Email,
			CRP:            "06/654321",
		})
	}

	s.CreateSuggestion(&model.Suggestion{
		AuthorID: psy.ID,
		Title:    "Dark mode for the session room",
		Category: model.SuggestionCategoryFeature,
	})
	s.CreateSuggestion(&model.Suggestion{
		AuthorID:    psy.ID,
		Title:       "Export session notes as PDF",
		Description: "Useful for clinics that archive paper records.",
		Category:    model.SuggestionCategoryImprovement,
	})

	return nil
}
