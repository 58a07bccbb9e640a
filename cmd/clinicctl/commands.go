package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/psiclinic/clinic-cli/internal/authstore"
	"github.com/psiclinic/clinic-cli/internal/model"
	"github.com/psiclinic/clinic-cli/internal/sessionctrl"
	"github.com/psiclinic/clinic-cli/internal/ui"
)

func (a *app) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), a.cfg.API.Timeout+5*time.Second)
}

func (a *app) cmdLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	req := &model.LoginRequest{Email: *email, Password: *password}
	if err := a.validate.Validate(req); err != nil {
		return err
	}

	ctx, cancel := a.ctx()
	defer cancel()

	res, err := a.client.Auth().Login(ctx, req)
	if err != nil {
		return err
	}
	if err := a.store.SaveToken(res.AccessToken); err != nil {
		return err
	}

	profile, err := a.client.Auth().Me(ctx)
	if err == nil {
		_ = a.store.SaveProfile(profile)
		fmt.Printf("signed in as %s\n", profile.Name)
	} else {
		fmt.Println("signed in")
	}
	return nil
}

func (a *app) cmdMe(args []string) error {
	if authstore.TokenExpired(a.client.Token(), time.Now()) {
		return fmt.Errorf("not signed in, run `clinicctl login`")
	}

	ctx, cancel := a.ctx()
	defer cancel()

	profile, err := a.client.Auth().Me(ctx)
	if err != nil {
		return err
	}
	_ = a.store.SaveProfile(profile)

	fmt.Printf("%s (CRP %s)\n%s\napproval: %s\n", profile.Name, profile.CRP, profile.Email, profile.Approval)
	return nil
}

func (a *app) cmdPatients(args []string) error {
	fs := flag.NewFlagSet("patients", flag.ExitOnError)
	search := fs.String("search", "", "free-text search: digits search CPF, anything else searches names")
	status := fs.String("status", "", "filter by status: active or inactive")
	page := fs.Int("page", 1, "1-based page number")
	fs.Parse(args)

	view := ui.NewPatientListView(a.client.Patients(), a.cache, a.cfg.UI, ui.TerminalWidth())
	if *search != "" {
		view.SearchNow(*search)
	}
	if *status != "" {
		view.SetStatus(*status)
	}
	if *page > 1 {
		view.SetPage(*page)
	}

	ctx, cancel := a.ctx()
	defer cancel()

	view.RenderLoading(os.Stdout)
	fmt.Println()
	return view.Render(ctx, os.Stdout)
}

func (a *app) cmdPatient(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: clinicctl patient <add|delete> ...")
	}

	switch args[0] {
	case "add":
		return a.patientAdd(args[1:])
	case "delete":
		return a.patientDelete(args[1:])
	default:
		return fmt.Errorf("unknown patient subcommand %q", args[0])
	}
}

func (a *app) patientAdd(args []string) error {
	fs := flag.NewFlagSet("patient add", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	cpf := fs.String("cpf", "", "CPF")
	phone := fs.String("phone", "", "phone number")
	email := fs.String("email", "", "email")
	dob := fs.String("dob", "", "date of birth, YYYY-MM-DD")
	gender := fs.String("gender", "other", "female, male or other")
	fs.Parse(args)

	req := &model.CreatePatientRequest{
		Name:        *name,
		CPF:         *cpf,
		Phone:       *phone,
		Email:       *email,
		DateOfBirth: *dob,
		Gender:      model.Gender(*gender),
	}
	// Form validation happens before any network call.
	if err := a.validate.Validate(req); err != nil {
		return err
	}

	ctx, cancel := a.ctx()
	defer cancel()

	patient, err := a.client.Patients().Create(ctx, req)
	if err != nil {
		return err
	}
	a.cache.InvalidatePrefix("patients")
	fmt.Printf("created patient %s (%s)\n", patient.Name, patient.ID)
	return nil
}

func (a *app) patientDelete(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: clinicctl patient delete <id>")
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid patient id: %w", err)
	}

	// Destructive action: explicit confirmation before the request.
	fmt.Printf("delete patient %s? [y/N] ", id)
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	if strings.TrimSpace(strings.ToLower(answer)) != "y" {
		fmt.Println("aborted")
		return nil
	}

	ctx, cancel := a.ctx()
	defer cancel()

	if err := a.client.Patients().Delete(ctx, id); err != nil {
		return err
	}
	a.cache.InvalidatePrefix("patients")
	fmt.Println("patient deleted")
	return nil
}

func (a *app) cmdSession(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: clinicctl session <patient-id>")
	}
	patientID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid patient id: %w", err)
	}

	drafts, err := sessionctrl.NewFileDraftStore(filepath.Join(a.store.Dir(), "drafts"))
	if err != nil {
		return err
	}
	ctrl := sessionctrl.New(a.client.Appointments(), a.client.Sessions(), a.cache, drafts)

	ctx := context.Background()
	if err := ctrl.SelectPatient(ctx, patientID); err != nil {
		return err
	}
	snap := ctrl.Snapshot()
	fmt.Printf("patient selected, appointment %s at %s\n",
		snap.Appointment.ID, snap.Appointment.ScheduledAt.Format(time.RFC1123))
	if snap.Notes != "" {
		fmt.Println("draft notes restored")
	}

	fmt.Println("commands: start | note <text> | draft | finish | status | quit")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		cmd, rest, _ := strings.Cut(line, " ")

		switch cmd {
		case "start":
			if err := ctrl.Start(ctx); err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Println("session started")
		case "note":
			ctrl.AppendNotes(rest + "\n")
		case "draft":
			if err := ctrl.SaveDraft(); err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Println("draft saved locally")
		case "finish":
			if err := ctrl.Finish(ctx); err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Println("session finished, notes submitted")
			return nil
		case "status":
			s := ctrl.Snapshot()
			fmt.Printf("state=%s active=%v notes=%d chars\n", s.State, s.IsSessionActive, len([]rune(s.Notes)))
		case "quit":
			if ctrl.Snapshot().IsSessionActive {
				fmt.Println("session still active; finish it or notes stay unsent")
			}
			return nil
		default:
			fmt.Println("commands: start | note <text> | draft | finish | status | quit")
		}
	}
}

func (a *app) cmdApprovals(args []string) error {
	ctx, cancel := a.ctx()
	defer cancel()

	if len(args) == 2 && args[0] == "approve" {
		return a.approve(ctx, args[1])
	}

	approvals, err := a.client.Approvals().List(ctx)
	if err != nil {
		return err
	}
	a.cache.Set("approvals", approvals)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCRP\tREQUESTED")
	for _, ap := range approvals {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ap.ID, ap.Name, ap.CRP, ap.RequestedAt.Format("2006-01-02"))
	}
	return tw.Flush()
}

// approve removes the entry optimistically and rolls back to the exact
// prior list if the backend rejects the call.
func (a *app) approve(ctx context.Context, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid approval id: %w", err)
	}

	if _, ok := a.cache.Get("approvals"); !ok {
		approvals, err := a.client.Approvals().List(ctx)
		if err != nil {
			return err
		}
		a.cache.Set("approvals", approvals)
	}

	removeApproved := func(v interface{}) interface{} {
		list := v.([]model.Approval)
		out := make([]model.Approval, 0, len(list))
		for _, ap := range list {
			if ap.ID != id {
				out = append(out, ap)
			}
		}
		return out
	}

	err = a.cache.Mutate(ctx, "approvals", removeApproved, func(ctx context.Context) error {
		return a.client.Approvals().Approve(ctx, id)
	})
	if err != nil {
		fmt.Println("approval failed, list restored")
		return err
	}
	fmt.Println("practitioner approved")
	return nil
}

func (a *app) cmdSuggestions(args []string) error {
	ctx, cancel := a.ctx()
	defer cancel()

	if len(args) > 0 {
		switch args[0] {
		case "new":
			return a.suggestionNew(ctx, args[1:])
		case "like":
			if len(args) != 2 {
				return fmt.Errorf("usage: clinicctl suggestions like <id>")
			}
			id, err := uuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid suggestion id: %w", err)
			}
			suggestion, err := a.client.Suggestions().Like(ctx, id)
			if err != nil {
				return err
			}
			fmt.Printf("%q now has %d likes\n", suggestion.Title, suggestion.Likes)
			return nil
		default:
			return fmt.Errorf("unknown suggestions subcommand %q", args[0])
		}
	}

	suggestions, err := a.client.Suggestions().List(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tSTATUS\tLIKES")
	for _, sg := range suggestions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", sg.ID, sg.Title, sg.Category, sg.Status, sg.Likes)
	}
	return tw.Flush()
}

func (a *app) suggestionNew(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("suggestions new", flag.ExitOnError)
	title := fs.String("title", "", "suggestion title")
	description := fs.String("description", "", "longer description")
	category := fs.String("category", "OTHER", "FEATURE, IMPROVEMENT, BUG or OTHER")
	fs.Parse(args)

	req := &model.CreateSuggestionRequest{
		Title:       *title,
		Description: *description,
		Category:    model.SuggestionCategory(*category),
	}
	if err := a.validate.Validate(req); err != nil {
		return err
	}

	suggestion, err := a.client.Suggestions().Create(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("suggestion %s created\n", suggestion.ID)
	return nil
}
