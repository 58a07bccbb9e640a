// Package ui renders the terminal front end: the patient list with
// adaptive pagination and the session room.
package ui

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/psiclinic/clinic-cli/internal/apiclient"
	"github.com/psiclinic/clinic-cli/internal/config"
	"github.com/psiclinic/clinic-cli/internal/filterstore"
	"github.com/psiclinic/clinic-cli/internal/model"
	"github.com/psiclinic/clinic-cli/internal/querycache"
)

// TerminalWidth reads the current terminal width, falling back to a
// wide layout when stdout is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 120
	}
	return width
}

// PatientListView binds the filter store, the query cache and the
// patient client to a rendered table. The query field plays the role of
// the page URL: all filter state lives there and nowhere else.
type PatientListView struct {
	patients *apiclient.PatientClient
	cache    *querycache.Cache
	cfg      config.UIConfig

	query    url.Values
	width    int
	debounce *Debouncer
}

func NewPatientListView(patients *apiclient.PatientClient, cache *querycache.Cache, cfg config.UIConfig, width int) *PatientListView {
	if width <= 0 {
		width = TerminalWidth()
	}
	return &PatientListView{
		patients: patients,
		cache:    cache,
		cfg:      cfg,
		query:    url.Values{},
		width:    width,
		debounce: NewDebouncer(cfg.SearchDebounce),
	}
}

// PerPage selects the page size for the current width: the larger size
// at or above the breakpoint, the smaller one below it.
func (v *PatientListView) PerPage() int {
	if v.width >= v.cfg.WidthBreakpoint {
		return v.cfg.PerPageWide
	}
	return v.cfg.PerPageNarrow
}

// Resize records a new width. Crossing the breakpoint changes the page
// size, so the view returns to page 1 rather than pointing at a page
// that may no longer exist.
func (v *PatientListView) Resize(width int) {
	if width <= 0 {
		return
	}
	before := v.PerPage()
	v.width = width
	if v.PerPage() != before {
		filterstore.SetPage(v.query, 1)
	}
}

// Search updates the free-text filter after the debounce interval and
// runs onSettled (typically a refetch plus redraw).
func (v *PatientListView) Search(text string, onSettled func()) {
	v.debounce.Do(func() {
		filterstore.SetFilters(v.query, text)
		if onSettled != nil {
			onSettled()
		}
	})
}

// SearchNow applies the filter immediately, bypassing the debounce.
func (v *PatientListView) SearchNow(text string) {
	filterstore.SetFilters(v.query, text)
}

func (v *PatientListView) SetStatus(status string) {
	filterstore.SetStatus(v.query, status)
}

func (v *PatientListView) ClearFilters() {
	filterstore.ClearFilters(v.query)
}

func (v *PatientListView) SetPage(page int) {
	filterstore.SetPage(v.query, page)
}

// NextPage advances one page, bounded by the last fetched total.
func (v *PatientListView) NextPage(totalPages int) {
	page := filterstore.Read(v.query).PageIndex + 1
	if totalPages > 0 && page >= totalPages {
		return
	}
	filterstore.SetPage(v.query, page+1)
}

func (v *PatientListView) PrevPage() {
	page := filterstore.Read(v.query).PageIndex + 1
	if page > 1 {
		filterstore.SetPage(v.query, page-1)
	}
}

// Query exposes the underlying query values, e.g. for persisting the
// view state into a shareable URL.
func (v *PatientListView) Query() url.Values {
	return v.query
}

// Fetch loads the current page through the query cache, deduplicating
// identical in-flight requests.
func (v *PatientListView) Fetch(ctx context.Context) (*model.Page[model.Patient], error) {
	filters := filterstore.Read(v.query)
	params := filterstore.QueryParams(filters, v.PerPage())
	key := querycache.Key("patients", params)

	value, err := v.cache.GetOrFetch(ctx, key, func(ctx context.Context) (interface{}, error) {
		return v.patients.List(ctx, params)
	})
	if err != nil {
		return nil, err
	}
	page, ok := value.(*model.Page[model.Patient])
	if !ok {
		return nil, fmt.Errorf("unexpected cached value for %s", key)
	}
	return page, nil
}

// RenderLoading prints one skeleton row per visible slot.
func (v *PatientListView) RenderLoading(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCPF\tPHONE\tSTATUS")
	for i := 0; i < v.PerPage(); i++ {
		fmt.Fprintln(tw, strings.Repeat("…\t", 3)+"…")
	}
	tw.Flush()
}

// Render fetches and prints the current page. A query failure renders a
// terminal error line; retries are left to the user.
func (v *PatientListView) Render(ctx context.Context, w io.Writer) error {
	page, err := v.Fetch(ctx)
	if err != nil {
		fmt.Fprintf(w, "failed to load patients: %v\n", err)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCPF\tPHONE\tSTATUS")
	for _, p := range page.Items {
		status := "inactive"
		if p.Active {
			status = "active"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Name, FormatCPF(p.CPF), FormatPhone(p.Phone), status)
	}
	tw.Flush()

	fmt.Fprintf(w, "page %d of %d (%d patients)\n", page.PageIndex+1, page.TotalPages(), page.Total)
	return nil
}
