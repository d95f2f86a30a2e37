package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"

	"github.com/a-h/templ"
	"github.com/edusync/edusync/internal/migrate"
	"github.com/edusync/edusync/internal/sources"
	"github.com/edusync/edusync/internal/web/templates"
)

// DataLoader pulls the raw dataset from the connected legacy systems. The
// demo wires this to the seed generator.
type DataLoader func() migrate.Dataset

// Handler serves the demo pages and the workflow API.
type Handler struct {
	session *migrate.Session
	catalog *sources.Catalog
	load    DataLoader
}

// NewHandler builds the HTTP handler around one migration session.
func NewHandler(session *migrate.Session, catalog *sources.Catalog, load DataLoader) http.Handler {
	h := &Handler{session: session, catalog: catalog, load: load}
	return h.routes()
}

func (h *Handler) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.handleHome)
	mux.HandleFunc("GET /sources", h.handleSourcesPage)
	mux.HandleFunc("GET /analysis", h.handleAnalysisPage)
	mux.HandleFunc("GET /cleaning", h.handleCleaningPage)
	mux.HandleFunc("GET /reconciliation", h.handleReconciliationPage)
	mux.HandleFunc("GET /exports", h.handleExportsPage)
	mux.HandleFunc("GET /completion", h.handleCompletionPage)

	mux.HandleFunc("POST /api/sources/{id}/connect", h.handleConnect)
	mux.HandleFunc("POST /api/analyze", h.handleAnalyze)
	mux.HandleFunc("POST /api/clean", h.handleClean)
	mux.HandleFunc("POST /api/reconcile", h.handleReconcile)
	mux.HandleFunc("POST /api/migrate", h.handleMigrate)
	mux.HandleFunc("GET /api/export/oneroster", h.handleExportOneRoster)
	mux.HandleFunc("GET /api/export/edfi", h.handleExportEdFi)
	mux.HandleFunc("GET /api/evidence", h.handleEvidence)

	return mux
}

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	view := templates.HomeView{MigrationID: h.session.ID()}
	for _, status := range h.session.Steps() {
		view.Steps = append(view.Steps, templates.StepRow{
			Number: int(status.Step),
			Name:   status.Name,
			Done:   status.Done,
		})
	}
	templ.Handler(templates.Home(view)).ServeHTTP(w, r)
}

func (h *Handler) handleSourcesPage(w http.ResponseWriter, r *http.Request) {
	connected := map[string]bool{}
	for _, conn := range h.session.Connections() {
		connected[conn.Source.ID] = true
	}
	view := templates.SourcesView{ConnectedCount: len(connected)}
	for _, system := range h.catalog.Systems() {
		view.Systems = append(view.Systems, templates.SourceRow{
			ID:        system.ID,
			Name:      system.Name,
			Icon:      system.Icon,
			Protocol:  system.Protocol,
			Port:      system.Port,
			Records:   fmt.Sprintf("%d", system.Records),
			DataType:  system.DataType,
			Connected: connected[system.ID],
		})
	}
	templ.Handler(templates.Sources(view)).ServeHTTP(w, r)
}

func (h *Handler) handleAnalysisPage(w http.ResponseWriter, r *http.Request) {
	view := templates.AnalysisView{}
	if report := h.session.Analysis(); report != nil {
		view.Ready = true
		view.TotalIssues = fmt.Sprintf("%d", report.TotalIssues)
		view.HighPriority = fmt.Sprintf("%d", report.HighPriority)
		view.ReadyForCleaning = report.ReadyForCleaning
		for _, domain := range report.Domains {
			row := templates.DomainRow{
				Name:            domain.Name,
				Icon:            domain.Icon,
				Issues:          fmt.Sprintf("%d", domain.IssueCount()),
				Recommendations: domain.Recommendations,
			}
			for _, finding := range domain.Findings {
				row.Findings = append(row.Findings, templates.FindingRow{
					Type:     finding.Type,
					Count:    fmt.Sprintf("%d", finding.Count),
					Severity: string(finding.Severity),
					Details:  finding.Details,
				})
			}
			view.Domains = append(view.Domains, row)
		}
	}
	templ.Handler(templates.Analysis(view)).ServeHTTP(w, r)
}

func (h *Handler) handleCleaningPage(w http.ResponseWriter, r *http.Request) {
	view := templates.CleaningView{}
	if outcome := h.session.CleanSummary(); outcome != nil {
		view.Ready = true
		view.Rules = outcome.RulesApplied
		view.GoldenRecords = fmt.Sprintf("%d", outcome.GoldenRecords)
		view.Duplicates = fmt.Sprintf("%d", outcome.Duplicates)
		view.Households = fmt.Sprintf("%d", outcome.Households)
		view.ValidationErrors = fmt.Sprintf("%d", outcome.ValidationErrors)
	}
	templ.Handler(templates.Cleaning(view)).ServeHTTP(w, r)
}

func (h *Handler) handleReconciliationPage(w http.ResponseWriter, r *http.Request) {
	summary, results := h.session.Reconciliation()
	view := templates.ReconciliationView{}
	if len(results) > 0 {
		view.Ready = true
		view.OverallStatus = summary.OverallStatus
		view.PassRate = fmt.Sprintf("%.0f%%", summary.PassRate*100)
		for _, result := range results {
			view.Checks = append(view.Checks, templates.CheckRow{
				Name:     result.CheckName,
				Category: string(result.Category),
				Status:   string(result.Status),
				Message:  result.Message,
			})
		}
	}
	templ.Handler(templates.Reconciliation(view)).ServeHTTP(w, r)
}

func (h *Handler) handleExportsPage(w http.ResponseWriter, r *http.Request) {
	view := templates.ExportsView{}
	if exports := h.session.Exports(); exports != nil {
		view.Ready = true
		names := make([]string, 0, len(exports.OneRoster))
		for name := range exports.OneRoster {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			view.OneRoster = append(view.OneRoster, templates.FileRow{
				Name: name,
				Size: formatSize(len(exports.OneRoster[name])),
			})
		}
		names = names[:0]
		for name := range exports.EdFi {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			view.EdFi = append(view.EdFi, templates.FileRow{
				Name: name,
				Size: formatSize(len(exports.EdFi[name])),
			})
		}
	}
	templ.Handler(templates.Exports(view)).ServeHTTP(w, r)
}

func (h *Handler) handleCompletionPage(w http.ResponseWriter, r *http.Request) {
	view := templates.CompletionView{}
	pack, acceptance, domains, err := h.session.Evidence()
	if err == nil {
		view.Ready = true
		view.PackID = pack.ID
		view.OverallStatus = string(pack.OverallStatus)
		view.Recommendation = acceptance.Recommendation
		for _, criterion := range acceptance.Criteria {
			view.Criteria = append(view.Criteria, templates.CriterionRow{
				Name:     criterion.Name,
				Status:   string(criterion.Status),
				Evidence: criterion.Evidence,
			})
		}
		for _, domain := range domains {
			view.Domains = append(view.Domains, templates.DomainSummaryRow{
				Name:   domain.Name,
				Checks: fmt.Sprintf("%d/%d", domain.ChecksPassed, domain.ChecksTotal),
				Status: string(domain.Status),
			})
		}
	}
	templ.Handler(templates.Completion(view)).ServeHTTP(w, r)
}

func (h *Handler) handleConnect(w http.ResponseWriter, r *http.Request) {
	conn, err := h.session.ConnectSource(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"connection": conn,
		"steps":      conn.Source.ConnectionSteps(),
		"connected":  len(h.session.Connections()),
	})
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if h.session.Data().Empty() {
		if err := h.session.LoadData(h.load()); err != nil {
			h.writeError(w, err)
			return
		}
	}
	report, err := h.session.Analyze(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handleClean(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.session.Clean(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, outcome)
}

func (h *Handler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	summary, results, err := h.session.Reconcile(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"summary": summary,
		"results": results,
	})
}

func (h *Handler) handleMigrate(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.session.Load(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, outcome)
}

func (h *Handler) handleExportOneRoster(w http.ResponseWriter, r *http.Request) {
	exports, err := h.exports(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"files":    exports.OneRoster,
		"manifest": exports.OneRosterManifest,
	})
}

func (h *Handler) handleExportEdFi(w http.ResponseWriter, r *http.Request) {
	exports, err := h.exports(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	files := make(map[string]json.RawMessage, len(exports.EdFi))
	for name, payload := range exports.EdFi {
		files[name] = json.RawMessage(payload)
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (h *Handler) handleEvidence(w http.ResponseWriter, r *http.Request) {
	pack, acceptance, domains, err := h.session.Evidence()
	if errors.Is(err, migrate.ErrStepNotReady) {
		if _, buildErr := h.session.BuildEvidence(r.Context()); buildErr != nil {
			h.writeError(w, buildErr)
			return
		}
		pack, acceptance, domains, err = h.session.Evidence()
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"pack":       pack,
		"acceptance": acceptance,
		"domains":    domains,
	})
}

// exports renders the export bundle on first request and reuses it after.
func (h *Handler) exports(r *http.Request) (*migrate.ExportOutcome, error) {
	if exports := h.session.Exports(); exports != nil {
		return exports, nil
	}
	return h.session.ExportData(r.Context())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, sources.ErrUnknownSource):
		status = http.StatusNotFound
	case errors.Is(err, migrate.ErrStepNotReady), errors.Is(err, migrate.ErrBlocked):
		status = http.StatusConflict
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func formatSize(n int) string {
	if n >= 1024 {
		return fmt.Sprintf("%.1f KiB", float64(n)/1024)
	}
	return fmt.Sprintf("%d B", n)
}
