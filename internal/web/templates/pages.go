package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Home renders the landing page with the workflow progress list.
func Home(view HomeView) templ.Component {
	body := component(func(_ context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<p>Migration <code>%s</code></p><ol class="steps">`, esc(view.MigrationID)); err != nil {
			return err
		}
		for _, step := range view.Steps {
			state := "todo"
			if step.Done {
				state = "done"
			}
			if _, err := fmt.Fprintf(w, `<li class="%s">%s</li>`, state, esc(step.Name)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</ol>")
		return err
	})
	return Layout("Overview", body)
}

// Sources renders the legacy system catalog with connection state.
func Sources(view SourcesView) templ.Component {
	body := component(func(_ context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<p>%d of %d systems connected</p><table><thead><tr><th>System</th><th>Protocol</th><th>Records</th><th>Data</th><th>Status</th></tr></thead><tbody>`,
			view.ConnectedCount, len(view.Systems)); err != nil {
			return err
		}
		for _, row := range view.Systems {
			status := "Not connected"
			if row.Connected {
				status = "Connected"
			}
			if _, err := fmt.Fprintf(w, `<tr data-source="%s"><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
				esc(row.ID), esc(row.Name), esc(row.Protocol), esc(row.Records), esc(row.DataType), status); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</tbody></table>")
		return err
	})
	return Layout("Connect Sources", body)
}

// Analysis renders the per-domain findings report.
func Analysis(view AnalysisView) templ.Component {
	if !view.Ready {
		return Layout("AI Analysis", pending("Run the analysis to see detected issues."))
	}
	body := component(func(_ context.Context, w io.Writer) error {
		readiness := "Cleaning required before migration"
		if view.ReadyForCleaning {
			readiness = "Ready for cleaning"
		}
		if _, err := fmt.Fprintf(w, `<p>%s issues found, %s high priority. %s.</p>`,
			esc(view.TotalIssues), esc(view.HighPriority), readiness); err != nil {
			return err
		}
		for _, domain := range view.Domains {
			if _, err := fmt.Fprintf(w, `<section><h3>%s (%s issues)</h3><ul>`, esc(domain.Name), esc(domain.Issues)); err != nil {
				return err
			}
			for _, finding := range domain.Findings {
				if _, err := fmt.Fprintf(w, `<li class="severity-%s">%s: %s</li>`,
					esc(finding.Severity), esc(finding.Count), esc(finding.Details)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</ul><h4>Recommendations</h4><ul>`); err != nil {
				return err
			}
			for _, rec := range domain.Recommendations {
				if _, err := fmt.Fprintf(w, `<li>%s</li>`, esc(rec)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "</ul></section>"); err != nil {
				return err
			}
		}
		return nil
	})
	return Layout("AI Analysis", body)
}

// Cleaning renders the cleaning outcome summary.
func Cleaning(view CleaningView) templ.Component {
	if !view.Ready {
		return Layout("Data Cleaning", pending("Run the cleaning step to build golden records."))
	}
	body := component(func(_ context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<dl><dt>Golden records</dt><dd>%s</dd><dt>Duplicates resolved</dt><dd>%s</dd><dt>Household links</dt><dd>%s</dd><dt>Validation errors</dt><dd>%s</dd></dl><h3>Rules applied</h3><ul>`,
			esc(view.GoldenRecords), esc(view.Duplicates), esc(view.Households), esc(view.ValidationErrors)); err != nil {
			return err
		}
		for _, rule := range view.Rules {
			if _, err := fmt.Fprintf(w, `<li>%s</li>`, esc(rule)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</ul>")
		return err
	})
	return Layout("Data Cleaning", body)
}

// Reconciliation renders the check outcomes table.
func Reconciliation(view ReconciliationView) templ.Component {
	if !view.Ready {
		return Layout("Reconciliation", pending("Run reconciliation to verify the migrated data."))
	}
	body := component(func(_ context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<p class="status-%s">Overall: %s (%s of checks passed)</p><table><thead><tr><th>Check</th><th>Category</th><th>Status</th><th>Detail</th></tr></thead><tbody>`,
			esc(view.OverallStatus), esc(view.OverallStatus), esc(view.PassRate)); err != nil {
			return err
		}
		for _, check := range view.Checks {
			if _, err := fmt.Fprintf(w, `<tr><td>%s</td><td>%s</td><td class="status-%s">%s</td><td>%s</td></tr>`,
				esc(check.Name), esc(check.Category), esc(check.Status), esc(check.Status), esc(check.Message)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</tbody></table>")
		return err
	})
	return Layout("Reconciliation", body)
}

// Exports renders the export file listings.
func Exports(view ExportsView) templ.Component {
	if !view.Ready {
		return Layout("Export Data", pending("Run the export step to render OneRoster and Ed-Fi files."))
	}
	body := component(func(_ context.Context, w io.Writer) error {
		writeFiles := func(heading string, files []FileRow) error {
			if _, err := fmt.Fprintf(w, `<h3>%s</h3><ul>`, esc(heading)); err != nil {
				return err
			}
			for _, file := range files {
				if _, err := fmt.Fprintf(w, `<li><code>%s</code> (%s)</li>`, esc(file.Name), esc(file.Size)); err != nil {
					return err
				}
			}
			_, err := io.WriteString(w, "</ul>")
			return err
		}
		if err := writeFiles("OneRoster 1.2", view.OneRoster); err != nil {
			return err
		}
		return writeFiles("Ed-Fi", view.EdFi)
	})
	return Layout("Export Data", body)
}

// Completion renders the evidence pack and acceptance report.
func Completion(view CompletionView) templ.Component {
	if !view.Ready {
		return Layout("Evidence Pack", pending("Build the evidence pack after loading data into the target."))
	}
	body := component(func(_ context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<p>Pack <code>%s</code>: <span class="status-%s">%s</span></p><p>%s</p><h3>Acceptance criteria</h3><table><tbody>`,
			esc(view.PackID), esc(view.OverallStatus), esc(view.OverallStatus), esc(view.Recommendation)); err != nil {
			return err
		}
		for _, criterion := range view.Criteria {
			if _, err := fmt.Fprintf(w, `<tr><td>%s</td><td class="status-%s">%s</td><td>%s</td></tr>`,
				esc(criterion.Name), esc(criterion.Status), esc(criterion.Status), esc(criterion.Evidence)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</tbody></table><h3>Domains</h3><table><tbody>`); err != nil {
			return err
		}
		for _, domain := range view.Domains {
			if _, err := fmt.Fprintf(w, `<tr><td>%s</td><td>%s</td><td class="status-%s">%s</td></tr>`,
				esc(domain.Name), esc(domain.Checks), esc(domain.Status), esc(domain.Status)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</tbody></table>")
		return err
	})
	return Layout("Evidence Pack", body)
}
