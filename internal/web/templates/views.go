// File views.go defines view data for the demo pages.
package templates

// StepRow represents one workflow stage in the progress list.
type StepRow struct {
	// Number is the 1-based stage position.
	Number int
	// Name is the display name of the stage.
	Name string
	// Done reports whether the stage has completed.
	Done bool
}

// HomeView provides data for the landing page.
type HomeView struct {
	// MigrationID identifies the running migration.
	MigrationID string
	// Steps lists the workflow stages in order.
	Steps []StepRow
}

// SourceRow holds formatted legacy system data for display.
type SourceRow struct {
	// ID is the catalog identifier for the system.
	ID string
	// Name is the display name of the system.
	Name string
	// Icon is the display icon slug.
	Icon string
	// Protocol is the connection protocol label.
	Protocol string
	// Port is the listening port, empty for file drops.
	Port string
	// Records is the formatted record count.
	Records string
	// DataType labels the kind of data the system holds.
	DataType string
	// Connected reports whether the session holds a connection.
	Connected bool
}

// SourcesView provides data for the source connection page.
type SourcesView struct {
	// Systems lists every catalog entry.
	Systems []SourceRow
	// ConnectedCount is the number of established connections.
	ConnectedCount int
}

// FindingRow is one detected defect class for a domain.
type FindingRow struct {
	// Type is the defect class identifier.
	Type string
	// Count is the formatted occurrence count.
	Count string
	// Severity is high, medium, or low.
	Severity string
	// Details describes the defect in one line.
	Details string
}

// DomainRow summarizes analysis findings for one data domain.
type DomainRow struct {
	// Name is the domain display name.
	Name string
	// Icon is the display icon slug.
	Icon string
	// Issues is the formatted issue count.
	Issues string
	// Findings lists the detected defect classes.
	Findings []FindingRow
	// Recommendations lists suggested cleaning actions.
	Recommendations []string
}

// AnalysisView provides data for the analysis page.
type AnalysisView struct {
	// Ready reports whether the analysis step has run.
	Ready bool
	// TotalIssues is the formatted issue total.
	TotalIssues string
	// HighPriority is the formatted high-severity count.
	HighPriority string
	// ReadyForCleaning reports whether cleaning can proceed.
	ReadyForCleaning bool
	// Domains lists per-domain findings.
	Domains []DomainRow
}

// CleaningView provides data for the cleaning page.
type CleaningView struct {
	// Ready reports whether the cleaning step has run.
	Ready bool
	// Rules lists the applied rule names.
	Rules []string
	// GoldenRecords is the formatted golden record count.
	GoldenRecords string
	// Duplicates is the formatted duplicate pair count.
	Duplicates string
	// Households is the formatted household link count.
	Households string
	// ValidationErrors is the formatted validation error count.
	ValidationErrors string
}

// CheckRow is one reconciliation check outcome.
type CheckRow struct {
	// Name is the check display name.
	Name string
	// Category labels the check family.
	Category string
	// Status is passed, failed, warning, or skipped.
	Status string
	// Message describes the outcome in one line.
	Message string
}

// ReconciliationView provides data for the reconciliation page.
type ReconciliationView struct {
	// Ready reports whether reconciliation has run.
	Ready bool
	// OverallStatus is PASSED, WARNING, or BLOCKED.
	OverallStatus string
	// PassRate is the formatted pass percentage.
	PassRate string
	// Checks lists every check outcome.
	Checks []CheckRow
}

// FileRow is one rendered export file.
type FileRow struct {
	// Name is the file name inside the export bundle.
	Name string
	// Size is the formatted byte size.
	Size string
}

// ExportsView provides data for the export page.
type ExportsView struct {
	// Ready reports whether exports have been rendered.
	Ready bool
	// OneRoster lists the OneRoster CSV files.
	OneRoster []FileRow
	// EdFi lists the Ed-Fi JSON files.
	EdFi []FileRow
}

// CriterionRow is one acceptance criterion outcome.
type CriterionRow struct {
	// Name is the criterion display name.
	Name string
	// Status is passed, failed, or warning.
	Status string
	// Evidence cites the supporting observation.
	Evidence string
}

// DomainSummaryRow is one dashboard row for a data domain.
type DomainSummaryRow struct {
	// Name is the domain display name.
	Name string
	// Checks is the formatted passed/total ratio.
	Checks string
	// Status is the domain verification status.
	Status string
}

// CompletionView provides data for the completion page.
type CompletionView struct {
	// Ready reports whether the evidence pack exists.
	Ready bool
	// PackID identifies the evidence pack.
	PackID string
	// OverallStatus is the pack verification status.
	OverallStatus string
	// Recommendation is the sign-off recommendation text.
	Recommendation string
	// Criteria lists the acceptance criteria.
	Criteria []CriterionRow
	// Domains lists the per-domain dashboard rows.
	Domains []DomainSummaryRow
}
