package reconcile

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrPackNotFound is returned when an evidence pack ID is unknown.
var ErrPackNotFound = errors.New("evidence pack not found")

// DomainStatus summarizes check outcomes for one data domain.
type DomainStatus struct {
	Domain       string         `json:"domain"`
	Status       Status         `json:"status"`
	ChecksPassed int            `json:"checks_passed"`
	ChecksTotal  int            `json:"checks_total"`
	Issues       []string       `json:"issues"`
	Metrics      map[string]any `json:"metrics,omitempty"`
}

// PassRate is the fraction of checks in the domain that passed.
func (d DomainStatus) PassRate() float64 {
	if d.ChecksTotal == 0 {
		return 0
	}
	return float64(d.ChecksPassed) / float64(d.ChecksTotal)
}

// EvidencePack collects the artifacts needed to verify a migration and
// support an approval decision.
type EvidencePack struct {
	ID             string            `json:"id"`
	CreatedAt      time.Time         `json:"created_at"`
	MigrationID    string            `json:"migration_id"`
	SourceSystems  []string          `json:"source_systems"`
	TargetSystem   string            `json:"target_system"`
	DomainStatuses []DomainStatus    `json:"domain_statuses"`
	Results        []Result          `json:"reconciliation_results"`
	DataHashes     map[string]string `json:"data_hashes"`
	OverallStatus  Status            `json:"overall_status"`
	ApprovalStatus string            `json:"approval_status"`
	Approver       string            `json:"approver,omitempty"`
	ApprovedAt     *time.Time        `json:"approved_at,omitempty"`
	Notes          string            `json:"notes,omitempty"`
}

// CalculateOverallStatus derives the pack status from its domain statuses.
// A pack with no domains yet is pending.
func (p *EvidencePack) CalculateOverallStatus() Status {
	if len(p.DomainStatuses) == 0 {
		p.OverallStatus = "pending"
		return p.OverallStatus
	}

	var failed, warnings int
	for _, d := range p.DomainStatuses {
		switch d.Status {
		case StatusFailed:
			failed++
		case StatusWarning:
			warnings++
		}
	}

	switch {
	case failed > 0:
		p.OverallStatus = StatusFailed
	case warnings > 0:
		p.OverallStatus = StatusWarning
	default:
		p.OverallStatus = StatusPassed
	}
	return p.OverallStatus
}

// VerificationHash fingerprints the pack so tampering with an exported
// copy is detectable.
func (p *EvidencePack) VerificationHash() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s|%s|%s", p.ID, p.MigrationID, p.CreatedAt.UTC().Format(time.RFC3339), p.OverallStatus)
	for _, d := range p.DomainStatuses {
		fmt.Fprintf(&b, "|%s:%s", d.Domain, d.Status)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Approve records sign-off on the pack.
func (p *EvidencePack) Approve(approver string) {
	now := time.Now()
	p.ApprovalStatus = "approved"
	p.Approver = approver
	p.ApprovedAt = &now
}

// Export renders the pack as indented JSON, including its verification hash.
func (p *EvidencePack) Export() ([]byte, error) {
	var passed, failed int
	for _, r := range p.Results {
		switch r.Status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		}
	}

	doc := map[string]any{
		"id":              p.ID,
		"created_at":      p.CreatedAt.Format(time.RFC3339),
		"migration_id":    p.MigrationID,
		"source_systems":  p.SourceSystems,
		"target_system":   p.TargetSystem,
		"domain_statuses": p.DomainStatuses,
		"reconciliation_summary": map[string]any{
			"total_checks": len(p.Results),
			"passed":       passed,
			"failed":       failed,
		},
		"data_hashes":       p.DataHashes,
		"overall_status":    p.OverallStatus,
		"approval_status":   p.ApprovalStatus,
		"approver":          p.Approver,
		"verification_hash": p.VerificationHash(),
		"notes":             p.Notes,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Reporter creates evidence packs and derives reports from them.
type Reporter struct {
	packs map[string]*EvidencePack
}

// NewReporter returns an empty Reporter.
func NewReporter() *Reporter {
	return &Reporter{packs: make(map[string]*EvidencePack)}
}

// CreateEvidencePack opens a new pack for a migration run.
func (r *Reporter) CreateEvidencePack(migrationID string, sourceSystems []string, targetSystem string) *EvidencePack {
	pack := &EvidencePack{
		ID:             "EP-" + uuid.NewString(),
		CreatedAt:      time.Now(),
		MigrationID:    migrationID,
		SourceSystems:  sourceSystems,
		TargetSystem:   targetSystem,
		DataHashes:     make(map[string]string),
		OverallStatus:  "pending",
		ApprovalStatus: "pending",
	}
	r.packs[pack.ID] = pack
	return pack
}

// Pack looks up an evidence pack by ID.
func (r *Reporter) Pack(packID string) (*EvidencePack, error) {
	pack, ok := r.packs[packID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPackNotFound, packID)
	}
	return pack, nil
}

// AddDomainStatus folds a domain's check results into a pack and refreshes
// the pack's overall status.
func (r *Reporter) AddDomainStatus(packID, domain string, results []Result) (DomainStatus, error) {
	pack, err := r.Pack(packID)
	if err != nil {
		return DomainStatus{}, err
	}

	var passed, failed int
	var issues []string
	for _, res := range results {
		switch res.Status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		}
		if res.Status == StatusFailed || res.Status == StatusWarning {
			issues = append(issues, res.Message)
		}
	}

	status := StatusPassed
	switch {
	case failed > 0:
		status = StatusFailed
	case passed < len(results):
		status = StatusWarning
	}

	ds := DomainStatus{
		Domain:       domain,
		Status:       status,
		ChecksPassed: passed,
		ChecksTotal:  len(results),
		Issues:       issues,
	}
	pack.DomainStatuses = append(pack.DomainStatuses, ds)
	pack.Results = append(pack.Results, results...)
	pack.CalculateOverallStatus()
	return ds, nil
}

// AcceptanceCriterion is one line item of an acceptance report.
type AcceptanceCriterion struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      Status `json:"status"`
	Evidence    string `json:"evidence"`
}

// AcceptanceReport records whether a migration met its acceptance criteria.
type AcceptanceReport struct {
	ReportID       string                `json:"report_id"`
	EvidencePackID string                `json:"evidence_pack_id"`
	GeneratedAt    time.Time             `json:"generated_at"`
	MigrationID    string                `json:"migration_id"`
	Criteria       []AcceptanceCriterion `json:"acceptance_criteria"`
	AllCriteriaMet bool                  `json:"all_criteria_met"`
	Recommendation string                `json:"recommendation"`
	SignOffNeeded  bool                  `json:"sign_off_required"`
}

// GenerateAcceptanceReport evaluates the standard acceptance criteria
// against a pack's results.
func (r *Reporter) GenerateAcceptanceReport(packID string) (AcceptanceReport, error) {
	pack, err := r.Pack(packID)
	if err != nil {
		return AcceptanceReport{}, err
	}

	completeness := StatusPassed
	if pack.OverallStatus == StatusFailed {
		completeness = StatusFailed
	}
	criteria := []AcceptanceCriterion{
		{
			ID:          "AC-001",
			Name:        "Data Completeness",
			Description: "All source records migrated to target",
			Status:      completeness,
			Evidence:    "Count reconciliation checks",
		},
		{
			ID:          "AC-002",
			Name:        "Referential Integrity",
			Description: "All relationships maintained",
			Status:      categoryStatus(pack, CategoryReferential),
			Evidence:    "Referential integrity checks",
		},
		{
			ID:          "AC-003",
			Name:        "Data Quality",
			Description: "Data quality standards met",
			Status:      categoryStatus(pack, CategoryCompleteness),
			Evidence:    "Completeness checks",
		},
		{
			ID:          "AC-004",
			Name:        "Data Integrity",
			Description: "Data not corrupted during migration",
			Status:      categoryStatus(pack, CategoryIntegrity),
			Evidence:    "Hash verification",
		},
	}

	allPassed := true
	for _, c := range criteria {
		if c.Status != StatusPassed {
			allPassed = false
			break
		}
	}

	recommendation := "REQUIRES_REVIEW"
	if allPassed {
		recommendation = "APPROVED"
	}
	return AcceptanceReport{
		ReportID:       "ACC-" + uuid.NewString(),
		EvidencePackID: packID,
		GeneratedAt:    time.Now(),
		MigrationID:    pack.MigrationID,
		Criteria:       criteria,
		AllCriteriaMet: allPassed,
		Recommendation: recommendation,
		SignOffNeeded:  !allPassed,
	}, nil
}

func categoryStatus(pack *EvidencePack, category Category) Status {
	var seen, failed bool
	for _, res := range pack.Results {
		if res.Category != category {
			continue
		}
		seen = true
		if res.Status == StatusFailed {
			failed = true
		}
	}
	switch {
	case !seen:
		return StatusSkipped
	case failed:
		return StatusFailed
	default:
		return StatusPassed
	}
}

// DomainSummaryEntry is a dashboard row for one data domain.
type DomainSummaryEntry struct {
	Domain       string   `json:"domain"`
	Name         string   `json:"name"`
	Icon         string   `json:"icon"`
	Status       Status   `json:"status"`
	ChecksPassed int      `json:"checks_passed"`
	ChecksTotal  int      `json:"checks_total"`
	Issues       []string `json:"issues"`
}

// GenerateDomainSummary lists the four data domains with their pack status,
// in a fixed display order. Domains without results yet show as pending.
func (r *Reporter) GenerateDomainSummary(packID string) ([]DomainSummaryEntry, error) {
	pack, err := r.Pack(packID)
	if err != nil {
		return nil, err
	}

	domains := []struct {
		key  string
		name string
		icon string
	}{
		{"identity", "Identity & Relationships", "users"},
		{"enrollment", "Enrollment & Calendar", "calendar"},
		{"grades", "Grades & Transcripts", "graduation-cap"},
		{"attendance", "Attendance", "clock"},
	}

	summary := make([]DomainSummaryEntry, 0, len(domains))
	for _, d := range domains {
		entry := DomainSummaryEntry{
			Domain: d.key,
			Name:   d.name,
			Icon:   d.icon,
			Status: "pending",
			Issues: []string{},
		}
		for _, ds := range pack.DomainStatuses {
			if !strings.EqualFold(ds.Domain, d.key) {
				continue
			}
			entry.Status = ds.Status
			entry.ChecksPassed = ds.ChecksPassed
			entry.ChecksTotal = ds.ChecksTotal
			entry.Issues = headStrings(ds.Issues, 3)
			break
		}
		summary = append(summary, entry)
	}
	return summary, nil
}

// PackStats are headline numbers for a dashboard view of a pack.
type PackStats struct {
	EvidencePackID   string            `json:"evidence_pack_id"`
	OverallStatus    Status            `json:"overall_status"`
	TotalChecks      int               `json:"total_checks"`
	Passed           int               `json:"passed"`
	Failed           int               `json:"failed"`
	DomainsTotal     int               `json:"domains_total"`
	DomainsPassed    int               `json:"domains_passed"`
	DomainStatuses   map[string]Status `json:"domain_statuses"`
	ReadyForApproval bool              `json:"ready_for_approval"`
	CreatedAt        time.Time         `json:"created_at"`
}

// Stats summarizes a pack for display.
func (r *Reporter) Stats(packID string) (PackStats, error) {
	pack, err := r.Pack(packID)
	if err != nil {
		return PackStats{}, err
	}

	stats := PackStats{
		EvidencePackID: pack.ID,
		OverallStatus:  pack.OverallStatus,
		TotalChecks:    len(pack.Results),
		DomainsTotal:   len(pack.DomainStatuses),
		DomainStatuses: make(map[string]Status, len(pack.DomainStatuses)),
		CreatedAt:      pack.CreatedAt,
	}
	for _, res := range pack.Results {
		switch res.Status {
		case StatusPassed:
			stats.Passed++
		case StatusFailed:
			stats.Failed++
		}
	}
	for _, d := range pack.DomainStatuses {
		if d.Status == StatusPassed {
			stats.DomainsPassed++
		}
		stats.DomainStatuses[d.Domain] = d.Status
	}
	stats.ReadyForApproval = pack.OverallStatus != StatusFailed
	return stats, nil
}
