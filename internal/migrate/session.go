// Package migrate orchestrates the demo migration workflow as an explicit
// session: connect sources, analyze, clean, reconcile, load, export, and
// build the evidence pack. Each step requires its predecessors.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/edusync/edusync/internal/attendance"
	"github.com/edusync/edusync/internal/canonical"
	"github.com/edusync/edusync/internal/canonical/validate"
	"github.com/edusync/edusync/internal/enrollment"
	"github.com/edusync/edusync/internal/export/edfi"
	"github.com/edusync/edusync/internal/export/oneroster"
	"github.com/edusync/edusync/internal/grades"
	"github.com/edusync/edusync/internal/identity"
	"github.com/edusync/edusync/internal/reconcile"
	"github.com/edusync/edusync/internal/rules"
	"github.com/edusync/edusync/internal/sources"
	"github.com/edusync/edusync/internal/storage"
)

// Step identifies one stage of the migration workflow.
type Step int

const (
	StepConnect Step = iota + 1
	StepAnalyze
	StepClean
	StepReconcile
	StepLoad
	StepExport
	StepEvidence
)

var stepNames = map[Step]string{
	StepConnect:   "Connect Sources",
	StepAnalyze:   "AI Analysis",
	StepClean:     "Data Cleaning",
	StepReconcile: "Reconciliation",
	StepLoad:      "Cloud Migration",
	StepExport:    "Export Data",
	StepEvidence:  "Evidence Pack",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

var (
	// ErrStepNotReady indicates a step was requested before its
	// prerequisites completed.
	ErrStepNotReady = errors.New("prerequisite step not complete")
	// ErrBlocked indicates reconciliation reported blocking failures.
	ErrBlocked = errors.New("reconciliation reported blocking failures")
)

// Dataset holds the raw records pulled from the connected legacy sources.
type Dataset struct {
	Students    []canonical.Record
	Guardians   []canonical.Record
	Enrollments []canonical.Record
	Grades      []canonical.Record
	Attendance  []canonical.Record
}

// Empty reports whether the dataset carries no records at all.
func (d Dataset) Empty() bool {
	return len(d.Students) == 0 && len(d.Guardians) == 0 &&
		len(d.Enrollments) == 0 && len(d.Grades) == 0 && len(d.Attendance) == 0
}

// CleanOutcome summarizes the cleaning step.
type CleanOutcome struct {
	RulesApplied          []string `json:"rules_applied"`
	Students              int      `json:"students_cleaned"`
	Guardians             int      `json:"guardians_cleaned"`
	GoldenRecords         int      `json:"golden_records"`
	Duplicates            int      `json:"duplicates_found"`
	HighConfidenceMatches int      `json:"high_confidence_matches"`
	Households            int      `json:"household_relationships"`
	ValidationErrors      int      `json:"validation_errors"`
	ValidationWarnings    int      `json:"validation_warnings"`
	EnrollmentIssues      int      `json:"enrollment_issues"`
	GradeIssues           int      `json:"grade_issues"`
	AttendanceIssues      int      `json:"attendance_issues"`
}

// LoadOutcome summarizes what reached the target store.
type LoadOutcome struct {
	Persons     int            `json:"persons_loaded"`
	Enrollments int            `json:"enrollments_loaded"`
	Grades      int            `json:"grades_loaded"`
	Attendance  int            `json:"attendance_loaded"`
	Skipped     int            `json:"records_skipped"`
	Counts      storage.Counts `json:"target_counts"`
}

// ExportOutcome bundles the rendered export files.
type ExportOutcome struct {
	OneRoster         map[string]string
	OneRosterManifest map[string]string
	EdFi              map[string][]byte
}

// StepStatus reports one workflow stage for progress displays.
type StepStatus struct {
	Step Step   `json:"step"`
	Name string `json:"name"`
	Done bool   `json:"done"`
}

// Session runs one migration end to end. Methods are safe for concurrent
// use; the workflow itself is strictly ordered.
type Session struct {
	mu       sync.Mutex
	id       string
	catalog  *sources.Catalog
	store    storage.MigrationStore
	cleaner  *rules.Engine
	reporter *reconcile.Reporter
	tracer   trace.Tracer
	now      func() time.Time

	connections     map[string]sources.Connection
	connectionOrder []string
	data            Dataset
	done            map[Step]bool

	analysis *AnalysisReport
	clean    *CleanOutcome

	cleanedStudents    []canonical.Record
	cleanedGuardians   []canonical.Record
	cleanedEnrollments []canonical.Record
	relationships      []canonical.Record
	normalizedGrades   []canonical.Record
	normalizedAttend   []canonical.Record

	resolver    *identity.Resolver
	entities    *Entities
	spans       []enrollment.Span
	gradeList   []grades.Record
	attendList  []attendance.Record
	summary     reconcile.Summary
	results     []reconcile.Result
	load        *LoadOutcome
	exports     *ExportOutcome
	packID      string
	acceptance  reconcile.AcceptanceReport
	domainTable []reconcile.DomainSummaryEntry
}

// NewSession starts a fresh migration against the given catalog and target
// store.
func NewSession(catalog *sources.Catalog, store storage.MigrationStore) *Session {
	return &Session{
		id:          "MIG-" + uuid.NewString(),
		catalog:     catalog,
		store:       store,
		cleaner:     rules.NewEngine(),
		reporter:    reconcile.NewReporter(),
		tracer:      otel.Tracer("edusync/migrate"),
		now:         time.Now,
		connections: map[string]sources.Connection{},
		done:        map[Step]bool{},
	}
}

// ID returns the migration identifier.
func (s *Session) ID() string { return s.id }

// AddRule appends a cleaning rule applied after the defaults.
func (s *Session) AddRule(rule rules.Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleaner.Add(rule)
}

// Steps reports per-stage completion in workflow order.
func (s *Session) Steps() []StepStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	statuses := make([]StepStatus, 0, len(stepNames))
	for step := StepConnect; step <= StepEvidence; step++ {
		statuses = append(statuses, StepStatus{Step: step, Name: step.String(), Done: s.done[step]})
	}
	return statuses
}

// Complete reports whether every workflow step has finished.
func (s *Session) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for step := StepConnect; step <= StepEvidence; step++ {
		if !s.done[step] {
			return false
		}
	}
	return true
}

// ConnectSource establishes a session against one legacy system.
func (s *Session) ConnectSource(ctx context.Context, sourceID string) (sources.Connection, error) {
	_, span := s.tracer.Start(ctx, "session.connect_source")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	conn, err := s.catalog.Connect(sourceID)
	if err != nil {
		return sources.Connection{}, fmt.Errorf("connect %s: %w", sourceID, err)
	}
	if _, seen := s.connections[sourceID]; !seen {
		s.connectionOrder = append(s.connectionOrder, sourceID)
	}
	s.connections[sourceID] = conn
	return conn, nil
}

// Connections lists the established source connections in connect order.
func (s *Session) Connections() []sources.Connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	conns := make([]sources.Connection, 0, len(s.connectionOrder))
	for _, id := range s.connectionOrder {
		conns = append(conns, s.connections[id])
	}
	return conns
}

// LoadData attaches the raw dataset pulled from the connected sources and
// completes the connect step.
func (s *Session) LoadData(data Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.connections) == 0 {
		return fmt.Errorf("load data: no source connections: %w", ErrStepNotReady)
	}
	if data.Empty() {
		return fmt.Errorf("load data: dataset is empty")
	}
	s.data = data
	s.done[StepConnect] = true
	return nil
}

// Data returns the raw dataset.
func (s *Session) Data() Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

func (s *Session) ready(step Step) error {
	for prior := StepConnect; prior < step; prior++ {
		if !s.done[prior] {
			return fmt.Errorf("%s requires %s: %w", step, prior, ErrStepNotReady)
		}
	}
	return nil
}

// Analyze runs the deterministic pre-migration analysis.
func (s *Session) Analyze(ctx context.Context) (*AnalysisReport, error) {
	_, span := s.tracer.Start(ctx, "session.analyze")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(StepAnalyze); err != nil {
		return nil, err
	}
	s.analysis = analyzeDataset(s.data, s.now().UTC())
	s.done[StepAnalyze] = true
	return s.analysis, nil
}

// Analysis returns the latest analysis report, or nil before the step runs.
func (s *Session) Analysis() *AnalysisReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analysis
}

// Clean validates, applies the cleaning rules, resolves identities, and
// normalizes every domain.
func (s *Session) Clean(ctx context.Context) (*CleanOutcome, error) {
	_, span := s.tracer.Start(ctx, "session.clean")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(StepClean); err != nil {
		return nil, err
	}

	outcome := &CleanOutcome{RulesApplied: s.cleaner.Rules()}

	validator := validate.New()
	for _, rec := range s.data.Students {
		report := validator.StudentReport(rec)
		outcome.ValidationErrors += report.ErrorCount()
		outcome.ValidationWarnings += report.WarningCount()
	}
	for _, rec := range s.data.Guardians {
		report := validator.GuardianReport(rec)
		outcome.ValidationErrors += report.ErrorCount()
		outcome.ValidationWarnings += report.WarningCount()
	}

	s.cleanedStudents = s.cleaner.ApplyAll(s.data.Students)
	s.cleanedGuardians = s.cleaner.ApplyAll(s.data.Guardians)
	s.cleanedEnrollments = s.cleaner.ApplyAll(s.data.Enrollments)
	outcome.Students = len(s.cleanedStudents)
	outcome.Guardians = len(s.cleanedGuardians)

	s.resolver = identity.NewResolver()
	for _, rec := range s.cleanedStudents {
		s.resolver.Resolve(rec, primarySource)
	}
	s.resolver.FindDuplicates(s.cleanedStudents, primarySource)
	s.resolver.BuildHouseholdGraph(s.cleanedGuardians)
	stats := s.resolver.Stats()
	outcome.GoldenRecords = stats.GoldenRecords
	outcome.Duplicates = stats.DuplicatesFound
	outcome.HighConfidenceMatches = stats.HighConfidenceMatches
	outcome.Households = stats.Relationships

	s.relationships = guardianRelationships(s.cleanedGuardians)
	s.annotateStudents()

	enrollProc := enrollment.NewProcessor()
	byStudent := map[string]bool{}
	for _, rec := range s.cleanedEnrollments {
		enrollProc.Add(rec, valueOr(rec.Get("source"), "oracle-district"))
		byStudent[rec.Get("student_id")] = true
	}
	s.spans = s.spans[:0]
	for _, id := range sortedKeys(byStudent) {
		enrollProc.FindOverlaps(id)
		enrollProc.FindGaps(id)
		s.spans = append(s.spans, enrollProc.Normalize(id)...)
	}
	outcome.EnrollmentIssues = len(enrollProc.Issues())

	gradeProc := grades.NewProcessor()
	s.gradeList = s.gradeList[:0]
	for _, rec := range s.data.Grades {
		s.gradeList = append(s.gradeList, gradeProc.Process(rec, "fortran-grades"))
	}
	for _, id := range gradeProc.StudentIDs() {
		gradeProc.FindDuplicates(id)
	}
	outcome.GradeIssues = len(gradeProc.Issues())

	attendProc := attendance.NewProcessor()
	s.attendList = s.attendList[:0]
	for _, rec := range s.data.Attendance {
		s.attendList = append(s.attendList, attendProc.Process(rec, "postgres-attendance"))
	}
	outcome.AttendanceIssues = len(attendProc.Issues())

	s.normalizedGrades = gradeRecords(s.gradeList)
	s.normalizedAttend = attendanceRecords(s.attendList)

	s.clean = outcome
	s.done[StepClean] = true
	return outcome, nil
}

// CleanSummary returns the most recent cleaning outcome, or nil before the
// cleaning step has run.
func (s *Session) CleanSummary() *CleanOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clean
}

// primarySource is the system of record for student identity.
const primarySource = "sqlserver-sis"

// annotateStudents attaches guardian and enrollment links to the cleaned
// student records so the completeness checks can verify them.
func (s *Session) annotateStudents() {
	guardianFor := map[string]string{}
	for _, rel := range s.relationships {
		studentID := rel.Get("student_id")
		if _, ok := guardianFor[studentID]; !ok {
			guardianFor[studentID] = rel.Get("id")
		}
	}
	enrollmentFor := map[string]string{}
	for _, rec := range s.cleanedEnrollments {
		studentID := rec.Get("student_id")
		if strings.EqualFold(rec.Get("status"), "active") || enrollmentFor[studentID] == "" {
			enrollmentFor[studentID] = rec.Get("enrollment_id")
		}
	}
	for _, rec := range s.cleanedStudents {
		id := rec.Get("student_id")
		if g := guardianFor[id]; g != "" {
			rec["guardian_id"] = g
		}
		if e := enrollmentFor[id]; e != "" {
			rec["enrollment_id"] = e
		}
	}
}

// Reconcile runs the verification suite over raw sources and cleaned output.
func (s *Session) Reconcile(ctx context.Context) (reconcile.Summary, []reconcile.Result, error) {
	_, span := s.tracer.Start(ctx, "session.reconcile")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(StepReconcile); err != nil {
		return reconcile.Summary{}, nil, err
	}

	engine := reconcile.NewEngine()
	engine.SetSourceData("students", s.data.Students)
	engine.SetSourceData("guardians", s.data.Guardians)
	engine.SetSourceData("enrollments", s.data.Enrollments)
	engine.SetSourceData("grades", normalizeSourceGrades(s.data.Grades))
	engine.SetSourceData("attendance", normalizeSourceAttendance(s.data.Attendance))

	engine.SetTargetData("students", s.cleanedStudents)
	engine.SetTargetData("guardians", s.cleanedGuardians)
	engine.SetTargetData("enrollments", s.cleanedEnrollments)
	engine.SetTargetData("grades", s.normalizedGrades)
	engine.SetTargetData("attendance", s.normalizedAttend)
	engine.SetTargetData("relationships", s.relationships)

	s.results = engine.RunAllChecks()
	s.summary = engine.Summarize()
	s.done[StepReconcile] = true
	return s.summary, s.results, nil
}

// Reconciliation returns the stored summary and results.
func (s *Session) Reconciliation() (reconcile.Summary, []reconcile.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary, s.results
}

// Load writes the cleaned records to the target store. It refuses to run
// when reconciliation reported blocking failures.
func (s *Session) Load(ctx context.Context) (*LoadOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "session.load")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(StepLoad); err != nil {
		return nil, err
	}
	if s.summary.OverallStatus == "BLOCKED" {
		return nil, fmt.Errorf("load: %w", ErrBlocked)
	}

	outcome := &LoadOutcome{}
	now := s.now().UTC()
	entities := &Entities{Courses: courseEntities(s.gradeList)}
	entities.Relationships, entities.Households = relationshipEntities(s.relationships)

	for _, golden := range s.resolver.GoldenRecords() {
		p := personEntity(golden, now)
		entities.Persons = append(entities.Persons, p)
		person := storage.Person{
			GoldenID:      p.ID,
			PrimarySource: p.SourceSystem,
			FirstName:     p.FirstName,
			LastName:      p.LastName,
			DateOfBirth:   golden.DateOfBirth,
			Email:         p.Email,
			StateID:       p.StateID,
			Confidence:    golden.Confidence,
			SourceIDs:     p.SourceIDs,
			CreatedAt:     p.CreatedAt,
			UpdatedAt:     p.UpdatedAt,
		}
		if err := s.create(ctx, outcome, &outcome.Persons, func() error {
			return s.store.CreatePerson(ctx, person)
		}); err != nil {
			return nil, fmt.Errorf("load person %s: %w", person.GoldenID, err)
		}
	}

	for _, es := range s.spans {
		e := enrollmentEntity(es)
		entities.Enrollments = append(entities.Enrollments, e)
		entities.Roles = append(entities.Roles, studentRole(e))
		record := storage.Enrollment{
			ID:           e.ID,
			StudentID:    e.StudentID,
			SchoolID:     e.SchoolID,
			SchoolName:   e.SchoolName,
			GradeLevel:   e.GradeLevel,
			StartDate:    e.StartDate,
			EndDate:      e.EndDate,
			Status:       string(e.Status),
			ExitReason:   e.ExitReason,
			SourceSystem: es.SourceSystem,
		}
		if err := s.create(ctx, outcome, &outcome.Enrollments, func() error {
			return s.store.CreateEnrollment(ctx, record)
		}); err != nil {
			return nil, fmt.Errorf("load enrollment %s: %w", record.ID, err)
		}
	}

	for _, grade := range s.gradeList {
		course := transcriptEntity(grade)
		entities.Transcript = append(entities.Transcript, course)
		record := storage.GradeRecord{
			ID:               course.ID,
			StudentID:        course.StudentID,
			CourseCode:       course.CourseCode,
			CourseName:       course.CourseName,
			Term:             course.Term,
			SchoolYear:       course.SchoolYear,
			LetterGrade:      course.LetterGrade,
			NumericGrade:     course.NumericGrade,
			HasNumericGrade:  course.HasNumericGrade,
			CreditsAttempted: course.CreditsAttempted,
			CreditsEarned:    course.CreditsEarned,
			GradePoints:      grade.GradePoints,
			Status:           string(grade.Status),
			SourceSystem:     grade.SourceSystem,
		}
		if err := s.create(ctx, outcome, &outcome.Grades, func() error {
			return s.store.CreateGradeRecord(ctx, record)
		}); err != nil {
			return nil, fmt.Errorf("load grade %s: %w", record.ID, err)
		}
	}

	for _, event := range s.attendList {
		a := attendanceEntity(event)
		entities.Attendance = append(entities.Attendance, a)
		record := storage.AttendanceEvent{
			ID:           a.ID,
			StudentID:    a.StudentID,
			Date:         a.Date,
			Status:       string(a.Status),
			Period:       a.Period,
			TeacherName:  a.TeacherName,
			SourceCode:   a.SourceCode,
			SourceSystem: event.SourceSystem,
		}
		if err := s.create(ctx, outcome, &outcome.Attendance, func() error {
			return s.store.CreateAttendanceEvent(ctx, record)
		}); err != nil {
			return nil, fmt.Errorf("load attendance %s: %w", record.ID, err)
		}
	}

	counts, err := s.store.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	outcome.Counts = counts

	s.entities = entities
	s.load = outcome
	s.done[StepLoad] = true
	return outcome, nil
}

// Entities returns the typed canonical view the load step materialized, or
// nil before it runs.
func (s *Session) Entities() *Entities {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entities
}

// create runs one insert, treating duplicates as skips rather than failures.
func (s *Session) create(ctx context.Context, outcome *LoadOutcome, counter *int, insert func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := insert()
	if errors.Is(err, storage.ErrAlreadyExists) {
		outcome.Skipped++
		return nil
	}
	if err != nil {
		return err
	}
	*counter++
	return nil
}

// ExportData renders the OneRoster and Ed-Fi file sets.
func (s *Session) ExportData(ctx context.Context) (*ExportOutcome, error) {
	_, span := s.tracer.Start(ctx, "session.export")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(StepExport); err != nil {
		return nil, err
	}

	or := oneroster.NewExporter()
	or.AddOrganization(canonical.Record{"id": oneroster.DefaultOrgID, "name": "Lincoln High School"})
	or.AddAcademicSession(canonical.Record{
		"id":          "AS-2023-2024",
		"name":        "School Year 2023-2024",
		"type":        "schoolYear",
		"start_date":  "2023-08-15",
		"end_date":    "2024-06-05",
		"school_year": "2024",
	})
	for _, rec := range s.cleanedStudents {
		or.AddStudent(rec, oneroster.DefaultOrgID)
	}
	for _, rec := range s.cleanedGuardians {
		or.AddGuardian(rec, oneroster.DefaultOrgID)
	}

	ed := edfi.NewExporter("", 0)
	for _, rec := range s.cleanedStudents {
		ed.AddStudent(rec)
	}

	for _, course := range uniqueCourses(s.gradeList) {
		or.AddCourse(course, oneroster.DefaultOrgID)
		or.AddClass(canonical.Record{
			"id":   course.Get("code"),
			"name": course.Get("name"),
		}, "CRS-"+course.Get("code"), oneroster.DefaultOrgID, "AS-2023-2024")
		ed.AddCourse(course)
	}
	for _, rec := range s.normalizedGrades {
		or.AddEnrollment("STU-"+rec.Get("student_id"), "CLS-"+rec.Get("course_code"), oneroster.DefaultOrgID, "student", "", "")
		ed.AddGrade(rec)
	}
	for _, rec := range s.normalizedAttend {
		ed.AddAttendanceEvent(rec)
	}

	orFiles, err := or.ExportAll()
	if err != nil {
		return nil, fmt.Errorf("export oneroster: %w", err)
	}
	edFiles, err := ed.ExportAll()
	if err != nil {
		return nil, fmt.Errorf("export edfi: %w", err)
	}

	s.exports = &ExportOutcome{
		OneRoster:         orFiles,
		OneRosterManifest: or.Manifest(),
		EdFi:              edFiles,
	}
	s.done[StepExport] = true
	return s.exports, nil
}

// Exports returns the rendered export files, or nil before the step runs.
func (s *Session) Exports() *ExportOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exports
}

// BuildEvidence assembles the evidence pack from the reconciliation results.
func (s *Session) BuildEvidence(ctx context.Context) (*reconcile.EvidencePack, error) {
	_, span := s.tracer.Start(ctx, "session.evidence")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(StepEvidence); err != nil {
		return nil, err
	}

	pack := s.reporter.CreateEvidencePack(s.id, append([]string{}, s.connectionOrder...), "EduSync Cloud SIS")
	pack.DataHashes = dataHashes(s.entities)
	for _, domain := range []string{"identity", "enrollment", "grades", "attendance"} {
		if _, err := s.reporter.AddDomainStatus(pack.ID, domain, resultsForDomain(s.results, domain)); err != nil {
			return nil, fmt.Errorf("evidence domain %s: %w", domain, err)
		}
	}
	acceptance, err := s.reporter.GenerateAcceptanceReport(pack.ID)
	if err != nil {
		return nil, fmt.Errorf("acceptance report: %w", err)
	}
	table, err := s.reporter.GenerateDomainSummary(pack.ID)
	if err != nil {
		return nil, fmt.Errorf("domain summary: %w", err)
	}

	s.packID = pack.ID
	s.acceptance = acceptance
	s.domainTable = table
	s.done[StepEvidence] = true
	return pack, nil
}

// Evidence returns the built pack, acceptance report, and domain summary.
func (s *Session) Evidence() (*reconcile.EvidencePack, reconcile.AcceptanceReport, []reconcile.DomainSummaryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.packID == "" {
		return nil, reconcile.AcceptanceReport{}, nil, fmt.Errorf("evidence: %w", ErrStepNotReady)
	}
	pack, err := s.reporter.Pack(s.packID)
	if err != nil {
		return nil, reconcile.AcceptanceReport{}, nil, err
	}
	return pack, s.acceptance, s.domainTable, nil
}

// resultsForDomain assigns check results to the domain they verify.
func resultsForDomain(results []reconcile.Result, domain string) []reconcile.Result {
	var out []reconcile.Result
	for _, r := range results {
		if checkDomain(r.CheckID) == domain {
			out = append(out, r)
		}
	}
	return out
}

func checkDomain(checkID string) string {
	switch {
	case strings.Contains(checkID, "enrollment"):
		return "enrollment"
	case strings.Contains(checkID, "grade"):
		return "grades"
	case strings.Contains(checkID, "attendance"):
		return "attendance"
	default:
		return "identity"
	}
}

// guardianRelationships flattens guardian rows into one record per
// guardian-student link.
func guardianRelationships(guardians []canonical.Record) []canonical.Record {
	var rels []canonical.Record
	for _, g := range guardians {
		guardianID := g.Get("guardian_id")
		for _, studentID := range strings.Split(g.Get("student_ids"), ",") {
			studentID = strings.TrimSpace(studentID)
			if studentID == "" {
				continue
			}
			rels = append(rels, canonical.Record{
				"id":           guardianID,
				"student_id":   studentID,
				"relationship": g.Get("relationship"),
				"custody":      g.Get("custody"),
			})
		}
	}
	return rels
}

// gradeRecords flattens processed grades back into canonical records for
// reconciliation and export.
func gradeRecords(list []grades.Record) []canonical.Record {
	out := make([]canonical.Record, 0, len(list))
	for _, g := range list {
		rec := canonical.Record{
			"id":            g.ID,
			"student_id":    g.StudentID,
			"course_code":   g.CourseCode,
			"course_name":   g.CourseName,
			"term":          g.Term,
			"school_year":   g.SchoolYear,
			"letter_grade":  g.LetterGrade,
			"grade":         g.RawGrade,
			"status":        string(g.Status),
			"numeric_grade": fmt.Sprintf("%.2f", g.NumericGrade),
		}
		out = append(out, rec)
	}
	return out
}

// attendanceRecords flattens processed attendance events the same way.
func attendanceRecords(list []attendance.Record) []canonical.Record {
	out := make([]canonical.Record, 0, len(list))
	for _, a := range list {
		rec := canonical.Record{
			"id":         a.ID,
			"student_id": a.StudentID,
			"date":       a.Date.Format("2006-01-02"),
			"status":     string(a.Status),
		}
		if a.Period > 0 {
			rec["period"] = fmt.Sprintf("%d", a.Period)
		}
		out = append(out, rec)
	}
	return out
}

// normalizeSourceGrades lowers the legacy grade export's column names so the
// count and sampling checks can line the rows up.
func normalizeSourceGrades(records []canonical.Record) []canonical.Record {
	out := make([]canonical.Record, 0, len(records))
	for _, rec := range records {
		out = append(out, canonical.Record{
			"student_id":  firstRecordValue(rec, "STUDENT_ID", "student_id"),
			"course_code": firstRecordValue(rec, "COURSE_CODE", "course_code"),
			"grade":       firstRecordValue(rec, "GRADE", "grade"),
		})
	}
	return out
}

func normalizeSourceAttendance(records []canonical.Record) []canonical.Record {
	out := make([]canonical.Record, 0, len(records))
	for _, rec := range records {
		out = append(out, canonical.Record{
			"id":         firstRecordValue(rec, "ID", "id"),
			"student_id": firstRecordValue(rec, "StudentID", "student_id"),
			"date":       firstRecordValue(rec, "Date", "date"),
			"status":     firstRecordValue(rec, "Status", "status"),
		})
	}
	return out
}

// uniqueCourses derives the course catalog from the processed grades.
func uniqueCourses(list []grades.Record) []canonical.Record {
	seen := map[string]canonical.Record{}
	for _, g := range list {
		if g.CourseCode == "" {
			continue
		}
		if _, ok := seen[g.CourseCode]; ok {
			continue
		}
		rec := canonical.Record{
			"code": g.CourseCode,
			"name": g.CourseName,
		}
		if g.IsHonors {
			rec["is_honors"] = "true"
		}
		if g.IsAP {
			rec["is_ap"] = "true"
		}
		seen[g.CourseCode] = rec
	}
	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	out := make([]canonical.Record, 0, len(codes))
	for _, code := range codes {
		out = append(out, seen[code])
	}
	return out
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
