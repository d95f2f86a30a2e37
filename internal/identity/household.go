package identity

// Relationship links a guardian to a student with custody metadata.
type Relationship struct {
	GuardianID        string `json:"guardian_id"`
	StudentID         string `json:"student_id"`
	RelationshipType  string `json:"relationship_type"`
	CustodyType       string `json:"custody_type"`
	EmergencyPriority int    `json:"emergency_priority"`
}

// HouseholdGraph tracks households and guardian-student relationships.
type HouseholdGraph struct {
	Households        map[string][]string `json:"households"`
	PersonToHousehold map[string]string   `json:"person_to_household"`
	Relationships     []Relationship      `json:"relationships"`
}

// NewHouseholdGraph returns an empty graph.
func NewHouseholdGraph() *HouseholdGraph {
	return &HouseholdGraph{
		Households:        map[string][]string{},
		PersonToHousehold: map[string]string{},
	}
}

// AddHousehold records a household and its members.
func (g *HouseholdGraph) AddHousehold(householdID string, members []string) {
	if g == nil {
		return
	}
	g.Households[householdID] = members
	for _, member := range members {
		g.PersonToHousehold[member] = householdID
	}
}

// AddRelationship records a guardian-student relationship.
func (g *HouseholdGraph) AddRelationship(rel Relationship) {
	if g == nil {
		return
	}
	g.Relationships = append(g.Relationships, rel)
}

// GuardiansForStudent returns the relationships pointing at a student.
func (g *HouseholdGraph) GuardiansForStudent(studentID string) []Relationship {
	var out []Relationship
	for _, rel := range g.Relationships {
		if rel.StudentID == studentID {
			out = append(out, rel)
		}
	}
	return out
}

// StudentsForGuardian returns the relationships held by a guardian.
func (g *HouseholdGraph) StudentsForGuardian(guardianID string) []Relationship {
	var out []Relationship
	for _, rel := range g.Relationships {
		if rel.GuardianID == guardianID {
			out = append(out, rel)
		}
	}
	return out
}
