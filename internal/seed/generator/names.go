package generator

var firstNames = []string{
	"Maria", "James", "Sofia", "Liam", "Ava", "Noah", "Emma", "Lucas",
	"Mia", "Ethan", "Isabella", "Mason", "Camila", "Logan", "Aaliyah",
	"Carter", "Nora", "Jayden", "Valentina", "Elijah", "Grace", "Mateo",
	"Chloe", "Daniel", "Zoe", "Andre", "Lily", "Marcus", "Priya", "Omar",
}

var lastNames = []string{
	"Garcia", "Smith", "Johnson", "Nguyen", "Williams", "Brown", "Jones",
	"Martinez", "Davis", "Lopez", "Wilson", "Anderson", "Taylor", "Thomas",
	"Hernandez", "Moore", "Jackson", "Martin", "Lee", "Thompson", "White",
	"Patel", "Harris", "Clark", "Lewis", "Robinson", "Walker", "Chen",
}

var teacherNames = []string{
	"Ms. Chen", "Mr. Rodriguez", "Mrs. Okafor", "Dr. Patel", "Ms. Novak",
	"Mr. Haddad", "Mrs. Lindqvist", "Ms. Brooks", "Mr. Tanaka",
}

var courseCatalog = []struct {
	code    string
	name    string
	credits string
}{
	{"MATH101", "Algebra I", "1.0"},
	{"MATH201", "Geometry", "1.0"},
	{"ENG101", "English 9", "1.0"},
	{"ENG301", "Honors English 11", "1.0"},
	{"SCI150", "Biology", "1.0"},
	{"SCI250", "Chemistry", "1.0"},
	{"HIST400", "AP US History", "1.0"},
	{"SPAN101", "Spanish I", "1.0"},
	{"PE100", "Physical Education", "0.5"},
	{"ART110", "Studio Art", "0.5"},
}

var relationships = []string{"Mother", "Father", "Grandmother", "Grandfather", "Aunt", "Uncle", "Stepparent"}

var custodyTypes = []string{"Full", "Joint", "None"}
