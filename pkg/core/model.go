package core

// Model is the collection of entities parsed from one model directory.
// Slices keep parse order: tables by file name, children in file order.
type Model struct {
	Root          string
	DefinitionDir string

	Tables        []*Table
	Columns       []*Column
	Measures      []*Measure
	Partitions    []*Partition
	Relationships []*Relationship
}

// ObjectCounts holds the number of parsed entities per kind.
type ObjectCounts struct {
	Tables        int `json:"tables"`
	Measures      int `json:"measures"`
	Columns       int `json:"columns"`
	Relationships int `json:"relationships"`
	Partitions    int `json:"partitions"`
}

// AddTable appends a table and its children to the model.
func (m *Model) AddTable(t *Table) {
	m.Tables = append(m.Tables, t)
	m.Measures = append(m.Measures, t.Measures...)
	m.Columns = append(m.Columns, t.Columns...)
	m.Partitions = append(m.Partitions, t.Partitions...)
}

// Counts returns the number of entities per kind.
func (m *Model) Counts() ObjectCounts {
	if m == nil {
		return ObjectCounts{}
	}
	return ObjectCounts{
		Tables:        len(m.Tables),
		Measures:      len(m.Measures),
		Columns:       len(m.Columns),
		Relationships: len(m.Relationships),
		Partitions:    len(m.Partitions),
	}
}

// HasRelationshipFrom reports whether any relationship uses a column
// with the given name on its from side.
func (m *Model) HasRelationshipFrom(column string) bool {
	if m == nil {
		return false
	}
	for _, rel := range m.Relationships {
		if rel.FromColumn == column {
			return true
		}
	}
	return false
}
