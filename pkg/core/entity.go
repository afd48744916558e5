package core

// Kind identifies the type of a parsed model object.
type Kind string

// Model object kinds.
const (
	KindTable        Kind = "Table"
	KindColumn       Kind = "Column"
	KindMeasure      Kind = "Measure"
	KindRelationship Kind = "Relationship"
	KindPartition    Kind = "Partition"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindTable, KindColumn, KindMeasure, KindRelationship, KindPartition:
		return true
	}
	return false
}

// ObjectRef is the identity of an entity: two entities with the same
// name, kind and origin file are the same object.
type ObjectRef struct {
	Name     string
	Kind     Kind
	FilePath string
}

// Entity is implemented by every parsed model object.
type Entity interface {
	Ref() ObjectRef
}

// Object holds the fields shared by all entities.
type Object struct {
	Name     string
	Kind     Kind
	Content  string // raw block text the object was parsed from
	FilePath string
}

// Ref returns the identity of the object.
func (o Object) Ref() ObjectRef {
	return ObjectRef{Name: o.Name, Kind: o.Kind, FilePath: o.FilePath}
}

// Table is a table declared in a tables/*.tmdl file.
// A table exclusively owns the columns, measures and partitions parsed from its file.
type Table struct {
	Object
	IsHidden   bool
	Columns    []*Column
	Measures   []*Measure
	Partitions []*Partition
}

// Column is a column block inside a table file.
type Column struct {
	Object
	Table        string
	DataType     string
	FormatString string
	SourceColumn string
	IsHidden     bool
	IsKey        bool
}

// Measure is a measure block inside a table file.
type Measure struct {
	Object
	Table         string
	Expression    string
	FormatString  string
	DisplayFolder string
	IsHidden      bool
}

// Partition is a partition block inside a table file.
type Partition struct {
	Object
	Table      string
	SourceType string
	Mode       string
}

// Relationship links two columns by name. The referenced columns are
// resolved by name at check time; a relationship never points at a Column.
type Relationship struct {
	Object
	FromTable              string
	FromColumn             string
	ToTable                string
	ToColumn               string
	IsActive               bool
	FromCardinality        string
	ToCardinality          string
	CrossFilteringBehavior string
}

// Relationship defaults applied when a block omits the property.
const (
	DefaultFromCardinality        = "many"
	DefaultToCardinality          = "one"
	DefaultCrossFilteringBehavior = "oneDirection"
)

// NewTable creates a table entity.
func NewTable(name, content, path string) *Table {
	return &Table{Object: Object{Name: name, Kind: KindTable, Content: content, FilePath: path}}
}

// NewColumn creates a column entity owned by table.
func NewColumn(table, name, content, path string) *Column {
	return &Column{Table: table, Object: Object{Name: name, Kind: KindColumn, Content: content, FilePath: path}}
}

// NewMeasure creates a measure entity owned by table.
func NewMeasure(table, name, content, path string) *Measure {
	return &Measure{Table: table, Object: Object{Name: name, Kind: KindMeasure, Content: content, FilePath: path}}
}

// NewPartition creates a partition entity owned by table.
func NewPartition(table, name, content, path string) *Partition {
	return &Partition{Table: table, Object: Object{Name: name, Kind: KindPartition, Content: content, FilePath: path}}
}

// NewRelationship creates a relationship entity with default properties.
func NewRelationship(name, content, path string) *Relationship {
	return &Relationship{
		Object:                 Object{Name: name, Kind: KindRelationship, Content: content, FilePath: path},
		IsActive:               true,
		FromCardinality:        DefaultFromCardinality,
		ToCardinality:          DefaultToCardinality,
		CrossFilteringBehavior: DefaultCrossFilteringBehavior,
	}
}
