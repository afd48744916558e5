package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SalesTable is a table file with one violation of each measure and column rule.
const SalesTable = `table Sales
	lineageTag: 0b6a

	measure 'Total Sales' = SUM(Sales[Amount])
		formatString: #,0.00

	measure 'Avg Price' = [Total Sales] / [Quantity]

	measure Safe = IFERROR(SUM([Amount]), 0)
		formatString: 0

	column Amount
		dataType: double
		sourceColumn: Amount

	column CustomerKey
		dataType: int64
		sourceColumn: CustomerKey

	column Quantity
		dataType: int64
		isHidden: true
		sourceColumn: Quantity

	partition Sales = m
		mode: import
`

// CustomerTable is a table file without violations.
const CustomerTable = `table Customer

	column CustomerKey
		dataType: int64
		isHidden: true
		isKey: true
		sourceColumn: CustomerKey

	column Name
		dataType: string
		sourceColumn: Name
`

// Relationships links Sales to Customer.
const Relationships = `relationship 3c1f
	fromColumn: Sales.CustomerKey
	toColumn: Customer.CustomerKey
`

// WriteModel writes a sample model under dir/<name>.SemanticModel/definition
// and returns the .SemanticModel folder.
func WriteModel(t testing.TB, dir, name string) string {
	t.Helper()
	root := filepath.Join(dir, name+".SemanticModel")
	WriteFile(t, filepath.Join(root, "definition", "tables", "Sales.tmdl"), SalesTable)
	WriteFile(t, filepath.Join(root, "definition", "tables", "Customer.tmdl"), CustomerTable)
	WriteFile(t, filepath.Join(root, "definition", "relationships.tmdl"), Relationships)
	return root
}

// WriteFile writes content to path, creating parent folders.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
