// Package parser reads TMDL model folders into core entities.
//
// The parser is deliberately lenient: it locates measure, column, partition
// and relationship blocks with keyword scanning instead of a full grammar.
// Input it cannot make sense of is skipped, never reported as a syntax error.
//
// A block starts at its header keyword and runs up to the first line that
// begins (after indentation) with a sibling keyword, or to the end of the file.
// Measures and columns are scanned independently over the whole table file.
package parser
