// Package report aggregates violations into summaries and renders them.
//
// A Document is the complete outcome of one analysis run. It can be written
// as a Markdown report (WriteMarkdown) or as JSON (WriteJSON) for other tools,
// and read back with ReadJSON.
package report
