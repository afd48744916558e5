package parser

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/leapstack-labs/tmdlint/pkg/core"
)

// ErrNoTableHeader is returned for files without a "table <name>" header.
var ErrNoTableHeader = errors.New("no table header")

// Block header patterns. Names are 'single quoted', "double quoted" or bare;
// a bare measure, column or partition name stops at the first '='.
var (
	tablePattern     = regexp.MustCompile(`table\s+(?:'([^'\r\n]+)'|([^\s]+))`)
	measurePattern   = regexp.MustCompile(`measure\s+(?:'([^'"\r\n]+)'|"([^'"\r\n]+)"|([^'"\r\n=]+))\s*=\s*`)
	columnPattern    = regexp.MustCompile(`column\s+(?:'([^'"\r\n]+)'|"([^'"\r\n]+)"|([^'"\r\n=]+))\s*`)
	partitionPattern = regexp.MustCompile(`partition\s+(?:'([^'"\r\n]+)'|"([^'"\r\n]+)"|([^'"\r\n=]+))\s*=[ \t]*([^\r\n]*)`)

	formatStringProp  = propertyPattern("formatString")
	displayFolderProp = propertyPattern("displayFolder")
	dataTypeProp      = propertyPattern("dataType")
	sourceColumnProp  = propertyPattern("sourceColumn")
	modeProp          = propertyPattern("mode")
)

// ParseTableFile reads and parses a single tables/*.tmdl file.
func ParseTableFile(path string) (*core.Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read table file: %w", err)
	}
	return ParseTableContent(string(content), path)
}

// ParseTableContent parses the content of a table file.
// It returns ErrNoTableHeader when content does not declare a table.
func ParseTableContent(content, path string) (*core.Table, error) {
	loc := tablePattern.FindStringSubmatchIndex(content)
	if loc == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNoTableHeader)
	}
	var name string
	if loc[2] >= 0 {
		name = content[loc[2]:loc[3]]
	} else {
		name = content[loc[4]:loc[5]]
	}

	table := core.NewTable(name, content, path)
	// Table-level properties sit between the header and the first child block.
	header := content[loc[1]:blockEnd(content, loc[1], childKeywords)]
	table.IsHidden = flag(header, "isHidden")

	table.Measures = parseMeasures(content, name, path)
	table.Columns = parseColumns(content, name, path)
	table.Partitions = parsePartitions(content, name, path)
	return table, nil
}

func parseMeasures(content, table, path string) []*core.Measure {
	var measures []*core.Measure
	for _, b := range scanBlocks(content, measurePattern, childKeywords) {
		m := core.NewMeasure(table, firstGroup(b.groups, 1, 2, 3), b.body, path)
		m.Expression = expression(b.body)
		m.FormatString = property(b.body, formatStringProp)
		m.DisplayFolder = property(b.body, displayFolderProp)
		m.IsHidden = flag(b.body, "isHidden")
		measures = append(measures, m)
	}
	return measures
}

func parseColumns(content, table, path string) []*core.Column {
	var columns []*core.Column
	for _, b := range scanBlocks(content, columnPattern, childKeywords) {
		c := core.NewColumn(table, firstGroup(b.groups, 1, 2, 3), b.body, path)
		c.DataType = property(b.body, dataTypeProp)
		c.FormatString = property(b.body, formatStringProp)
		c.SourceColumn = property(b.body, sourceColumnProp)
		c.IsHidden = flag(b.body, "isHidden")
		c.IsKey = flag(b.body, "isKey")
		columns = append(columns, c)
	}
	return columns
}

func parsePartitions(content, table, path string) []*core.Partition {
	var partitions []*core.Partition
	for _, b := range scanBlocks(content, partitionPattern, childKeywords) {
		p := core.NewPartition(table, firstGroup(b.groups, 1, 2, 3), b.body, path)
		p.SourceType = strings.TrimSpace(b.groups[4])
		p.Mode = property(b.body, modeProp)
		partitions = append(partitions, p)
	}
	return partitions
}
