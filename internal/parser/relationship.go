package parser

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/leapstack-labs/tmdlint/pkg/core"
)

var (
	relationshipPattern = regexp.MustCompile(`relationship\s+([^\r\n]+)\s*`)

	fromColumnProp             = propertyPattern("fromColumn")
	toColumnProp               = propertyPattern("toColumn")
	fromCardinalityProp        = propertyPattern("fromCardinality")
	toCardinalityProp          = propertyPattern("toCardinality")
	crossFilteringBehaviorProp = propertyPattern("crossFilteringBehavior")
)

// ParseRelationshipsFile reads and parses definition/relationships.tmdl.
func ParseRelationshipsFile(path string) ([]*core.Relationship, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read relationships file: %w", err)
	}
	return ParseRelationships(string(content), path), nil
}

// ParseRelationships extracts every relationship block from content.
func ParseRelationships(content, path string) []*core.Relationship {
	var relationships []*core.Relationship
	for _, b := range scanBlocks(content, relationshipPattern, relationshipKeywords) {
		rel := core.NewRelationship(strings.TrimSpace(b.groups[1]), b.body, path)

		if table, column, ok := splitColumnRef(property(b.body, fromColumnProp)); ok {
			rel.FromTable, rel.FromColumn = table, column
		}
		if table, column, ok := splitColumnRef(property(b.body, toColumnProp)); ok {
			rel.ToTable, rel.ToColumn = table, column
		}
		if v := property(b.body, fromCardinalityProp); v != "" {
			rel.FromCardinality = v
		}
		if v := property(b.body, toCardinalityProp); v != "" {
			rel.ToCardinality = v
		}
		if v := property(b.body, crossFilteringBehaviorProp); v != "" {
			rel.CrossFilteringBehavior = v
		}
		if strings.Contains(b.body, "isActive: false") {
			rel.IsActive = false
		}

		relationships = append(relationships, rel)
	}
	return relationships
}

// splitColumnRef splits "Table.Column" into its parts. References that do not
// have exactly two dot-separated parts are rejected. Single quotes around a
// part are removed.
func splitColumnRef(ref string) (table, column string, ok bool) {
	if ref == "" {
		return "", "", false
	}
	parts := strings.Split(ref, ".")
	if len(parts) != 2 {
		return "", "", false
	}
	return unquote(parts[0]), unquote(parts[1]), true
}

func unquote(name string) string {
	name = strings.TrimSpace(name)
	if len(name) >= 2 && name[0] == '\'' && name[len(name)-1] == '\'' {
		return name[1 : len(name)-1]
	}
	return name
}
