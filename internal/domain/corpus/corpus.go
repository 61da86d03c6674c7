// Package corpus defines the per-entity parameterization of the retrieval
// engine. A single generic pipeline serves both candidate profiles and job
// postings; everything that differs between the two lives here.
package corpus

import "strings"

// Corpus identifies one searchable body of records and carries its
// normalization schema.
type Corpus struct {
	name       string
	fieldOrder []string
}

// Candidates is the corpus of candidate CV profiles.
var Candidates = Corpus{
	name: "candidates",
	fieldOrder: []string{
		"Name",
		"Position",
		"Skills",
		"Technical Skills",
		"Soft Skills",
		"Experience",
		"Education",
		"Summary",
		"Strengths",
	},
}

// Jobs is the corpus of job postings.
var Jobs = Corpus{
	name: "jobs",
	fieldOrder: []string{
		"Position",
		"Company",
		"Location",
		"Working Type",
		"Skills",
		"Education",
		"Experience",
		"Technical Skills",
		"Soft Skills",
		"Responsibilities",
		"Benefits",
		"Company Size",
		"Why Join",
		"Summary",
		"Tags",
	},
}

// Name returns the corpus identifier used as the storage partition key.
func (c Corpus) Name() string { return c.name }

// Normalize builds the text representation that gets embedded: the matchable
// fields concatenated in the corpus's fixed order, each prefixed with its
// label. Empty fields are skipped. Embedding this instead of the raw source
// document keeps vectors focused on matchable attributes.
func (c Corpus) Normalize(fields map[string]string) string {
	parts := make([]string, 0, len(c.fieldOrder))
	for _, label := range c.fieldOrder {
		value := strings.TrimSpace(fields[label])
		if value == "" {
			continue
		}
		parts = append(parts, label+": "+value)
	}
	return strings.Join(parts, "\n")
}
