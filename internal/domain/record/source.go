package record

// MetaRef is the metadata key carrying a record's display reference.
const MetaRef = "ref"

// Source is one incoming item of an ingestion batch: the structured fields
// relevant to matching, not yet normalized or embedded.
type Source struct {
	// Ref is a human-readable reference used in failure reports,
	// e.g. a filename or "Backend Engineer at Acme".
	Ref string
	// Fields maps field labels to values. The corpus decides which labels
	// participate in normalization and in what order.
	Fields map[string]string
	// Meta is display metadata carried onto the stored record verbatim.
	Meta map[string]string
}
