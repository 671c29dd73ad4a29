package domain

import "strings"

// Source table columns read from the per-split TSV files.
const (
	ColumnFileID     = "file_id"
	ColumnDomain     = "domain"
	ColumnSemantics  = "decoupled_normalized_seqlogical"
	ColumnTranscript = "normalized_utterance"
)

// RawRecord is one row of a split's source metadata table.
// Fields are already normalised by the corpus authors and are copied verbatim.
type RawRecord struct {
	// FileID is the audio identifier. It embeds a split token such as "_train_0".
	FileID string

	// Domain is the topical label.
	Domain string

	// Semantics is the bracketed logical form.
	Semantics string

	// Transcript is the normalised utterance text.
	Transcript string
}

// AudioRelPath resolves the audio file path relative to the corpus root.
// The source identifiers reference "<name>_<split>_0" directories while the
// extracted pool uses "<name>_<split>".
func (r RawRecord) AudioRelPath(split Split) string {
	return strings.ReplaceAll(r.FileID, "_"+split.String()+"_0", "_"+split.String())
}
