package policy

import "github.com/SscSPs/trust_desk_app/internal/core/domain"

// Merge combines AI-proposed flags and notes with engine output. Flags and notes
// are unioned with duplicates collapsed; severity is recomputed from the union
// and never copied from either side.
func Merge(proposedFlags domain.Flags, proposedNotes []string, computed Result) Result {
	flags := domain.Flags(nil).Union(proposedFlags).Union(computed.Flags)
	return Result{
		Flags:    flags,
		Notes:    MergeNotes(proposedNotes, computed.Notes),
		Severity: domain.SeverityOf(flags),
	}
}

// MergeNotes unions note lists, keeping the first occurrence of each note.
func MergeNotes(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, list := range lists {
		for _, note := range list {
			if _, dup := seen[note]; dup {
				continue
			}
			seen[note] = struct{}{}
			out = append(out, note)
		}
	}
	return out
}
