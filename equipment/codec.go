/*
codec.go - Encoding equipment counts into movement notes

PURPOSE:
  Operators record equipment alongside a delivery by typing a structured
  block into the movement's note field:

      "Livraison match de samedi | tap=1;co2=2;cups=50"

  The part before the separator is a free-text comment. The part after
  is a semicolon-separated list of key=integer pairs drawn from the
  recognized item kinds.

DECODING CONTRACT:
  - Unknown keys are ignored.
  - Malformed or negative integers decode to 0 (the key stays present).
  - An absent key simply reads as zero from the resulting Counts.
  - Keys are matched case-insensitively and whitespace-trimmed.
  - If the note has no separator, it is parsed as a bare block when it
    yields at least one recognized pair; otherwise the whole note is
    treated as a comment.

ENCODING CONTRACT:
  - Zero and negative counts are omitted.
  - Keys are written in canonical order (KnownItems), so encoding the
    same Counts always yields the same string.
  - An empty block collapses to the bare comment and vice versa.

ROUND TRIP:
  For any comment without the separator token and any Counts with only
  positive values, Decode(Encode(comment, counts)) returns the same
  counts and the trimmed comment.
*/
package equipment

import (
	"strconv"
	"strings"
)

// Separator divides the human comment from the structured block.
const Separator = " | "

// Encode joins a human comment and item counts into a single note
// string. Zero-valued entries are dropped.
func Encode(comment string, counts Counts) string {
	var pairs []string
	for _, item := range KnownItems() {
		if n, ok := counts[item]; ok && n > 0 {
			pairs = append(pairs, string(item)+"="+strconv.Itoa(n))
		}
	}

	comment = strings.TrimSpace(comment)
	block := strings.Join(pairs, ";")

	switch {
	case comment == "":
		return block
	case block == "":
		return comment
	default:
		return comment + Separator + block
	}
}

// Decode splits a note into its item counts and human comment.
// The comment comes back trimmed. Notes written by hand, without a
// separator, still decode when they contain recognized pairs.
func Decode(note string) (Counts, string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return Counts{}, ""
	}

	// The block never contains the separator, so the last occurrence
	// is the boundary even if the comment happens to contain one.
	if idx := strings.LastIndex(note, Separator); idx >= 0 {
		comment := strings.TrimSpace(note[:idx])
		counts := parseBlock(note[idx+len(Separator):])
		if len(counts) == 0 {
			// Not actually a block; the separator was part of prose.
			return Counts{}, note
		}
		return counts, comment
	}

	counts := parseBlock(note)
	if len(counts) == 0 {
		return Counts{}, note
	}
	return counts, ""
}

// parseBlock reads "key=int;key=int" fragments. Fragments without "="
// and unknown keys are skipped.
func parseBlock(block string) Counts {
	counts := Counts{}
	for _, part := range strings.Split(block, ";") {
		part = strings.TrimSpace(part)
		if part == "" || !strings.Contains(part, "=") {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		item := Item(strings.ToLower(strings.TrimSpace(kv[0])))
		if !IsKnown(item) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(kv[1]))
		if err != nil || n < 0 {
			n = 0
		}
		counts[item] = n
	}
	return counts
}
