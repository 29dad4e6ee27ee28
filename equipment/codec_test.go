package equipment_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/equipment"
)

// =============================================================================
// ROUND TRIP
// =============================================================================

func TestCodec_RoundTrip_CountsAndComment(t *testing.T) {
	// GIVEN: A comment and positive counts for several items
	// WHEN: Encoding then decoding
	// THEN: Both come back exactly (comment trimmed)

	cases := []struct {
		name    string
		comment string
		counts  equipment.Counts
	}{
		{
			name:    "full kit",
			comment: "Livraison tournoi",
			counts:  equipment.Counts{equipment.Tap: 1, equipment.CO2: 2, equipment.Tent: 1, equipment.Cups: 50},
		},
		{
			name:    "cups only",
			comment: "buvette",
			counts:  equipment.Counts{equipment.Cups: 120},
		},
		{
			name:    "no comment",
			comment: "",
			counts:  equipment.Counts{equipment.Tap: 1, equipment.Counter: 1},
		},
		{
			name:    "comment needs trimming",
			comment: "  retour partiel  ",
			counts:  equipment.Counts{equipment.Cups: 30},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			note := equipment.Encode(tc.comment, tc.counts)
			counts, comment := equipment.Decode(note)

			assert.Equal(t, tc.counts, counts)
			assert.Equal(t, strings.TrimSpace(tc.comment), comment)
		})
	}
}

func TestCodec_Encode_OmitsZeroCounts(t *testing.T) {
	// GIVEN: Counts where some items are zero
	// WHEN: Encoding
	// THEN: Zero entries are absent from the note

	note := equipment.Encode("fête", equipment.Counts{
		equipment.Tap:  1,
		equipment.CO2:  0,
		equipment.Cups: 0,
	})

	assert.Equal(t, "fête | tap=1", note)
}

func TestCodec_Encode_CanonicalOrder(t *testing.T) {
	// Items always serialize in the same order regardless of map iteration.
	counts := equipment.Counts{
		equipment.Cups:    50,
		equipment.Tap:     1,
		equipment.Tent:    1,
		equipment.CO2:     2,
		equipment.Counter: 1,
	}

	first := equipment.Encode("", counts)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, equipment.Encode("", counts))
	}
	assert.Equal(t, "tap=1;co2=2;counter=1;tent=1;cups=50", first)
}

// =============================================================================
// DECODE EDGE CASES
// =============================================================================

func TestCodec_Decode_AbsentKeyReadsZero(t *testing.T) {
	counts, _ := equipment.Decode("tap=1")

	assert.Equal(t, 1, counts[equipment.Tap])
	assert.Equal(t, 0, counts[equipment.Cups], "absent key reads as zero")
	assert.False(t, counts.Has(equipment.Cups), "absent key is not recorded")
}

func TestCodec_Decode_ExplicitZeroIsRecorded(t *testing.T) {
	// "cups=0" means the operator said zero cups came back, which is
	// not the same as saying nothing about cups.
	counts, _ := equipment.Decode("retour | cups=0")

	assert.True(t, counts.Has(equipment.Cups))
	assert.Equal(t, 0, counts[equipment.Cups])
}

func TestCodec_Decode_UnknownKeysIgnored(t *testing.T) {
	counts, comment := equipment.Decode("livraison | tap=1;frigo=3;cups=20")

	assert.Equal(t, equipment.Counts{equipment.Tap: 1, equipment.Cups: 20}, counts)
	assert.Equal(t, "livraison", comment)
}

func TestCodec_Decode_MalformedIntegersBecomeZero(t *testing.T) {
	cases := []struct {
		name string
		note string
	}{
		{"not a number", "cups=beaucoup"},
		{"trailing text", "cups=50 environ"},
		{"negative", "cups=-3"},
		{"empty value", "cups="},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			counts, _ := equipment.Decode(tc.note)
			assert.True(t, counts.Has(equipment.Cups), "key should still be recorded")
			assert.Equal(t, 0, counts[equipment.Cups])
		})
	}
}

func TestCodec_Decode_NoSeparator(t *testing.T) {
	// GIVEN: Hand-typed notes without the separator
	// THEN: A bare block parses; plain prose stays a comment

	counts, comment := equipment.Decode("tap=1;cups=50")
	assert.Equal(t, equipment.Counts{equipment.Tap: 1, equipment.Cups: 50}, counts)
	assert.Empty(t, comment)

	counts, comment = equipment.Decode("rappeler le client lundi")
	assert.Empty(t, counts)
	assert.Equal(t, "rappeler le client lundi", comment)
}

func TestCodec_Decode_ProseWithEqualsSign(t *testing.T) {
	// A comment that merely contains "=" must not turn into a block.
	counts, comment := equipment.Decode("prix=68 confirmé par tel")

	assert.Empty(t, counts, "unrecognized key yields no counts")
	assert.Equal(t, "prix=68 confirmé par tel", comment)
}

func TestCodec_Decode_CaseAndWhitespace(t *testing.T) {
	counts, comment := equipment.Decode("  Retour  |  TAP = 1 ; Cups= 12 ")

	assert.Equal(t, equipment.Counts{equipment.Tap: 1, equipment.Cups: 12}, counts)
	assert.Equal(t, "Retour", comment)
}

func TestCodec_Decode_Empty(t *testing.T) {
	counts, comment := equipment.Decode("")

	assert.Empty(t, counts)
	assert.Empty(t, comment)
}

func TestCodec_Decode_SeparatorInProse(t *testing.T) {
	// A separator with no recognized pairs after it is just prose.
	counts, comment := equipment.Decode("voir bon de commande | page 2")

	assert.Empty(t, counts)
	assert.Equal(t, "voir bon de commande | page 2", comment)
}
