package internaldefs

import (
	"strings"
	"testing"
)

func TestCumulativeBuckets(t *testing.T) {
	got := CumulativeBuckets(NormalizeBuckets([]uint64{1, 2, 3}))
	want := [8]uint64{1, 3, 6, 6, 6, 6, 6, 6}
	if got != want {
		t.Fatalf("CumulativeBuckets = %v, want %v", got, want)
	}
}

func TestNormalizeBucketsTruncates(t *testing.T) {
	got := NormalizeBuckets([]uint64{1, 1, 1, 1, 1, 1, 1, 1, 9})
	if got[7] != 1 {
		t.Fatalf("unexpected last bucket %d", got[7])
	}
}

func TestDefinitionsAreUniqueAndPrefixed(t *testing.T) {
	seen := map[string]bool{AuditDroppedName: true}
	for _, def := range CounterDefs {
		if !strings.HasPrefix(def.Name, "campusauth_") || !strings.HasSuffix(def.Name, "_total") {
			t.Fatalf("bad counter name %q", def.Name)
		}
		if seen[def.Name] {
			t.Fatalf("duplicate metric %q", def.Name)
		}
		seen[def.Name] = true
	}
	for _, def := range HistogramDefs {
		if !strings.HasSuffix(def.Name, "_seconds") {
			t.Fatalf("bad histogram name %q", def.Name)
		}
		if seen[def.Name] {
			t.Fatalf("duplicate metric %q", def.Name)
		}
		seen[def.Name] = true
	}
	if len(HistogramBoundSuffix) != len(HistogramBounds)+1 {
		t.Fatalf("bound suffixes out of sync with bounds")
	}
}
