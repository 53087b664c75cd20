package index

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/will-rowe/cdrnet/src/alignment"
	"github.com/will-rowe/cdrnet/src/seqio"
)

// test input
var testSeqs = []string{
	"CASSL",
	"CASSF",
	"CASL",
	"CASSLE",
	"CATSL",
	"CSSL",
	"CASSLGF",
	"AASSL",
	"CASRSL",
	"CAS",
	"CTTSL",
}

var testConstraints = []Constraint{
	NewConstraint(0, 0),
	NewConstraint(1, 0),
	NewConstraint(0, 1),
	NewConstraint(1, 1),
	NewConstraint(2, 2),
	{MaxSubstitutions: 1, MaxInsertions: 2, MaxDeletions: 0},
}

func buildTestIndex(t testing.TB, seqs []string) (*Index, []seqio.Sequence) {
	idx := NewIndex()
	parsed := make([]seqio.Sequence, len(seqs))
	for i, text := range seqs {
		seq, err := seqio.ParseSequence(text)
		if err != nil {
			t.Fatal(err)
		}
		parsed[i] = seq
		idx.Insert(seq, i)
	}
	return idx, parsed
}

// feasible is a brute force check that b can be reached from a within the caps
func feasible(a, b []byte, s, i, d int) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	if len(a) > 0 && len(b) > 0 {
		if a[0] == b[0] && feasible(a[1:], b[1:], s, i, d) {
			return true
		}
		if a[0] != b[0] && s > 0 && feasible(a[1:], b[1:], s-1, i, d) {
			return true
		}
	}
	if len(b) > 0 && i > 0 && feasible(a, b[1:], s, i-1, d) {
		return true
	}
	if len(a) > 0 && d > 0 && feasible(a[1:], b, s, i, d-1) {
		return true
	}
	return false
}

// cheapest is a brute force search for the lowest ranked edit script from a to b within the caps
// it returns the script cost (substitutions plus IndelCost per indel) and its number of indels
func cheapest(a, b []byte, s, i, d int) (cost, indels int, ok bool) {
	if len(a) == 0 && len(b) == 0 {
		return 0, 0, true
	}
	try := func(c, n int, found bool, extraCost, extraIndels int) {
		if !found {
			return
		}
		c, n = c+extraCost, n+extraIndels
		if !ok || c < cost || (c == cost && n < indels) {
			cost, indels, ok = c, n, true
		}
	}
	if len(a) > 0 && len(b) > 0 {
		if a[0] == b[0] {
			c, n, found := cheapest(a[1:], b[1:], s, i, d)
			try(c, n, found, 0, 0)
		} else if s > 0 {
			c, n, found := cheapest(a[1:], b[1:], s-1, i, d)
			try(c, n, found, 1, 0)
		}
	}
	if len(b) > 0 && i > 0 {
		c, n, found := cheapest(a, b[1:], s, i-1, d)
		try(c, n, found, IndelCost, 1)
	}
	if len(a) > 0 && d > 0 {
		c, n, found := cheapest(a[1:], b, s, i, d-1)
		try(c, n, found, IndelCost, 1)
	}
	return cost, indels, ok
}

func TestInsertAndGet(t *testing.T) {
	idx, parsed := buildTestIndex(t, testSeqs)
	if idx.Len() != len(testSeqs) {
		t.Fatalf("expected %d sequences, got %d", len(testSeqs), idx.Len())
	}
	for i, seq := range parsed {
		payload, ok := idx.Get(seq)
		if !ok || payload != i {
			t.Errorf("could not get %v back from the index", seq)
		}
	}
	if _, ok := idx.Get(seqio.MustParseSequence("CA")); ok {
		t.Errorf("a prefix of a stored sequence is not stored")
	}
	idx.Insert(parsed[0], 42)
	if payload, _ := idx.Get(parsed[0]); payload != 42 || idx.Len() != len(testSeqs) {
		t.Errorf("re-inserting should replace the payload without growing the index")
	}
	root := idx.Nodes[0]
	if root.MinLen != 3 || root.MaxLen != 7 {
		t.Errorf("root length range should be 3-7, got %d-%d", root.MinLen, root.MaxLen)
	}
}

// TestSubstitutionScenario: {CASSL, CASSF}, one substitution apart
func TestSubstitutionScenario(t *testing.T) {
	idx, parsed := buildTestIndex(t, []string{"CASSL", "CASSF"})
	neighbours := idx.Neighbourhood(parsed[0], NewConstraint(1, 0))
	if len(neighbours) != 2 {
		t.Fatalf("expected CASSL and CASSF, got %d neighbours", len(neighbours))
	}
	if neighbours[0].Payload != 0 || len(neighbours[0].Alignment.Mutations) != 0 {
		t.Errorf("the exact match should be found first")
	}
	s, i, d := neighbours[1].Alignment.Mutations.Counts()
	if neighbours[1].Payload != 1 || s != 1 || i != 0 || d != 0 {
		t.Errorf("expected CASSF with 1/0/0, got payload %d with %d/%d/%d", neighbours[1].Payload, s, i, d)
	}
}

// TestIndelScenario: {CASSL, CASL}, one deletion apart
func TestIndelScenario(t *testing.T) {
	idx, parsed := buildTestIndex(t, []string{"CASSL", "CASL"})
	constraint := NewConstraint(0, 1)
	fromLong := idx.Neighbourhood(parsed[0], constraint)
	fromShort := idx.Neighbourhood(parsed[1], constraint)
	if len(fromLong) != 2 || len(fromShort) != 2 {
		t.Fatalf("CASSL and CASL should be mutual neighbours")
	}
	if s, i, d := fromLong[1].Alignment.Mutations.Counts(); s != 0 || i != 0 || d != 1 {
		t.Errorf("CASSL -> CASL should be one deletion, got %d/%d/%d", s, i, d)
	}
	if s, i, d := fromShort[1].Alignment.Mutations.Counts(); s != 0 || i != 1 || d != 0 {
		t.Errorf("CASL -> CASSL should be one insertion, got %d/%d/%d", s, i, d)
	}
	if idx.Neighbourhood(parsed[0], NewConstraint(1, 0))[0].Payload != 0 || len(idx.Neighbourhood(parsed[0], NewConstraint(1, 0))) != 1 {
		t.Errorf("no indels allowed, CASL should not be found")
	}
}

func TestNeighbourhoodMatchesBruteForce(t *testing.T) {
	idx, parsed := buildTestIndex(t, testSeqs)
	for _, constraint := range testConstraints {
		for _, query := range parsed {
			found := make(map[int]*alignment.Alignment)
			for _, n := range idx.Neighbourhood(query, constraint) {
				if _, dup := found[n.Payload]; dup {
					t.Fatalf("%v reported twice for %v", parsed[n.Payload], query)
				}
				found[n.Payload] = n.Alignment
			}
			for i, target := range parsed {
				want := feasible(query.Codes(), target.Codes(), constraint.MaxSubstitutions, constraint.MaxInsertions, constraint.MaxDeletions)
				aln, got := found[i]
				if want != got {
					t.Fatalf("query %v target %v constraint %+v: brute force %v, index %v", query, target, constraint, want, got)
				}
				if !got {
					continue
				}
				if err := aln.Validate(); err != nil {
					t.Fatalf("query %v target %v: %v", query, target, err)
				}
				if !aln.FullLength() {
					t.Fatalf("alignment of %v to %v is not full length", query, target)
				}
				s, ins, del := aln.Mutations.Counts()
				if s > constraint.MaxSubstitutions || ins > constraint.MaxInsertions || del > constraint.MaxDeletions {
					t.Fatalf("alignment of %v to %v breaks the constraint: %d/%d/%d", query, target, s, ins, del)
				}
				cost, indels, _ := cheapest(query.Codes(), target.Codes(), constraint.MaxSubstitutions, constraint.MaxInsertions, constraint.MaxDeletions)
				if s+IndelCost*(ins+del) != cost || ins+del != indels {
					t.Fatalf("alignment of %v to %v under %+v is %d/%d/%d, a cheaper edit script exists", query, target, constraint, s, ins, del)
				}
			}
		}
	}
}

func TestNeighbourhoodSymmetry(t *testing.T) {
	idx, parsed := buildTestIndex(t, testSeqs)
	for _, constraint := range testConstraints {
		reverse := Constraint{MaxSubstitutions: constraint.MaxSubstitutions, MaxInsertions: constraint.MaxDeletions, MaxDeletions: constraint.MaxInsertions}
		for _, a := range parsed {
			for _, n := range idx.Neighbourhood(a, constraint) {
				b := n.Alignment.Query
				s, ins, del := n.Alignment.Mutations.Counts()
				back := false
				for _, m := range idx.Neighbourhood(b, reverse) {
					if m.Alignment.Query != a {
						continue
					}
					back = true
					bs, bins, bdel := m.Alignment.Mutations.Counts()
					if bs != s || bins != del || bdel != ins {
						t.Fatalf("under %+v %v -> %v is %d/%d/%d (%v) but the way back is %d/%d/%d (%v)", constraint, a, b, s, ins, del, n.Alignment.Mutations, bs, bins, bdel, m.Alignment.Mutations)
					}
				}
				if !back {
					t.Fatalf("under %+v %v finds %v but not the other way round", constraint, a, b)
				}
			}
		}
	}
}

// TestMixedIndelScenario: {CTTSL, CSSL}, a substitution and a deletion apart, also reachable by longer scripts under (2,2)
func TestMixedIndelScenario(t *testing.T) {
	idx, parsed := buildTestIndex(t, []string{"CTTSL", "CSSL"})
	constraint := NewConstraint(2, 2)
	fromLong := idx.Neighbourhood(parsed[0], constraint)
	if len(fromLong) != 2 || fromLong[1].Payload != 1 {
		t.Fatalf("CTTSL should find itself and CSSL, got %d neighbours", len(fromLong))
	}
	if s, i, d := fromLong[1].Alignment.Mutations.Counts(); s != 1 || i != 0 || d != 1 {
		t.Errorf("CTTSL -> CSSL should be 1/0/1, got %d/%d/%d (%v)", s, i, d, fromLong[1].Alignment.Mutations)
	}
	fromShort := idx.Neighbourhood(parsed[1], constraint)
	if len(fromShort) != 2 || fromShort[1].Payload != 0 {
		t.Fatalf("CSSL should find itself and CTTSL, got %d neighbours", len(fromShort))
	}
	if s, i, d := fromShort[1].Alignment.Mutations.Counts(); s != 1 || i != 1 || d != 0 {
		t.Errorf("CSSL -> CTTSL should be 1/1/0, got %d/%d/%d (%v)", s, i, d, fromShort[1].Alignment.Mutations)
	}
}

func TestSearchSkipsRedundantIndels(t *testing.T) {
	idx, parsed := buildTestIndex(t, testSeqs)
	for _, query := range parsed {
		idx.Search(query, NewConstraint(2, 2), func(hit *Hit) bool {
			for j := 1; j < len(hit.Mutations); j++ {
				prev, next := hit.Mutations[j-1], hit.Mutations[j]
				if prev.Type == alignment.Insertion && next.Type == alignment.Deletion && prev.Position == next.Position {
					t.Fatalf("%v -> %v: deletion straight after an insertion (%v)", query, hit.Target, hit.Mutations)
				}
				if prev.Type == alignment.Deletion && next.Type == alignment.Insertion && next.Position == prev.Position+1 && next.To == prev.From {
					t.Fatalf("%v -> %v: residue deleted and inserted back (%v)", query, hit.Target, hit.Mutations)
				}
			}
			return true
		})
	}
}

func TestSearchStops(t *testing.T) {
	idx, parsed := buildTestIndex(t, testSeqs)
	visits := 0
	idx.Search(parsed[0], NewConstraint(2, 2), func(hit *Hit) bool {
		visits++
		return false
	})
	if visits != 1 {
		t.Fatalf("search should stop after the first visit, got %d", visits)
	}
}

func TestEmptyIndex(t *testing.T) {
	idx := NewIndex()
	if n := idx.Neighbourhood(seqio.MustParseSequence("CASSL"), NewConstraint(2, 2)); len(n) != 0 {
		t.Fatalf("an empty index has no neighbours")
	}
}

func TestConcurrentSearch(t *testing.T) {
	idx, parsed := buildTestIndex(t, testSeqs)
	constraint := NewConstraint(1, 1)
	expected := make([]int, len(parsed))
	for i, query := range parsed {
		expected[i] = len(idx.Neighbourhood(query, constraint))
	}
	var wg sync.WaitGroup
	errs := make(chan int, len(parsed)*8)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, query := range parsed {
				if len(idx.Neighbourhood(query, constraint)) != expected[i] {
					errs <- i
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for i := range errs {
		t.Fatalf("concurrent search of %v gave a different result", parsed[i])
	}
}

func TestConstraintValidate(t *testing.T) {
	if err := NewConstraint(1, 1).Validate(); err != nil {
		t.Fatal(err)
	}
	if err := (Constraint{MaxDeletions: -1}).Validate(); err == nil {
		t.Fatal("negative caps should be rejected")
	}
}

func TestBundle(t *testing.T) {
	records := []*seqio.Record{
		seqio.NewRecord(seqio.MustParseSequence("CASSL"), "GILGFVFTL"),
		seqio.NewRecord(seqio.MustParseSequence("CASSF"), "GILGFVFTL", "NLVPMVATV"),
		seqio.NewRecord(seqio.MustParseSequence("CASL")),
	}
	idx := FromRecords(records)
	fileName := filepath.Join(t.TempDir(), "cdrnet.idx")
	if err := NewBundle("test", records, idx).Dump(fileName); err != nil {
		t.Fatal(err)
	}
	bundle, err := LoadBundle(fileName)
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := bundle.Records()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 3 || loaded[1].NumLabels() != 2 || loaded[2].NumLabels() != 0 {
		t.Fatalf("records did not survive the round trip")
	}
	query := seqio.MustParseSequence("CASSL")
	before := idx.Neighbourhood(query, NewConstraint(1, 1))
	after := bundle.Index.Neighbourhood(query, NewConstraint(1, 1))
	if len(before) != len(after) {
		t.Fatalf("loaded index gives %d neighbours, expected %d", len(after), len(before))
	}
	for i := range before {
		if before[i].Payload != after[i].Payload || before[i].Alignment.Mutations.String() != after[i].Alignment.Mutations.String() {
			t.Fatalf("loaded index disagrees at neighbour %d", i)
		}
	}
	if _, err := LoadBundle(filepath.Join(t.TempDir(), "missing.idx")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func BenchmarkNeighbourhood(b *testing.B) {
	idx, parsed := buildTestIndex(b, testSeqs)
	constraint := NewConstraint(2, 1)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		for _, query := range parsed {
			idx.Neighbourhood(query, constraint)
		}
	}
}
