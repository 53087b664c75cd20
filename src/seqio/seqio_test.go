package seqio

import (
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// setup variables
var (
	cdr3a = "CASSLAPGATNEKLFF"
	cdr3b = "CASSLGQAYEQYF"
	tsv   = "cdr3\tantigen.epitope\n" +
		cdr3a + "\tGILGFVFTL\n" +
		cdr3b + "\tNLVPMVATV\n" +
		cdr3a + "\tNLVPMVATV\n" +
		cdr3a + "\tGILGFVFTL\n"
)

func TestParseSequence(t *testing.T) {
	seq, err := ParseSequence("cassLGF")
	if err != nil {
		t.Fatal(err)
	}
	if seq.String() != "CASSLGF" {
		t.Errorf("lower case input was not upper cased: %v", seq)
	}
	if seq.Len() != 7 {
		t.Errorf("expected length 7, got %d", seq.Len())
	}
	if SymbolOf(seq.At(0)) != 'C' {
		t.Errorf("At did not return the code for C")
	}
	if seq != MustParseSequence("CASSLGF") {
		t.Errorf("sequences with the same content should be equal")
	}
}

func TestInvalidSymbol(t *testing.T) {
	_, err := ParseSequence("CASS1GF")
	var symErr *InvalidSymbolError
	if !errors.As(err, &symErr) {
		t.Fatalf("expected an InvalidSymbolError, got %v", err)
	}
	if symErr.Position != 4 || symErr.Symbol != '1' {
		t.Errorf("wrong error details: %+v", symErr)
	}
	if _, err := ParseSequence("CASSBGF"); err == nil {
		t.Errorf("B is not part of the alphabet")
	}
	if _, err := ParseSequence(""); err != ErrEmptySequence {
		t.Errorf("expected ErrEmptySequence, got %v", err)
	}
}

func TestCompare(t *testing.T) {
	a := MustParseSequence("CASSL")
	b := MustParseSequence("CASSF")
	c := MustParseSequence("CASL")
	if a.Compare(b) <= 0 {
		t.Errorf("CASSL should sort after CASSF")
	}
	if a.Compare(c) <= 0 {
		t.Errorf("CASSL should sort after CASL")
	}
	if a.Compare(MustParseSequence("CASSLE")) >= 0 {
		t.Errorf("a prefix should sort first")
	}
	if a.Compare(a) != 0 {
		t.Errorf("a sequence should equal itself")
	}
	// code order follows text order
	if (a.Compare(b) > 0) != (a.String() > b.String()) {
		t.Errorf("code order and text order disagree")
	}
}

func TestCodesRoundTrip(t *testing.T) {
	seq := MustParseSequence(cdr3a)
	if SequenceFromCodes(seq.Codes()) != seq {
		t.Errorf("SequenceFromCodes did not reproduce the sequence")
	}
	codes := seq.Codes()
	codes[0] = 0
	if seq.String() != cdr3a {
		t.Errorf("Codes should return a copy")
	}
}

func TestReadRecords(t *testing.T) {
	records, err := ReadRecords(strings.NewReader(tsv))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 unique records, got %d", len(records))
	}
	if records[0].Seq.String() != cdr3a || records[1].Seq.String() != cdr3b {
		t.Errorf("records not in first-seen order")
	}
	if records[0].NumLabels() != 2 {
		t.Errorf("expected 2 labels for %v, got %v", cdr3a, records[0].Labels())
	}
	if !records[0].SharesLabel(records[1]) {
		t.Errorf("records share NLVPMVATV")
	}
}

func TestReadRecordsMalformed(t *testing.T) {
	if _, err := ReadRecords(strings.NewReader("header\nCASSLGF\n")); err == nil {
		t.Fatal("expected an error for a row without a label column")
	}
	_, err := ReadRecords(strings.NewReader("header\nCASS#GF\tx\n"))
	var symErr *InvalidSymbolError
	if !errors.As(err, &symErr) {
		t.Fatalf("expected a wrapped InvalidSymbolError, got %v", err)
	}
}

func TestSharesLabel(t *testing.T) {
	a := NewRecord(MustParseSequence("CASSL"), "x", "y", "z")
	b := NewRecord(MustParseSequence("CASSF"), "z")
	c := NewRecord(MustParseSequence("CASL"), "w")
	if !a.SharesLabel(b) || !b.SharesLabel(a) {
		t.Errorf("a and b share z")
	}
	if a.SharesLabel(c) {
		t.Errorf("a and c share nothing")
	}
}

func TestOpenRecordsGzip(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "vdjdb.tsv.gz")
	buf := &bytes.Buffer{}
	gz := gzip.NewWriter(buf)
	if _, err := gz.Write([]byte(tsv)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fileName, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	records, err := OpenRecords(fileName)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
}

func TestWriteFASTA(t *testing.T) {
	records, err := ReadRecords(strings.NewReader(tsv))
	if err != nil {
		t.Fatal(err)
	}
	out := &bytes.Buffer{}
	if err := WriteFASTA(out, records); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), ">"+cdr3a) || !strings.Contains(out.String(), "GILGFVFTL;NLVPMVATV") {
		t.Errorf("unexpected FASTA output:\n%v", out.String())
	}
	if strings.Count(out.String(), ">") != 2 {
		t.Errorf("expected 2 FASTA entries")
	}
}
