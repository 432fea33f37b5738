package entrez

import (
	"testing"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
)

func TestParseSearchIDs(t *testing.T) {
	ids, err := parseSearchIDs("Escherichia", []byte(escherichiaSearch))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 || ids[0] != "561" {
		t.Fatalf("expected [561], got %v", ids)
	}

	if _, err := parseSearchIDs("Nonexistia", []byte(emptySearch)); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}

	if _, err := parseSearchIDs("x", []byte("<html>busy</html>")); !domain.IsKind(err, domain.KindTransient) {
		t.Fatalf("expected transient for non-JSON body, got %v", err)
	}

	rate := []byte(`{"error":"API rate limit exceeded","api-key":"1.2.3.4","count":"11","limit":"10"}`)
	if _, err := parseSearchIDs("x", rate); !domain.IsKind(err, domain.KindTransient) {
		t.Fatalf("expected transient for rate limit, got %v", err)
	}

	bad := []byte(`{"esearchresult":{"ERROR":"Invalid query"}}`)
	if _, err := parseSearchIDs("x", bad); !domain.IsKind(err, domain.KindInvalidIdentifier) {
		t.Fatalf("expected invalid_identifier, got %v", err)
	}
}

func TestParseTaxonLineage_FallsBackToLineageString(t *testing.T) {
	body := []byte(`<TaxaSet><Taxon><TaxId>4932</TaxId><ScientificName>Saccharomyces cerevisiae</ScientificName>
<Rank>species</Rank><Lineage>cellular organisms; Eukaryota; Opisthokonta; Fungi</Lineage></Taxon></TaxaSet>`)

	l, err := parseTaxonLineage("4932", body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"cellular organisms", "Eukaryota", "Opisthokonta", "Fungi", "Saccharomyces cerevisiae"}
	got := l.Names()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestParseTaxonLineage_EmptySetIsNotFound(t *testing.T) {
	for _, body := range []string{"", "<TaxaSet></TaxaSet>", "<eFetchResult></eFetchResult>"} {
		if _, err := parseTaxonLineage("1", []byte(body)); !domain.IsKind(err, domain.KindNotFound) {
			t.Errorf("body %q: expected not_found, got %v", body, err)
		}
	}
}

func TestParseTaxonLineage_GarbageIsTransient(t *testing.T) {
	if _, err := parseTaxonLineage("1", []byte("<html><body>Service Unavailable")); !domain.IsKind(err, domain.KindTransient) {
		t.Fatalf("expected transient, got %v", err)
	}
}
