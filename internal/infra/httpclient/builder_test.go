package httpclient

import (
	"context"
	"net/url"
	"testing"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
)

func TestBuildGetJoinsEndpointAndQuery(t *testing.T) {
	q := url.Values{}
	q.Set("db", "taxonomy")
	q.Set("term", "Escherichia[Scientific Name]")

	req, err := BuildGet(context.Background(), "https://eutils.example.org/entrez/eutils/", "/esearch.fcgi", q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.URL.Path != "/entrez/eutils/esearch.fcgi" {
		t.Fatalf("unexpected path %q", req.URL.Path)
	}
	if req.URL.Query().Get("term") != "Escherichia[Scientific Name]" {
		t.Fatalf("expected term to round-trip, got %q", req.URL.Query().Get("term"))
	}
}

func TestBuildGetRejectsBadBase(t *testing.T) {
	for _, base := range []string{"", "   ", "ftp://example.org"} {
		_, err := BuildGet(context.Background(), base, "efetch.fcgi", nil)
		if !domain.IsKind(err, domain.KindInvalidConfig) {
			t.Errorf("BuildGet(%q) expected invalid_config, got %v", base, err)
		}
	}
}
