package domain

import (
	"errors"
	"testing"
)

func TestNewFailureMapsKinds(t *testing.T) {
	cases := []struct {
		err  error
		want FailureKind
	}{
		{&OpError{Kind: KindNotFound, Err: ErrNotFound}, FailureNotFound},
		{&OpError{Kind: KindInvalidIdentifier, Err: ErrInvalidIdentifier}, FailureInvalid},
		{&OpError{Kind: KindTransient, Err: ErrTransient}, FailureTransient},
		{errors.New("unclassified"), FailureTransient},
	}
	for _, c := range cases {
		f := NewFailure(c.err)
		if f == nil || f.Kind != c.want {
			t.Errorf("NewFailure(%v) = %+v, want kind %s", c.err, f, c.want)
		}
	}
	if NewFailure(nil) != nil {
		t.Fatalf("expected nil failure for nil error")
	}
}

func TestReportPartitions(t *testing.T) {
	rep := ResolutionReport{
		Results: map[Identifier]ResolutionResult{
			"b": {ID: "b", Lineage: sampleLineage(), FromCache: true},
			"a": {ID: "a", Lineage: sampleLineage()},
			"x": {ID: "x", Failure: &ResolutionFailure{Kind: FailureNotFound}},
		},
	}

	ok := rep.Resolved()
	if len(ok) != 2 || ok[0] != "a" || ok[1] != "b" {
		t.Fatalf("expected sorted [a b], got %v", ok)
	}
	failed := rep.Failed()
	if len(failed) != 1 || failed[0] != "x" {
		t.Fatalf("expected [x], got %v", failed)
	}
	if rep.CacheHits() != 1 {
		t.Fatalf("expected 1 cache hit, got %d", rep.CacheHits())
	}
	if rep.CountByFailure()[FailureNotFound] != 1 {
		t.Fatalf("expected one not_found")
	}
	if len(rep.Lineages()) != 2 {
		t.Fatalf("expected two lineages")
	}
}
