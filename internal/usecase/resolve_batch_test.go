package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
)

func fixedClock() (func() time.Time, func() string) {
	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return func() time.Time { return t0 }, func() string { return "report-1" }
}

func TestResolveBatch_WarmCacheMakesNoCalls(t *testing.T) {
	cache := newFakeCache()
	cache.Put("Escherichia", lineageOf("cellular organisms", "Bacteria", "Escherichia"))
	cache.Put("562", lineageOf("cellular organisms", "Bacteria", "Escherichia coli"))
	client := &fakeClient{}

	now, id := fixedClock()
	rep, err := NewResolveBatch(cache, client, WithClock(now, id)).Execute(context.Background(), "test", []string{"Escherichia", "562"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if client.callCount() != 0 {
		t.Fatalf("expected no directory calls, got %d", client.callCount())
	}
	if rep.CacheHits() != 2 || len(rep.Resolved()) != 2 {
		t.Fatalf("unexpected report: hits=%d resolved=%v", rep.CacheHits(), rep.Resolved())
	}
	if rep.ID != "report-1" || rep.Source != "test" {
		t.Fatalf("unexpected report meta: %+v", rep)
	}
}

func TestResolveBatch_OneFailureDoesNotAbortBatch(t *testing.T) {
	client := &fakeClient{answers: map[domain.Identifier]domain.Lineage{}}
	var ids []string
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("Genus%d", i)
		ids = append(ids, id)
		if i != 4 {
			client.answers[domain.Identifier(id)] = lineageOf("cellular organisms", "Bacteria", id)
		}
	}

	cache := newFakeCache()
	rep, err := NewResolveBatch(cache, client).Execute(context.Background(), "", ids)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got := len(rep.Resolved()); got != 9 {
		t.Fatalf("expected 9 resolved, got %d", got)
	}
	failed := rep.Results["Genus4"]
	if failed.OK() || failed.Failure.Kind != domain.FailureNotFound {
		t.Fatalf("expected not_found for Genus4, got %+v", failed)
	}
	if len(rep.Results) != 10 {
		t.Fatalf("expected one result per input, got %d", len(rep.Results))
	}
	if len(cache.entries) != 9 {
		t.Fatalf("expected 9 cached lineages, got %d", len(cache.entries))
	}
	if _, ok := cache.entries["Genus4"]; ok {
		t.Fatalf("failures must not be cached")
	}
}

func TestResolveBatch_InvalidIdentifiersNeverReachDirectory(t *testing.T) {
	client := &fakeClient{answers: map[domain.Identifier]domain.Lineage{
		"Bacillus": lineageOf("Bacteria", "Bacillus"),
	}}

	rep, err := NewResolveBatch(newFakeCache(), client).Execute(context.Background(), "", []string{"", "Bacillus", "bad\x00id"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if client.callCount() != 1 {
		t.Fatalf("expected 1 call, got %d", client.callCount())
	}
	for _, key := range []domain.Identifier{"", "bad\x00id"} {
		res, ok := rep.Results[key]
		if !ok || res.Failure == nil || res.Failure.Kind != domain.FailureInvalid {
			t.Fatalf("expected invalid_identifier for %q, got %+v", key, res)
		}
	}
}

func TestResolveBatch_DuplicatesResolvedOnce(t *testing.T) {
	client := &fakeClient{answers: map[domain.Identifier]domain.Lineage{
		"Bacillus": lineageOf("Bacteria", "Bacillus"),
	}}

	rep, err := NewResolveBatch(newFakeCache(), client).Execute(context.Background(), "", []string{"Bacillus", " Bacillus ", "Bacillus"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if client.callCount() != 1 {
		t.Fatalf("expected a single lookup, got %d", client.callCount())
	}
	if len(rep.Results) != 2 {
		t.Fatalf("expected one result per distinct input, got %d", len(rep.Results))
	}
	for _, key := range []domain.Identifier{"Bacillus", " Bacillus "} {
		res, ok := rep.Results[key]
		if !ok || !res.OK() || res.ID != key {
			t.Fatalf("expected %q keyed as given and resolved, got %+v", key, res)
		}
	}
}

func TestResolveBatch_TransientRecordedWithAttempts(t *testing.T) {
	transient := &domain.OpError{Op: "entrez.efetch", Kind: domain.KindTransient, Err: domain.ErrTransient}
	client := &fakeClient{errs: map[domain.Identifier]error{"Vibrio": transient}}

	rep, err := NewResolveBatch(newFakeCache(), client).Execute(context.Background(), "", []string{"Vibrio"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	res := rep.Results["Vibrio"]
	if res.Failure == nil || res.Failure.Kind != domain.FailureTransient {
		t.Fatalf("expected transient failure, got %+v", res)
	}
	if res.Attempts != 1 {
		t.Fatalf("expected attempts propagated, got %d", res.Attempts)
	}
}

func TestResolveBatch_Idempotent(t *testing.T) {
	client := &fakeClient{answers: map[domain.Identifier]domain.Lineage{
		"Bacillus":   lineageOf("Bacteria", "Bacillus"),
		"Salmonella": lineageOf("Bacteria", "Salmonella"),
	}}
	cache := newFakeCache()
	uc := NewResolveBatch(cache, client)
	ids := []string{"Bacillus", "Salmonella", "Nowhere"}

	first, err := uc.Execute(context.Background(), "", ids)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	callsAfterFirst := client.callCount()

	second, err := uc.Execute(context.Background(), "", ids)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if fmt.Sprint(first.Resolved()) != fmt.Sprint(second.Resolved()) {
		t.Fatalf("resolved sets differ: %v vs %v", first.Resolved(), second.Resolved())
	}
	for _, id := range first.Resolved() {
		if !first.Results[id].Lineage.Equal(second.Results[id].Lineage) {
			t.Fatalf("lineage for %s changed between runs", id)
		}
	}
	// Only the unresolved identifier is looked up again.
	if got := client.callCount() - callsAfterFirst; got != 1 {
		t.Fatalf("expected 1 new lookup on rerun, got %d", got)
	}
}

func TestResolveBatch_CancelBetweenIdentifiers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := &fakeClient{answers: map[domain.Identifier]domain.Lineage{
		"A1": lineageOf("Bacteria", "A1"),
		"A2": lineageOf("Bacteria", "A2"),
		"A3": lineageOf("Bacteria", "A3"),
	}}
	client.onCall = func(id domain.Identifier) {
		if id == "A1" {
			cancel()
		}
	}
	cache := newFakeCache()

	rep, err := NewResolveBatch(cache, client).Execute(ctx, "", []string{"A1", "A2", "A3"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if client.callCount() != 1 {
		t.Fatalf("expected lookups to stop after cancel, got %d", client.callCount())
	}
	if !rep.Results["A1"].OK() {
		t.Fatalf("completed lookup must be kept: %+v", rep.Results["A1"])
	}
	if _, ok := cache.entries["A1"]; !ok {
		t.Fatalf("completed lookup must be cached")
	}
	for _, id := range []domain.Identifier{"A2", "A3"} {
		res := rep.Results[id]
		if res.Failure == nil || res.Failure.Kind != domain.FailureTransient {
			t.Fatalf("expected %s reported as transient, got %+v", id, res)
		}
	}
	if rep.EndedAt.IsZero() {
		t.Fatalf("partial report must be finished")
	}
}

func TestResolveBatch_CancelDuringLastLookup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := &fakeClient{answers: map[domain.Identifier]domain.Lineage{
		"A1": lineageOf("Bacteria", "A1"),
		"A2": lineageOf("Bacteria", "A2"),
	}}
	client.onCall = func(id domain.Identifier) {
		if id == "A2" {
			cancel()
		}
	}

	rep, err := NewResolveBatch(newFakeCache(), client).Execute(ctx, "", []string{"A1", "A2"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if client.callCount() != 2 {
		t.Fatalf("expected both lookups, got %d", client.callCount())
	}
	if len(rep.Results) != 2 || rep.EndedAt.IsZero() {
		t.Fatalf("expected a finished report with both results, got %+v", rep)
	}
}

func TestResolveBatch_KeysResultsByInput(t *testing.T) {
	client := &fakeClient{answers: map[domain.Identifier]domain.Lineage{
		"Escherichia": lineageOf("Bacteria", "Escherichia"),
	}}

	rep, err := NewResolveBatch(newFakeCache(), client).Execute(context.Background(), "", []string{" Escherichia", ""})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok := rep.Results["Escherichia"]; ok {
		t.Fatalf("trimmed form must not appear as a key: %+v", rep.Results)
	}
	res, ok := rep.Results[" Escherichia"]
	if !ok || !res.OK() {
		t.Fatalf("expected the input string as key, got %+v", rep.Results)
	}
	if got := rep.Lineages()[" Escherichia"]; len(got) == 0 {
		t.Fatalf("expected lineage joinable by the input string")
	}
	if bad := rep.Results[""]; bad.Failure == nil || bad.Failure.Kind != domain.FailureInvalid {
		t.Fatalf("expected empty input reported invalid, got %+v", bad)
	}
}

func TestResolveBatch_MissingClientIsConfigError(t *testing.T) {
	_, err := NewResolveBatch(newFakeCache(), nil).Execute(context.Background(), "", []string{"Bacillus"})
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid_config, got %v", err)
	}
}

func TestResolveBatch_ProgressAndReportStore(t *testing.T) {
	client := &fakeClient{answers: map[domain.Identifier]domain.Lineage{
		"A1": lineageOf("Bacteria", "A1"),
		"A2": lineageOf("Bacteria", "A2"),
	}}
	reports := &fakeReports{}
	var ticks []int

	_, err := NewResolveBatch(newFakeCache(), client,
		WithReportStore(reports),
		WithProgress(func(done, total int, _ domain.Identifier) {
			if total != 2 {
				t.Errorf("unexpected total %d", total)
			}
			ticks = append(ticks, done)
		}),
	).Execute(context.Background(), "", []string{"A1", "A2"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if fmt.Sprint(ticks) != "[1 2]" {
		t.Fatalf("unexpected progress ticks: %v", ticks)
	}
	if len(reports.saved) != 1 || len(reports.saved[0].Results) != 2 {
		t.Fatalf("expected one saved report, got %+v", reports.saved)
	}
}
