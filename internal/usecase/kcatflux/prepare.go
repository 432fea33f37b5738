package kcatflux

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
)

// KcatStats describes what PrepareKcat kept and dropped.
type KcatStats struct {
	Rows        int
	LowAccuracy int
	Unparsable  int
	Kept        int
}

// PrepareKcat drops rows whose BiGG accuracy is below minAccuracy (a blank or
// non-numeric accuracy is not a low one and keeps the row), normalises
// BiGG ids and organisms and keeps the largest log10_kcat per (BiGG ID, organism).
func PrepareKcat(t domain.Table, minAccuracy float64) ([]Kcat, KcatStats, error) {
	cols, err := requireColumns(t, ColBiGGID, ColOrganism, ColLog10Kcat, ColAccuracy)
	if err != nil {
		return nil, KcatStats{}, err
	}

	type key struct{ bigg, org string }
	best := make(map[key]float64)
	stats := KcatStats{Rows: len(t.Rows)}

	for r := range t.Rows {
		acc, ok := parseFloat(t.Cell(r, cols[ColAccuracy]))
		if ok && acc < minAccuracy {
			stats.LowAccuracy++
			continue
		}
		kcat, okK := parseFloat(t.Cell(r, cols[ColLog10Kcat]))
		bigg := NormalizeBiGGID(t.Cell(r, cols[ColBiGGID]))
		org := NormalizeOrganism(t.Cell(r, cols[ColOrganism]))
		if !okK || math.IsNaN(kcat) || bigg == "" || org == "" {
			stats.Unparsable++
			continue
		}

		k := key{bigg, org}
		if cur, seen := best[k]; !seen || kcat > cur {
			best[k] = kcat
		}
	}

	out := make([]Kcat, 0, len(best))
	for k, v := range best {
		out = append(out, Kcat{BiGGID: k.bigg, Organism: k.org, Log10Kcat: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BiGGID != out[j].BiGGID {
			return out[i].BiGGID < out[j].BiGGID
		}
		return out[i].Organism < out[j].Organism
	})
	stats.Kept = len(out)
	return out, stats, nil
}

// FluxSummary counts reactions before zero and missing fluxes are dropped.
type FluxSummary struct {
	Reactions int
	// PFBAZero counts reactions with no pFBA flux in any model.
	PFBAZero int
	// FVAZero counts reactions with no flux from either method.
	FVAZero int
	Kept    int
}

// PrepareFlux computes log10(|flux|) and drops rows without a usable flux.
func PrepareFlux(t domain.Table) ([]Flux, FluxSummary, error) {
	cols, err := requireColumns(t, ColBiGGID, ColOrganism, ColFlux, ColFromFVA)
	if err != nil {
		return nil, FluxSummary{}, err
	}

	all := map[string]bool{}
	withPFBA := map[string]bool{}
	noFlux := map[string]bool{}
	out := make([]Flux, 0, len(t.Rows))

	for r := range t.Rows {
		bigg := NormalizeBiGGID(t.Cell(r, cols[ColBiGGID]))
		if bigg == "" {
			continue
		}
		all[bigg] = true

		fromFVA, errB := strconv.ParseBool(strings.TrimSpace(t.Cell(r, cols[ColFromFVA])))
		if errB != nil {
			noFlux[bigg] = true
			continue
		}
		if !fromFVA {
			withPFBA[bigg] = true
		}

		v, ok := parseFloat(t.Cell(r, cols[ColFlux]))
		org := NormalizeOrganism(t.Cell(r, cols[ColOrganism]))
		if !ok || v == 0 || math.IsNaN(v) || math.IsInf(v, 0) || org == "" {
			continue
		}
		out = append(out, Flux{
			BiGGID:    bigg,
			Organism:  org,
			Flux:      v,
			Log10Flux: math.Log10(math.Abs(v)),
			FromFVA:   fromFVA,
		})
	}

	return out, FluxSummary{
		Reactions: len(all),
		PFBAZero:  len(all) - len(withPFBA),
		FVAZero:   len(noFlux),
		Kept:      len(out),
	}, nil
}
