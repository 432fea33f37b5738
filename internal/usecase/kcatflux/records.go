package kcatflux

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
)

// Column names used by the kcat dataset and the flux tables.
const (
	ColBiGGID    = "BiGG ID"
	ColOrganism  = "ORGANISM"
	ColLog10Kcat = "log10_kcat"
	ColAccuracy  = "BiGG acc"
	ColFlux      = "flux"
	ColLog10Flux = "log10_flux"
	ColFromFVA   = "from_fva"
	ColMethod    = "mapping"
)

// Kcat is one turnover number after preprocessing.
type Kcat struct {
	BiGGID    string
	Organism  string
	Log10Kcat float64
}

// Flux is one predicted flux. FromFVA is false for pFBA predictions.
type Flux struct {
	BiGGID    string
	Organism  string
	Flux      float64
	Log10Flux float64
	FromFVA   bool
}

// Method records which stage produced a mapped point.
type Method string

const (
	MethodExact   Method = "exact"
	MethodInexact Method = "inexact"
)

// LineageMethod names the lineage fallback stage at a level.
func LineageMethod(level int) Method {
	return Method("lineage_" + strconv.Itoa(level))
}

// Point is a kcat value paired with a flux.
type Point struct {
	BiGGID    string
	Organism  string
	Log10Kcat float64
	Flux      float64
	Log10Flux float64
	FromFVA   bool
	Method    Method
}

// NormalizeOrganism reduces a BRENDA-style organism name to its genus:
// the first word, brackets removed, title-cased.
//
//	"[Clostridium] difficile" -> "Clostridium"
//	"escherichia coli K-12"  -> "Escherichia"
func NormalizeOrganism(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	genus := fields[0]
	if i := strings.LastIndex(genus, "["); i >= 0 {
		genus = genus[i+1:]
	}
	if i := strings.Index(genus, "]"); i >= 0 {
		genus = genus[:i]
	}
	if genus == "" {
		return ""
	}
	return cases.Title(language.Und).String(genus)
}

// NormalizeBiGGID drops the reverse-direction marker.
func NormalizeBiGGID(raw string) string {
	return strings.ReplaceAll(strings.TrimSpace(raw), "_r", "")
}

// PointsTable renders mapped points with the columns the correlate command reads.
func PointsTable(points []Point) domain.Table {
	t := domain.Table{
		Columns: []string{ColBiGGID, ColOrganism, ColLog10Kcat, ColFlux, ColLog10Flux, ColFromFVA, ColMethod},
		Rows:    make([][]string, 0, len(points)),
	}
	for _, p := range points {
		t.Rows = append(t.Rows, []string{
			p.BiGGID,
			p.Organism,
			formatFloat(p.Log10Kcat),
			formatFloat(p.Flux),
			formatFloat(p.Log10Flux),
			strconv.FormatBool(p.FromFVA),
			string(p.Method),
		})
	}
	return t
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

type columns map[string]int

func requireColumns(t domain.Table, names ...string) (columns, error) {
	out := make(columns, len(names))
	for _, n := range names {
		i, ok := t.ColumnIndex(n)
		if !ok {
			return nil, domain.MissingColumn(n)
		}
		out[n] = i
	}
	return out, nil
}
