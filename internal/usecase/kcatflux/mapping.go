package kcatflux

import (
	"io"
	"log/slog"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
)

// Summary counts the outcome of a mapping run.
type Summary struct {
	KcatValues int
	DataPoints int
	PFBA       int
	FVA        int
	Unmapped   int
	ByMethod   map[Method]int
}

// Mapper maps kcat values onto fluxes: exact species match, then taxonomic
// relatives at decreasing lineage depth, then any organism.
type Mapper struct {
	levels     []int
	rankedOnly bool
	logger     *slog.Logger
}

type Option func(*Mapper)

// WithLevels sets the lineage depths tried, in order.
func WithLevels(levels ...int) Option {
	return func(m *Mapper) {
		if len(levels) > 0 {
			m.levels = append([]int(nil), levels...)
		}
	}
}

// WithRankedOnly uses lineages without pseudo-ranks.
func WithRankedOnly(v bool) Option {
	return func(m *Mapper) { m.rankedOnly = v }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Mapper) {
		if l != nil {
			m.logger = l
		}
	}
}

func NewMapper(opts ...Option) *Mapper {
	m := &Mapper{
		levels: []int{3, 2, 1},
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type exactKey struct{ bigg, org string }

type groupKey struct {
	bigg    string
	taxon   string
	fromFVA bool
}

type mean struct {
	flux, log10 float64
	n           int
}

func (a *mean) add(f Flux) {
	a.flux += f.Flux
	a.log10 += f.Log10Flux
	a.n++
}

// Map pairs every kcat value with a flux. Lineages are looked up by organism.
func (m *Mapper) Map(kcats []Kcat, fluxes []Flux, lineages map[domain.Identifier]domain.Lineage) ([]Point, Summary) {
	taxonAt := func(org string, level int) string {
		l := lineages[domain.Identifier(org)]
		if m.rankedOnly {
			l = l.Ranked()
		}
		return l.At(level)
	}

	exact := make(map[exactKey][]Flux)
	inexact := make(map[groupKey]*mean)
	byLevel := make(map[int]map[groupKey]*mean, len(m.levels))
	for _, lvl := range m.levels {
		byLevel[lvl] = make(map[groupKey]*mean)
	}

	for _, f := range fluxes {
		k := exactKey{f.BiGGID, f.Organism}
		exact[k] = append(exact[k], f)
		accumulate(inexact, groupKey{bigg: f.BiGGID, fromFVA: f.FromFVA}, f)

		for _, lvl := range m.levels {
			taxon := taxonAt(f.Organism, lvl)
			if taxon == "" {
				continue
			}
			accumulate(byLevel[lvl], groupKey{bigg: f.BiGGID, taxon: taxon, fromFVA: f.FromFVA}, f)
		}
	}

	sum := Summary{ByMethod: map[Method]int{}}
	points := make([]Point, 0, len(kcats))

	for _, k := range kcats {
		base := Point{BiGGID: k.BiGGID, Organism: k.Organism, Log10Kcat: k.Log10Kcat}

		if matches := exact[exactKey{k.BiGGID, k.Organism}]; len(matches) > 0 {
			for _, f := range matches {
				p := base
				p.Flux, p.Log10Flux, p.FromFVA, p.Method = f.Flux, f.Log10Flux, f.FromFVA, MethodExact
				points = append(points, p)
			}
			continue
		}

		p, ok := m.fallback(base, byLevel, inexact, taxonAt)
		if !ok {
			sum.Unmapped++
			continue
		}
		points = append(points, p)
	}

	sum.DataPoints = len(points)
	sum.KcatValues = len(points) + sum.Unmapped
	for _, p := range points {
		if p.FromFVA {
			sum.FVA++
		} else {
			sum.PFBA++
		}
		sum.ByMethod[p.Method]++
	}

	m.logger.Info("kcatflux.map.done",
		"kcat_values", sum.KcatValues,
		"data_points", sum.DataPoints,
		"pfba", sum.PFBA,
		"fva", sum.FVA,
		"unmapped", sum.Unmapped,
	)

	return points, sum
}

func (m *Mapper) fallback(base Point, byLevel map[int]map[groupKey]*mean, inexact map[groupKey]*mean, taxonAt func(string, int) string) (Point, bool) {
	for _, lvl := range m.levels {
		taxon := taxonAt(base.Organism, lvl)
		if taxon == "" {
			continue
		}
		if p, ok := preferPFBA(base, byLevel[lvl], groupKey{bigg: base.BiGGID, taxon: taxon}, LineageMethod(lvl)); ok {
			return p, true
		}
	}
	return preferPFBA(base, inexact, groupKey{bigg: base.BiGGID}, MethodInexact)
}

func preferPFBA(base Point, groups map[groupKey]*mean, key groupKey, method Method) (Point, bool) {
	for _, fva := range []bool{false, true} {
		key.fromFVA = fva
		g, ok := groups[key]
		if !ok || g.n == 0 {
			continue
		}
		p := base
		p.Flux = g.flux / float64(g.n)
		p.Log10Flux = g.log10 / float64(g.n)
		p.FromFVA = fva
		p.Method = method
		return p, true
	}
	return Point{}, false
}

func accumulate(groups map[groupKey]*mean, k groupKey, f Flux) {
	g, ok := groups[k]
	if !ok {
		g = &mean{}
		groups[k] = g
	}
	g.add(f)
}
