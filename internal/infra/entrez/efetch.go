package entrez

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
)

type xmlTaxaSet struct {
	XMLName xml.Name   `xml:"TaxaSet"`
	Taxa    []xmlTaxon `xml:"Taxon"`
}

type xmlTaxon struct {
	TaxID          string     `xml:"TaxId"`
	ScientificName string     `xml:"ScientificName"`
	Rank           string     `xml:"Rank"`
	Lineage        string     `xml:"Lineage"`
	LineageEx      []xmlTaxon `xml:"LineageEx>Taxon"`
}

type xmlFetchError struct {
	XMLName xml.Name `xml:"eFetchResult"`
	Error   string   `xml:"ERROR"`
}

// parseTaxonLineage decodes an efetch taxonomy document into a root-to-leaf lineage
// that ends with the requested taxon itself.
func parseTaxonLineage(id domain.Identifier, body []byte) (domain.Lineage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, notFound("entrez.efetch", id)
	}

	var fe xmlFetchError
	if err := xml.Unmarshal(trimmed, &fe); err == nil {
		msg := strings.TrimSpace(fe.Error)
		if msg == "" {
			return nil, notFound("entrez.efetch", id)
		}
		// "Invalid uid ..." rejects the id itself; anything else ("ID list is
		// empty", "UID=... cannot get document summary") means no record.
		if strings.Contains(strings.ToLower(msg), "invalid") {
			return nil, &domain.OpError{
				Op:   "entrez.efetch",
				Kind: domain.KindInvalidIdentifier,
				Path: string(id),
				Err:  fmt.Errorf("%s: %w", msg, domain.ErrInvalidIdentifier),
			}
		}
		return nil, &domain.OpError{
			Op:   "entrez.efetch",
			Kind: domain.KindNotFound,
			Path: string(id),
			Err:  fmt.Errorf("%s: %w", msg, domain.ErrNotFound),
		}
	}

	var set xmlTaxaSet
	if err := xml.Unmarshal(trimmed, &set); err != nil {
		return nil, &domain.OpError{
			Op:   "entrez.efetch.decode",
			Kind: domain.KindTransient,
			Path: string(id),
			Err:  fmt.Errorf("%w: %v", domain.ErrTransient, err),
		}
	}
	if len(set.Taxa) == 0 {
		return nil, notFound("entrez.efetch", id)
	}

	t := set.Taxa[0]
	lineage := make(domain.Lineage, 0, len(t.LineageEx)+1)
	if len(t.LineageEx) > 0 {
		for _, a := range t.LineageEx {
			lineage = append(lineage, domain.Taxon{
				TaxID: strings.TrimSpace(a.TaxID),
				Name:  strings.TrimSpace(a.ScientificName),
				Rank:  strings.TrimSpace(a.Rank),
			})
		}
	} else {
		for _, name := range strings.Split(t.Lineage, ";") {
			if n := strings.TrimSpace(name); n != "" {
				lineage = append(lineage, domain.Taxon{Name: n})
			}
		}
	}

	if name := strings.TrimSpace(t.ScientificName); name != "" {
		lineage = append(lineage, domain.Taxon{
			TaxID: strings.TrimSpace(t.TaxID),
			Name:  name,
			Rank:  strings.TrimSpace(t.Rank),
		})
	}

	if len(lineage) == 0 {
		return nil, notFound("entrez.efetch", id)
	}
	return lineage, nil
}
