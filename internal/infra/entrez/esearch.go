package entrez

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
)

// parseSearchIDs pulls the taxonomy ids out of an esearch JSON response.
// An empty id list means the service has no record for the term.
func parseSearchIDs(id domain.Identifier, body []byte) ([]string, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		// NCBI occasionally answers with an HTML error page under load.
		return nil, &domain.OpError{
			Op:   "entrez.esearch.decode",
			Kind: domain.KindTransient,
			Path: string(id),
			Err:  fmt.Errorf("%w: response is not JSON: %v", domain.ErrTransient, err),
		}
	}

	if msg, ok := stringAt(doc, "$.error"); ok && msg != "" {
		kind := domain.KindInvalidIdentifier
		if strings.Contains(strings.ToLower(msg), "rate limit") {
			kind = domain.KindTransient
		}
		return nil, &domain.OpError{
			Op:   "entrez.esearch",
			Kind: kind,
			Path: string(id),
			Err:  errors.New(msg),
		}
	}
	if msg, ok := stringAt(doc, "$.esearchresult.ERROR"); ok && msg != "" {
		return nil, &domain.OpError{
			Op:   "entrez.esearch",
			Kind: domain.KindInvalidIdentifier,
			Path: string(id),
			Err:  fmt.Errorf("%s: %w", msg, domain.ErrInvalidIdentifier),
		}
	}

	raw, err := jsonpath.Get("$.esearchresult.idlist", doc)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "entrez.esearch.decode",
			Kind: domain.KindTransient,
			Path: string(id),
			Err:  fmt.Errorf("%w: missing idlist: %v", domain.ErrTransient, err),
		}
	}

	list, ok := raw.([]any)
	if !ok {
		return nil, &domain.OpError{
			Op:   "entrez.esearch.decode",
			Kind: domain.KindTransient,
			Path: string(id),
			Err:  fmt.Errorf("%w: idlist is %T", domain.ErrTransient, raw),
		}
	}

	ids := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			ids = append(ids, strings.TrimSpace(s))
		}
	}
	if len(ids) == 0 {
		return nil, notFound("entrez.esearch", id)
	}
	return ids, nil
}

func stringAt(doc any, path string) (string, bool) {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func notFound(op string, id domain.Identifier) error {
	return &domain.OpError{
		Op:   op,
		Kind: domain.KindNotFound,
		Path: string(id),
		Err:  domain.ErrNotFound,
	}
}
