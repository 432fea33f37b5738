package httpclient

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
)

// BuildGet builds a GET request for base + "/" + endpoint with the given query.
func BuildGet(ctx context.Context, base, endpoint string, query url.Values) (*http.Request, error) {
	if strings.TrimSpace(base) == "" {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindInvalidConfig,
			Err:  domain.ErrInvalidConfig,
		}
	}

	u, err := url.Parse(strings.TrimRight(base, "/") + "/" + strings.TrimLeft(endpoint, "/"))
	if err != nil {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindInvalidConfig,
			Path: base,
			Err:  err,
		}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindInvalidConfig,
			Path: base,
			Err:  domain.ErrInvalidConfig,
		}
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindInvalidConfig,
			Path: base,
			Err:  err,
		}
	}
	return req, nil
}
