package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/naka-gawa/github-dashboard/internal/domain"
	"github.com/naka-gawa/github-dashboard/internal/observability"
)

const pageSize = 100

// FetchAllPages walks a paged collection starting at page 1 until a page
// comes back empty. Search-style responses are unwrapped from their "items"
// field; a single object is returned as the only record. If a page fails,
// the records accumulated so far are returned together with the error.
// A 422 after the first page marks the API's result cap (300 events, 1000
// search results) and ends the collection without error.
func FetchAllPages(ctx context.Context, r Requester, path string, logger *log.Logger) ([]json.RawMessage, error) {
	var records []json.RawMessage
	for page := 1; ; page++ {
		pagePath, err := withPage(path, page)
		if err != nil {
			return records, err
		}

		body, err := r.Request(ctx, pagePath)
		observability.PagesFetchedTotal.Inc()
		if err != nil {
			if page > 1 && isResultCap(err) {
				logger.Printf("  %s is capped after page %d (%d records)", path, page-1, len(records))
				return records, nil
			}
			logger.Printf("  Stopping pagination of %s at page %d with %d records: %v", path, page, len(records), err)
			return records, fmt.Errorf("failed to fetch page %d of %s: %w", page, path, err)
		}

		items, paged, err := unwrapPage(body)
		if err != nil {
			return records, fmt.Errorf("failed to decode page %d of %s: %w", page, path, err)
		}
		if !paged {
			return append(records, items...), nil
		}
		if len(items) == 0 {
			return records, nil
		}
		records = append(records, items...)
		logger.Printf("  Fetched page %d of %s (%d records so far)", page, path, len(records))
	}
}

func isResultCap(err error) bool {
	var reqErr *domain.RequestError
	return errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusUnprocessableEntity
}

func withPage(path string, page int) (string, error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("failed to parse path %q: %w", path, err)
	}
	q := u.Query()
	q.Set("per_page", strconv.Itoa(pageSize))
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// unwrapPage returns the records of one response and whether the response
// was a page (bare array or wrapped items) rather than a single object.
func unwrapPage(body json.RawMessage) ([]json.RawMessage, bool, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, true, nil
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, true, err
		}
		return items, true, nil
	case '{':
		var wrapped struct {
			Items json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, false, err
		}
		if wrapped.Items == nil {
			return []json.RawMessage{json.RawMessage(trimmed)}, false, nil
		}
		var items []json.RawMessage
		if err := json.Unmarshal(wrapped.Items, &items); err != nil {
			return nil, true, err
		}
		return items, true, nil
	default:
		return nil, false, fmt.Errorf("unexpected payload starting with %q", trimmed[0])
	}
}

// decodeRecords decodes each record on its own so a malformed payload costs
// only that record. The dropped records are returned as RecordMappingErrors.
func decodeRecords[T any](records []json.RawMessage, kind string, logger *log.Logger) ([]*T, []error) {
	out := make([]*T, 0, len(records))
	var failures []error
	for i, raw := range records {
		v := new(T)
		if err := json.Unmarshal(raw, v); err != nil {
			mappingErr := &domain.RecordMappingError{Kind: kind, Index: i, Err: err}
			logger.Println(mappingErr)
			observability.RecordMappingFailuresTotal.WithLabelValues(kind).Inc()
			failures = append(failures, mappingErr)
			continue
		}
		out = append(out, v)
	}
	return out, failures
}
