// Package holders is the client for the policy holders listing API.
package holders

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Holder is one address holding assets of a policy. Only the number of
// assets is kept.
type Holder struct {
	Address    string
	AssetCount int
}

// Page is one response of the listing endpoint. An empty NextCursor marks
// the last page.
type Page struct {
	Holders    []Holder
	NextCursor string
}

// Last reports whether no further page follows.
func (p *Page) Last() bool { return p.NextCursor == "" }

// ErrMalformedPage is returned for a 2xx body that lacks the data list or an
// item's assets list. An empty data list is a valid page.
var ErrMalformedPage = errors.New("holders api: malformed page")

type pageResponse struct {
	Data *[]struct {
		Address string             `json:"address"`
		Assets  *[]json.RawMessage `json:"assets"`
	} `json:"data"`
	NextCursor *string `json:"next_cursor"`
}

func decodePage(body []byte) (*Page, error) {
	var resp pageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("decode page: missing data: %w", ErrMalformedPage)
	}

	page := &Page{Holders: make([]Holder, 0, len(*resp.Data))}
	for i, item := range *resp.Data {
		if item.Assets == nil {
			return nil, fmt.Errorf("decode page: item %d: missing assets: %w", i, ErrMalformedPage)
		}
		page.Holders = append(page.Holders, Holder{
			Address:    item.Address,
			AssetCount: len(*item.Assets),
		})
	}
	if resp.NextCursor != nil {
		page.NextCursor = *resp.NextCursor
	}
	return page, nil
}

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	Status int
	Body   []byte
}

func (e *HTTPError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("holders api: http %d", e.Status)
	}
	return fmt.Sprintf("holders api: http %d: %s", e.Status, truncate(e.Body, 200))
}

// StatusCode lets pkg/ratelimit classify the error.
func (e *HTTPError) StatusCode() int { return e.Status }

// Unauthorized reports whether the API rejected the credential.
func (e *HTTPError) Unauthorized() bool {
	return e.Status == 401 || e.Status == 403
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
