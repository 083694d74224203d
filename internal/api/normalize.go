package api

import (
	"encoding/json"
	"fmt"

	"github.com/bdcmjobs/jobdesk/internal/domain"
)

// ListMeta is the pagination envelope every list endpoint is normalized to.
type ListMeta struct {
	Total int
	Page  int
	Limit int
	Pages int
}

// listEnvelope accepts the shapes the backend has been observed to emit:
// {data: [...]}, {items: [...]}, or a bare array. Counting fields vary the
// same way ("pages" vs nothing), so Pages is recomputed when absent.
type listEnvelope struct {
	Items json.RawMessage `json:"items"`
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
	Pages int             `json:"pages"`
}

// decodeList normalizes a list response body into one canonical item slice
// plus metadata. Shape-sniffing lives here and nowhere else.
func decodeList[T any](raw []byte) ([]T, ListMeta, error) {
	var items []T

	// Bare array: synthesize metadata the way the original client did.
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, ListMeta{}, &ServerError{Message: fmt.Sprintf("decode list: %v", err)}
		}
		n := len(items)
		return items, ListMeta{Total: n, Page: 1, Limit: n, Pages: 1}, nil
	}

	var env listEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, ListMeta{}, &ServerError{Message: fmt.Sprintf("decode list envelope: %v", err)}
	}

	itemsRaw := env.Items
	if len(itemsRaw) == 0 || string(itemsRaw) == "null" {
		itemsRaw = env.Data
	}
	if len(itemsRaw) > 0 && string(itemsRaw) != "null" {
		if err := json.Unmarshal(itemsRaw, &items); err != nil {
			return nil, ListMeta{}, &ServerError{Message: fmt.Sprintf("decode list items: %v", err)}
		}
	}

	meta := ListMeta{Total: env.Total, Page: env.Page, Limit: env.Limit, Pages: env.Pages}
	if meta.Page == 0 {
		meta.Page = 1
	}
	if meta.Total == 0 && len(items) > 0 {
		meta.Total = len(items)
	}
	if meta.Pages == 0 {
		if meta.Limit > 0 {
			meta.Pages = (meta.Total + meta.Limit - 1) / meta.Limit
		}
		if meta.Pages == 0 {
			meta.Pages = 1
		}
	}
	return items, meta, nil
}

// The backend emits identifiers under "id" or "_id" depending on the route.
// Folding happens here so no other package ever sees both.

func foldUser(u *domain.User) {
	if u.ID == 0 {
		u.ID = u.AltID
	}
}

func foldJob(j *domain.JobPosting) {
	if j.ID == 0 {
		j.ID = j.AltID
	}
}

func foldApplication(a *domain.Application) {
	if a.ID == 0 {
		a.ID = a.AltID
	}
}

func foldProfile(p *domain.Profile) {
	if p.ID == 0 {
		p.ID = p.AltID
	}
}
