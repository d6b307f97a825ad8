package vaultsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// CreateItem persists a new item. idempotencyKey deduplicates retries of
// the same payload: mint one key per submission (idx.NewIdempotencyKey)
// and reuse it when re-issuing after a transient failure, so a
// double-click or replay can't create a duplicate.
func (s *Session) CreateItem(ctx context.Context, item Item, idempotencyKey string) (*Item, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}

	var out Item
	if err := s.doAuthRequest(ctx, http.MethodPost, "/api/items", item, &out, headers); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetItem fetches a single item by ID.
func (s *Session) GetItem(ctx context.Context, id string) (*Item, error) {
	var out Item
	if err := s.doAuthRequest(ctx, http.MethodGet, "/api/items/"+url.PathEscape(id), nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateItem replaces an existing item's payload.
func (s *Session) UpdateItem(ctx context.Context, id string, item Item) (*Item, error) {
	var out Item
	if err := s.doAuthRequest(ctx, http.MethodPut, "/api/items/"+url.PathEscape(id), item, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteItem removes an item.
func (s *Session) DeleteItem(ctx context.Context, id string) error {
	return s.doAuthRequest(ctx, http.MethodDelete, "/api/items/"+url.PathEscape(id), nil, nil, nil)
}

// ListItems lists items, optionally filtered by type. The endpoint has
// returned both a bare array and an {"items": [...]} wrapper across
// server versions; both shapes are accepted.
func (s *Session) ListItems(ctx context.Context, filter ItemFilter) ([]Item, error) {
	path := "/api/items"
	if filter.Type != "" {
		q := url.Values{"type": {filter.Type}}
		path += "?" + q.Encode()
	}

	var raw json.RawMessage
	if err := s.doAuthRequest(ctx, http.MethodGet, path, nil, &raw, nil); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var items []Item
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}

	var wrapped struct {
		Items []Item `json:"items"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	return wrapped.Items, nil
}
