// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

// Package profile resolves display names to stable identities through
// the platform account service.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/defiancecraft/defiancecore/internal/store"
)

// ErrUnknownName is returned when the account service has no identity
// for a display name. An expected outcome, not a failure.
var ErrUnknownName = errors.New("no identity for name")

// Profile is an account-service record linking a name to its identity.
type Profile struct {
	ID   uuid.UUID
	Name string
}

// Resolver looks up the stable identity behind a display name.
type Resolver interface {
	Lookup(ctx context.Context, name string) (*Profile, error)
}

// HTTPResolver resolves names against the platform account HTTP API.
// Lookup timeouts surface as transient so the executor retries them.
type HTTPResolver struct {
	baseURL string
	client  *http.Client
}

// NewHTTPResolver creates a resolver for the given API base URL.
// If client is nil, a client with a 10 second timeout is used.
func NewHTTPResolver(baseURL string, client *http.Client) *HTTPResolver {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPResolver{baseURL: baseURL, client: client}
}

type profilePayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Lookup implements Resolver.
func (r *HTTPResolver) Lookup(ctx context.Context, name string) (*Profile, error) {
	reqURL := fmt.Sprintf("%s/%s", r.baseURL, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, oops.Code("PROFILE_LOOKUP_FAILED").With("name", name).Wrap(err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		// Connection trouble with the account service is retryable.
		return nil, store.MarkTransient(
			oops.Code("PROFILE_LOOKUP_FAILED").With("name", name).Wrap(err))
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent, http.StatusNotFound:
		return nil, ErrUnknownName
	default:
		err := oops.Code("PROFILE_LOOKUP_FAILED").
			With("name", name).
			With("status", resp.StatusCode).
			Errorf("unexpected account service response")
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, store.MarkTransient(err)
		}
		return nil, err
	}

	var payload profilePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, oops.Code("PROFILE_LOOKUP_FAILED").With("name", name).Wrap(err)
	}
	if payload.ID == "" || payload.Name == "" {
		return nil, ErrUnknownName
	}

	// The account service returns undashed hex identities; uuid.Parse
	// accepts both forms.
	id, err := uuid.Parse(payload.ID)
	if err != nil {
		return nil, oops.Code("PROFILE_LOOKUP_FAILED").
			With("name", name).
			With("id", payload.ID).
			Wrap(err)
	}

	return &Profile{ID: id, Name: payload.Name}, nil
}
