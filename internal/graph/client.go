// Package graph issues the dashboard's list/get/create/update/delete
// operations as GraphQL against Hasura and maps what comes back.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel/codes"

	"github.com/hustlex/admin-gateway/internal/domain"
	"github.com/hustlex/admin-gateway/internal/downstream"
	"github.com/hustlex/admin-gateway/internal/metrics"
	"github.com/hustlex/admin-gateway/internal/session"
	"github.com/hustlex/admin-gateway/internal/tracing"
)

const maxResponseBytes = 10 << 20

// Request is a raw GraphQL operation.
type Request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// Record is one row as the graph service returned it. Numbers are json.Number.
type Record map[string]any

type Page struct {
	Records []Record
	Total   int
}

type Client struct {
	http     *downstream.Client
	endpoint string
	auth     Authorizer
}

func NewClient(httpClient *downstream.Client, endpoint string, auth Authorizer) *Client {
	return &Client{
		http:     httpClient,
		endpoint: endpoint,
		auth:     auth,
	}
}

func (c *Client) List(ctx context.Context, sess *session.Manager, resource string, p ListParams) (page *Page, err error) {
	defer func() { metrics.RecordGraphRequest(resource, "list", err) }()

	r, err := lookup(resource)
	if err != nil {
		return nil, err
	}
	vars, err := listVariables(p)
	if err != nil {
		return nil, err
	}

	var data map[string]json.RawMessage
	if err := c.exec(ctx, sess, Request{Query: listQuery(r), Variables: vars, OperationName: "List"}, &data); err != nil {
		return nil, err
	}

	page = &Page{}
	if err := decodeJSON(data[r.Name], &page.Records); err != nil {
		return nil, fmt.Errorf("graph: decode %s: %w", r.Name, err)
	}
	if page.Records == nil {
		page.Records = []Record{}
	}

	var agg struct {
		Aggregate struct {
			Count int `json:"count"`
		} `json:"aggregate"`
	}
	if raw, ok := data[r.Name+"_aggregate"]; ok {
		if err := json.Unmarshal(raw, &agg); err != nil {
			return nil, fmt.Errorf("graph: decode %s_aggregate: %w", r.Name, err)
		}
	}
	page.Total = agg.Aggregate.Count
	return page, nil
}

// Get returns one record; a missing row is downstream.ErrNotFound.
func (c *Client) Get(ctx context.Context, sess *session.Manager, resource, id string) (rec Record, err error) {
	defer func() { metrics.RecordGraphRequest(resource, "get", err) }()

	r, err := lookup(resource)
	if err != nil {
		return nil, err
	}
	return c.one(ctx, sess, Request{
		Query:         getQuery(r),
		Variables:     map[string]any{"id": id},
		OperationName: "Get",
	}, r.Name+"_by_pk")
}

func (c *Client) Create(ctx context.Context, sess *session.Manager, resource string, values map[string]any) (rec Record, err error) {
	defer func() { metrics.RecordGraphRequest(resource, "create", err) }()

	r, err := lookup(resource)
	if err != nil {
		return nil, err
	}
	return c.one(ctx, sess, Request{
		Query:         createQuery(r),
		Variables:     map[string]any{"object": values},
		OperationName: "Create",
	}, "insert_"+r.Name+"_one")
}

func (c *Client) Update(ctx context.Context, sess *session.Manager, resource, id string, values map[string]any) (rec Record, err error) {
	defer func() { metrics.RecordGraphRequest(resource, "update", err) }()

	r, err := lookup(resource)
	if err != nil {
		return nil, err
	}
	return c.one(ctx, sess, Request{
		Query:         updateQuery(r),
		Variables:     map[string]any{"id": id, "set": values},
		OperationName: "Update",
	}, "update_"+r.Name+"_by_pk")
}

func (c *Client) Delete(ctx context.Context, sess *session.Manager, resource, id string) (err error) {
	defer func() { metrics.RecordGraphRequest(resource, "delete", err) }()

	r, err := lookup(resource)
	if err != nil {
		return err
	}
	_, err = c.one(ctx, sess, Request{
		Query:         deleteQuery(r),
		Variables:     map[string]any{"id": id},
		OperationName: "Delete",
	}, "delete_"+r.Name+"_by_pk")
	return err
}

// Do sends a raw operation and returns its data object.
func (c *Client) Do(ctx context.Context, sess *session.Manager, req Request) (data json.RawMessage, err error) {
	defer func() { metrics.RecordGraphRequest("raw", "do", err) }()

	if err := c.exec(ctx, sess, req, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// Healthz probes the graph service's /healthz next to the GraphQL endpoint.
func (c *Client) Healthz(ctx context.Context) error {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return err
	}
	u.Path = "/healthz"
	u.RawQuery = ""

	resp, err := c.http.Get(ctx, u.String(), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return downstream.DecodeError(resp)
	}
	return nil
}

func (c *Client) one(ctx context.Context, sess *session.Manager, req Request, field string) (Record, error) {
	var data map[string]json.RawMessage
	if err := c.exec(ctx, sess, req, &data); err != nil {
		return nil, err
	}
	raw, ok := data[field]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, downstream.ErrNotFound
	}
	var rec Record
	if err := decodeJSON(raw, &rec); err != nil {
		return nil, fmt.Errorf("graph: decode %s: %w", field, err)
	}
	return rec, nil
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []ErrorEntry    `json:"errors"`
}

// exec runs req and decodes the data object into out.
func (c *Client) exec(ctx context.Context, sess *session.Manager, req Request, out any) (err error) {
	name := req.OperationName
	if name == "" {
		name = "operation"
	}
	ctx, span := tracing.StartSpan(ctx, "graph "+name)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("graph: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if err := c.auth.Authorize(ctx, sess, httpReq.Header); err != nil {
		return err
	}

	resp, err := c.http.Do(ctx, httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return downstream.ErrUnauthorized
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("graph: read response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)
	if decodeErr == nil && len(env.Errors) > 0 {
		if hasCode(env.Errors, codeInvalidJWT) {
			return fmt.Errorf("%w: %s", downstream.ErrUnauthorized, env.Errors[0].Message)
		}
		return &Error{Entries: env.Errors}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body = io.NopCloser(bytes.NewReader(raw))
		return downstream.DecodeError(resp)
	}
	if decodeErr != nil {
		return fmt.Errorf("graph: decode response: %w", decodeErr)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return errors.New("graph: response without data")
	}
	if err := decodeJSON(env.Data, out); err != nil {
		return fmt.Errorf("graph: decode data: %w", err)
	}
	return nil
}

func lookup(resource string) (domain.Resource, error) {
	r, ok := domain.LookupResource(resource)
	if !ok {
		return domain.Resource{}, fmt.Errorf("%w: %s", ErrUnknownResource, resource)
	}
	return r, nil
}

func decodeJSON(raw []byte, out any) error {
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(out)
}

// DecodeRecord maps a record onto a view model.
func DecodeRecord[T any](rec Record) (T, error) {
	var out T
	raw, err := json.Marshal(rec)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(raw, &out)
	return out, err
}

// DecodePage maps every record of a page onto a view model.
func DecodePage[T any](p *Page) (domain.Page[T], error) {
	out := domain.Page[T]{Items: make([]T, 0, len(p.Records)), Total: p.Total}
	for i, rec := range p.Records {
		item, err := DecodeRecord[T](rec)
		if err != nil {
			return out, fmt.Errorf("record %d: %w", i, err)
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}
