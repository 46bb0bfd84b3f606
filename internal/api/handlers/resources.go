package handlers

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/hustlex/admin-gateway/internal/auth"
	"github.com/hustlex/admin-gateway/internal/domain"
	"github.com/hustlex/admin-gateway/internal/graph"
	"github.com/hustlex/admin-gateway/internal/session"
	"github.com/hustlex/admin-gateway/middleware"
)

const maxPageSize = 500

// DataSource is the slice of graph.Client the resource routes use.
type DataSource interface {
	List(ctx context.Context, sess *session.Manager, resource string, p graph.ListParams) (*graph.Page, error)
	Get(ctx context.Context, sess *session.Manager, resource, id string) (graph.Record, error)
	Create(ctx context.Context, sess *session.Manager, resource string, values map[string]any) (graph.Record, error)
	Update(ctx context.Context, sess *session.Manager, resource, id string, values map[string]any) (graph.Record, error)
	Delete(ctx context.Context, sess *session.Manager, resource, id string) error
}

type ResourceHandler struct {
	data DataSource
	gw   *auth.Gateway
}

func NewResourceHandler(data DataSource, gw *auth.Gateway) *ResourceHandler {
	return &ResourceHandler{data: data, gw: gw}
}

// View is the presentation the dashboard derives from a record.
type View struct {
	StatusColor    string            `json:"status_color,omitempty"`
	StatusLabel    string            `json:"status_label,omitempty"`
	TypeColor      string            `json:"type_color,omitempty"`
	RemittanceStep *int              `json:"remittance_step,omitempty"`
	Amount         string            `json:"amount,omitempty"`
	Dates          map[string]string `json:"dates,omitempty"`
}

type Item struct {
	Record graph.Record `json:"record"`
	View   View         `json:"view"`
}

type ListResponse struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
}

// Index lists the resources the dashboard can browse.
func (h *ResourceHandler) Index(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{"resources": domain.Resources()})
}

func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r, domain.CapList)
	if !ok {
		return
	}
	params, err := ParseListParams(r.URL.Query())
	if err != nil {
		sendError(w, r, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}

	page, err := h.data.List(r.Context(), middleware.GetSession(r.Context()), res.Name, params)
	if err != nil {
		handleDataError(w, r, h.gw, err)
		return
	}

	resp := ListResponse{Items: make([]Item, 0, len(page.Records)), Total: page.Total}
	for _, rec := range page.Records {
		resp.Items = append(resp.Items, Item{Record: rec, View: BuildView(res.Name, rec)})
	}
	render.JSON(w, r, resp)
}

func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r, domain.CapShow)
	if !ok {
		return
	}
	rec, err := h.data.Get(r.Context(), middleware.GetSession(r.Context()), res.Name, chi.URLParam(r, "id"))
	if err != nil {
		handleDataError(w, r, h.gw, err)
		return
	}
	render.JSON(w, r, Item{Record: rec, View: BuildView(res.Name, rec)})
}

func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r, domain.CapCreate)
	if !ok {
		return
	}
	var values map[string]any
	if err := render.DecodeJSON(r.Body, &values); err != nil || len(values) == 0 {
		sendError(w, r, "invalid_request", "body must be a non-empty JSON object", http.StatusBadRequest)
		return
	}
	rec, err := h.data.Create(r.Context(), middleware.GetSession(r.Context()), res.Name, values)
	if err != nil {
		handleDataError(w, r, h.gw, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, Item{Record: rec, View: BuildView(res.Name, rec)})
}

func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r, domain.CapEdit)
	if !ok {
		return
	}
	var values map[string]any
	if err := render.DecodeJSON(r.Body, &values); err != nil {
		sendError(w, r, "invalid_request", "invalid JSON body", http.StatusBadRequest)
		return
	}
	clean, err := res.ValidateEdit(values)
	if err != nil {
		sendError(w, r, "validation_failed", err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := h.data.Update(r.Context(), middleware.GetSession(r.Context()), res.Name, chi.URLParam(r, "id"), clean)
	if err != nil {
		handleDataError(w, r, h.gw, err)
		return
	}
	render.JSON(w, r, Item{Record: rec, View: BuildView(res.Name, rec)})
}

func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r, domain.CapDelete)
	if !ok {
		return
	}
	if err := h.data.Delete(r.Context(), middleware.GetSession(r.Context()), res.Name, chi.URLParam(r, "id")); err != nil {
		handleDataError(w, r, h.gw, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ResourceHandler) resource(w http.ResponseWriter, r *http.Request, c domain.Capability) (domain.Resource, bool) {
	name := chi.URLParam(r, "resource")
	res, ok := domain.LookupResource(name)
	if !ok {
		sendError(w, r, "unknown_resource", fmt.Sprintf("unknown resource %q", name), http.StatusNotFound)
		return domain.Resource{}, false
	}
	if !res.Can(c) {
		sendError(w, r, "method_not_allowed", fmt.Sprintf("%s does not support %s", res.Name, c), http.StatusMethodNotAllowed)
		return domain.Resource{}, false
	}
	return res, true
}

// ParseListParams reads limit, offset, sort and filter.<field>[op] from a
// query string. sort is a comma list; a leading "-" sorts descending. Values
// of an "in" filter are comma separated.
func ParseListParams(q url.Values) (graph.ListParams, error) {
	var p graph.ListParams
	var err error

	if p.Limit, err = nonNegative(q, "limit"); err != nil {
		return p, err
	}
	if p.Limit > maxPageSize {
		return p, fmt.Errorf("limit must be at most %d", maxPageSize)
	}
	if p.Offset, err = nonNegative(q, "offset"); err != nil {
		return p, err
	}

	for _, s := range strings.Split(q.Get("sort"), ",") {
		s = strings.TrimSpace(s)
		if s == "" || s == "-" {
			continue
		}
		if strings.HasPrefix(s, "-") {
			p.Sort = append(p.Sort, graph.SortField{Field: s[1:], Desc: true})
		} else {
			p.Sort = append(p.Sort, graph.SortField{Field: s})
		}
	}

	for key, vals := range q {
		rest, ok := strings.CutPrefix(key, "filter.")
		if !ok {
			continue
		}
		field, opName := rest, ""
		if i := strings.IndexByte(rest, '['); i >= 0 && strings.HasSuffix(rest, "]") {
			field, opName = rest[:i], rest[i+1:len(rest)-1]
		}
		if field == "" {
			return p, fmt.Errorf("filter %q has no field", key)
		}
		op, err := graph.ParseFilterOp(opName)
		if err != nil {
			return p, err
		}
		for _, v := range vals {
			var value any = v
			if op == graph.OpIn {
				value = strings.Split(v, ",")
			}
			p.Filters = append(p.Filters, graph.Filter{Field: field, Op: op, Value: value})
		}
	}
	sortFilters(p.Filters)
	return p, nil
}

func nonNegative(q url.Values, key string) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}

// sortFilters orders filters by field so the generated query is stable.
func sortFilters(fs []graph.Filter) {
	slices.SortStableFunc(fs, func(a, b graph.Filter) int {
		return cmp.Compare(a.Field, b.Field)
	})
}

// amountFields names the money column and its currency column per resource.
var amountFields = map[string][2]string{
	"services":        {"base_price", "currency"},
	"bookings":        {"total_amount", "currency"},
	"transactions":    {"amount", "currency"},
	"remittances":     {"source_amount", "source_currency"},
	"savings_circles": {"contribution_amount", "currency"},
}

// dateFields lists the date columns per resource; true marks a timestamp.
var dateFields = map[string]map[string]bool{
	"users":           {"created_at": false},
	"bookings":        {"scheduled_date": false, "created_at": true, "paid_at": true, "started_at": true, "completed_at": true, "cancelled_at": true},
	"transactions":    {"initiated_at": true, "completed_at": true, "created_at": true},
	"remittances":     {"created_at": true, "aml_checked_at": true, "estimated_delivery": true},
	"beneficiaries":   {"last_transfer_at": true},
	"savings_circles": {"start_date": false, "next_contribution_date": false},
	"notifications":   {"sent_at": true, "created_at": true},
}

// BuildView derives the dashboard's display values for a record.
func BuildView(resource string, rec graph.Record) View {
	var v View
	if status, ok := rec["status"].(string); ok && status != "" {
		v.StatusColor = domain.StatusColor(resource, status)
		v.StatusLabel = domain.StatusLabel(status)
		if resource == "remittances" {
			step := domain.RemittanceStep(status)
			v.RemittanceStep = &step
		}
	}
	if typ, ok := rec["type"].(string); ok && typ != "" {
		v.TypeColor = domain.TypeColor(resource, typ)
	}
	if cols, ok := amountFields[resource]; ok {
		if amount, ok := number(rec[cols[0]]); ok {
			currency, _ := rec[cols[1]].(string)
			v.Amount = domain.FormatAmount(currency, amount)
		}
	}
	for field, withTime := range dateFields[resource] {
		raw, ok := rec[field]
		if !ok {
			continue
		}
		if v.Dates == nil {
			v.Dates = make(map[string]string)
		}
		if withTime {
			v.Dates[field] = domain.FormatDateTime(raw)
		} else {
			v.Dates[field] = domain.FormatDate(raw)
		}
	}
	return v
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}
