package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"simpleink/logger"

	"github.com/goccy/go-json"
)

type operation int

const (
	opSelect operation = iota
	opInsert
	opUpdate
	opDelete
)

type condition struct {
	column string
	value  string
}

// Query is built with From and sent with Execute.
type Query struct {
	client    *Client
	table     string
	op        operation
	columns   string
	filters   []condition
	orderBy   string
	ascending bool
	row       any
}

// From starts a query against one collection (playlists, pontos, historia).
func (c *Client) From(table string) *Query {
	return &Query{client: c, table: table, columns: "*"}
}

// Select marks the query as a read. The API always returns whole rows.
func (q *Query) Select(columns string) *Query {
	q.op = opSelect
	q.columns = columns
	return q
}

// Eq adds an equality filter. On update and delete the value is the row id.
func (q *Query) Eq(column string, value any) *Query {
	v := "null"
	if value != nil {
		v = fmt.Sprint(value)
	}
	q.filters = append(q.filters, condition{column: column, value: v})
	return q
}

// Order asks the server for an ordering.
func (q *Query) Order(column string, ascending bool) *Query {
	q.orderBy = column
	q.ascending = ascending
	return q
}

func (q *Query) Insert(row any) *Query {
	q.op = opInsert
	q.row = row
	return q
}

func (q *Query) Update(row any) *Query {
	q.op = opUpdate
	q.row = row
	return q
}

func (q *Query) Delete() *Query {
	q.op = opDelete
	return q
}

// id returns the value of the first filter, used as the path id for writes.
func (q *Query) id() (string, bool) {
	if len(q.filters) == 0 {
		return "", false
	}
	return q.filters[0].value, true
}

// request maps the query onto its REST endpoint.
func (q *Query) request() (method, path string, body []byte, err error) {
	base := "/" + url.PathEscape(q.table)

	switch q.op {
	case opInsert:
		body, err = json.Marshal(q.row)
		return http.MethodPost, base, body, err
	case opUpdate, opDelete:
		id, ok := q.id()
		if !ok {
			return "", "", nil, errors.New("update and delete need an Eq filter on the row id")
		}
		path = base + "/" + url.PathEscape(id)
		if q.op == opDelete {
			return http.MethodDelete, path, nil, nil
		}
		body, err = json.Marshal(q.row)
		return http.MethodPut, path, body, err
	}

	params := url.Values{}
	for _, f := range q.filters {
		if f.column == "id" {
			base += "/" + url.PathEscape(f.value)
			continue
		}
		params.Add(f.column, f.value)
	}
	if q.orderBy != "" {
		params.Set("order", q.orderBy)
		direction := "DESC"
		if q.ascending {
			direction = "ASC"
		}
		params.Set("direction", direction)
	}
	if len(params) > 0 {
		base += "?" + params.Encode()
	}
	return http.MethodGet, base, nil, nil
}

// Execute sends the query. API errors are reported in Response.Error; the
// returned error is reserved for requests that never got an answer. When a read
// fails that way and a fallback is configured, the fallback's rows are returned
// for this call only.
func (q *Query) Execute(ctx context.Context) (*Response, error) {
	method, path, body, err := q.request()
	if err != nil {
		return nil, err
	}
	contentType := ""
	if body != nil {
		contentType = "application/json"
	}

	resp, err := q.client.do(ctx, method, path, contentType, body)
	if err == nil {
		return resp, nil
	}
	if q.op != opSelect || q.client.fallback == nil {
		return nil, err
	}

	data, ok := q.client.fallback.Rows(q.table, q.filterMap())
	if !ok {
		return nil, err
	}
	raw, merr := json.Marshal(data)
	if merr != nil {
		return nil, merr
	}
	logger.Warn("API unavailable, serving fallback data",
		logger.String("table", q.table),
		logger.ErrorField(err),
	)
	return &Response{Data: raw, Status: http.StatusOK, Fallback: true}, nil
}

func (q *Query) filterMap() map[string]string {
	m := make(map[string]string, len(q.filters))
	for _, f := range q.filters {
		m[f.column] = f.value
	}
	return m
}
