// Package remote talks to the authoritative row store. The store is an
// opaque endpoint: GET returns every row as a JSON array, POST applies a
// single create, update or delete.
package remote

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/agentstation/docsync/internal/transport"
	"github.com/agentstation/docsync/pkg/articles"
	"github.com/agentstation/docsync/pkg/constants"
	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/logging"
)

// Action discriminates write requests.
type Action string

// Write actions.
const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// ActionField is the payload member carrying the Action.
const ActionField = "action"

// Store is the remote row store.
type Store interface {
	// Fetch returns the full snapshot.
	Fetch(ctx context.Context) ([]articles.RawRow, error)

	// Write applies one mutation. Update and delete payloads must carry
	// the rowNumber of the target row.
	Write(ctx context.Context, action Action, payload articles.RawRow) error
}

var _ Store = (*HTTPStore)(nil)

// HTTPStore reaches the store over HTTP.
type HTTPStore struct {
	endpoint string
	client   *transport.Client
	now      func() time.Time
}

// NewHTTPStore returns a store for endpoint.
func NewHTTPStore(endpoint string, opts ...transport.Option) (*HTTPStore, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.NewConfigError("remote", "endpoint must be an absolute URL", err)
	}
	return &HTTPStore{
		endpoint: endpoint,
		client:   transport.New(opts...),
		now:      time.Now,
	}, nil
}

// Endpoint returns the configured endpoint.
func (s *HTTPStore) Endpoint() string {
	return s.endpoint
}

// Fetch issues a cache-busted GET and decodes the snapshot.
func (s *HTTPStore) Fetch(ctx context.Context) ([]articles.RawRow, error) {
	u, _ := url.Parse(s.endpoint)
	q := u.Query()
	q.Set("t", strconv.FormatInt(s.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()

	resp, err := s.client.Get(ctx, u.String())
	if err != nil {
		return nil, errors.NewTransportError("fetch", s.endpoint, 0, err)
	}
	body, err := transport.ReadBody(resp, "fetch")
	if err != nil {
		return nil, err
	}

	rows, err := articles.ParseRows(body)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Debug().Int("rows", len(rows)).Msg("Fetched remote snapshot")
	return rows, nil
}

// Write posts payload with its action discriminator.
func (s *HTTPStore) Write(ctx context.Context, action Action, payload articles.RawRow) error {
	body, err := EncodeWrite(action, payload)
	if err != nil {
		return err
	}

	resp, err := s.client.Post(ctx, s.endpoint, transport.ContentTypeText, body)
	if err != nil {
		return errors.NewTransportError(operationOf(action), s.endpoint, 0, err)
	}
	_, err = transport.ReadBody(resp, operationOf(action))
	return err
}

// EncodeWrite validates a write and renders its JSON body.
func EncodeWrite(action Action, payload articles.RawRow) (string, error) {
	switch action {
	case ActionCreate:
	case ActionUpdate, ActionDelete:
		if payload.Text(articles.ColumnRowNumber) == "" {
			return "", errors.NewValidationError(articles.ColumnRowNumber, nil, constants.ErrMsgRowNumberRequired)
		}
	default:
		return "", errors.NewValidationError(ActionField, action, "unknown action")
	}

	body := payload.Clone()
	body.Set(ActionField, string(action))
	data, err := json.Marshal(body)
	if err != nil {
		return "", errors.WrapParse("json", "", err)
	}
	return string(data), nil
}

func operationOf(a Action) string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	default:
		return "write"
	}
}
