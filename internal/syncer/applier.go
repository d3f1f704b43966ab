// Package syncer applies inbound backend messages to the mirror. Decoding
// failures are contained here: a malformed message is logged, counted and
// dropped, and the mirror is left exactly as it was.
package syncer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/frontdesk/internal/metrics"
	"github.com/mesh-intelligence/frontdesk/internal/mirror"
	"github.com/mesh-intelligence/frontdesk/pkg/types"
)

// Result describes a message that was applied.
type Result struct {
	Table      types.TableName
	Operation  types.MessageOperation
	StatusCode string
	RowID      int64 // set for updates
}

// Applier decodes envelopes and mutates a Mirror. Messages must be applied
// in arrival order; Apply is not meant to be called concurrently for one
// connection, though the Mirror itself is safe for concurrent readers.
type Applier struct {
	mirror  types.Mirror
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

// Option configures an Applier.
type Option func(*Applier)

// WithLogger sets the logger used for drop warnings.
func WithLogger(log logrus.FieldLogger) Option {
	return func(a *Applier) { a.log = log }
}

// WithMetrics records applied and dropped messages.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Applier) { a.metrics = m }
}

// New creates an Applier writing to m.
func New(m types.Mirror, opts ...Option) *Applier {
	a := &Applier{
		mirror: m,
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Apply decodes one raw envelope and applies it. On error nothing in the
// mirror has changed and the message should be considered dropped.
func (a *Applier) Apply(raw []byte) (Result, error) {
	res, reason, err := a.apply(raw)
	if err != nil {
		a.metrics.Dropped(reason)
		a.log.WithFields(logrus.Fields{
			"table":     res.Table,
			"operation": res.Operation,
			"reason":    reason,
		}).WithError(err).Warn("dropping inbound message")
		return res, err
	}

	a.metrics.Applied(res.Table, res.Operation)
	a.metrics.SetRows(a.rowCounts())
	a.log.WithFields(logrus.Fields{
		"table":       res.Table,
		"operation":   res.Operation,
		"status_code": res.StatusCode,
	}).Debug("message applied")
	return res, nil
}

func (a *Applier) apply(raw []byte) (Result, string, error) {
	var env types.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Result{}, metrics.ReasonEnvelope, fmt.Errorf("%w: %v", types.ErrMalformedEnvelope, err)
	}
	res := Result{Operation: env.Operation, StatusCode: env.StatusCode}

	table, err := types.ParseTableName(env.TableName)
	if err != nil {
		return res, metrics.ReasonTable, fmt.Errorf("%w: table_name %q", err, env.TableName)
	}
	res.Table = table

	switch env.Operation {
	case types.OpInitialize:
		snap, err := decodeSnapshot(env.Data)
		if err != nil {
			return res, metrics.ReasonPayload, err
		}
		a.mirror.ReplaceAll(snap)
		return res, "", nil

	case types.OpUpdate:
		id, row, err := decodeUpdate(table, env.Data)
		if err != nil {
			return res, metrics.ReasonPayload, err
		}
		res.RowID = id
		if err := a.mirror.Upsert(table, id, row); err != nil {
			return res, metrics.ReasonStore, fmt.Errorf("upsert %s %d: %w", table, id, err)
		}
		return res, "", nil

	default:
		return res, metrics.ReasonOperation, fmt.Errorf("%w: %q", types.ErrUnknownOperation, env.Operation)
	}
}

// decodeSnapshot parses an initialize payload. Tables missing from the
// object decode as empty.
func decodeSnapshot(data string) (*types.Snapshot, error) {
	trimmed := bytes.TrimSpace([]byte(data))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: initialize data is not an object", types.ErrMalformedPayload)
	}
	var snap types.Snapshot
	if err := json.Unmarshal(trimmed, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedPayload, err)
	}
	return &snap, nil
}

// decodeUpdate parses an update payload into the target table's row type.
// A row whose own id is absent takes the payload id.
func decodeUpdate(table types.TableName, data string) (int64, types.Row, error) {
	var payload types.UpdatePayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", types.ErrMalformedPayload, err)
	}
	if payload.ID == nil {
		return 0, nil, fmt.Errorf("%w: update without id", types.ErrMalformedPayload)
	}
	id := *payload.ID

	rowData, err := withRowID(payload.NewRowData, id)
	if err != nil {
		return id, nil, err
	}
	row, err := mirror.DecodeRow(table, rowData)
	if err != nil {
		return id, nil, fmt.Errorf("%w: %v", types.ErrMalformedPayload, err)
	}
	return id, row, nil
}

func withRowID(data json.RawMessage, id int64) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, fmt.Errorf("%w: new_row_data is not an object", types.ErrMalformedPayload)
	}
	if v, ok := obj["id"]; ok && string(bytes.TrimSpace(v)) != "null" {
		return data, nil
	}
	obj["id"] = json.RawMessage(strconv.FormatInt(id, 10))
	out, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedPayload, err)
	}
	return out, nil
}

func (a *Applier) rowCounts() map[types.TableName]int {
	counts := make(map[types.TableName]int, len(types.StandardTableNames))
	for _, name := range types.StandardTableNames {
		tbl, err := a.mirror.GetTable(name)
		if err != nil {
			continue
		}
		counts[name] = tbl.Len()
	}
	return counts
}
