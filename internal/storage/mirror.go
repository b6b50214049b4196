package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/codeverse/backend/internal/models"
)

// record is the on-disk shape of a tutorial: the id is the key of the enclosing object
type record struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Level       string     `json:"level"`
	Duration    string     `json:"duration"`
	Language    string     `json:"language"`
	Content     string     `json:"content"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}

// recordJSON is the tolerant decoding shape of a record.
// Hand-edited and older mirror files carry numbers or nulls in text fields and timestamps without a zone.
type recordJSON struct {
	Title       flexText        `json:"title"`
	Description flexText        `json:"description"`
	Level       flexText        `json:"level"`
	Duration    flexText        `json:"duration"`
	Language    flexText        `json:"language"`
	Content     flexText        `json:"content"`
	CreatedAt   json.RawMessage `json:"createdAt"`
	LastUpdated json.RawMessage `json:"lastUpdated"`
}

// UnmarshalJSON implements json.Unmarshaler
func (r *record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	createdAt, err := parseTimestamp(raw.CreatedAt)
	if err != nil {
		return fmt.Errorf("createdAt: %w", err)
	}
	lastUpdated, err := parseTimestamp(raw.LastUpdated)
	if err != nil {
		return fmt.Errorf("lastUpdated: %w", err)
	}

	*r = record{
		Title:       string(raw.Title),
		Description: string(raw.Description),
		Level:       string(raw.Level),
		Duration:    string(raw.Duration),
		Language:    string(raw.Language),
		Content:     string(raw.Content),
		CreatedAt:   createdAt,
		LastUpdated: lastUpdated,
	}
	return nil
}

// flexText decodes any scalar JSON value into text
type flexText string

// UnmarshalJSON implements json.Unmarshaler
func (t *flexText) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case string:
		*t = flexText(v)
	case float64:
		*t = flexText(strconv.FormatFloat(v, 'f', -1, 64))
	case bool:
		*t = flexText(strconv.FormatBool(v))
	case nil:
		*t = ""
	default:
		return fmt.Errorf("cannot decode %s into text", data)
	}
	return nil
}

// timestampLayouts are tried in order. The zoneless layouts are read in local time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// parseTimestamp reads an RFC 3339 or zoneless ISO 8601 string, or unix seconds.
// Null, empty, absent and unrecognized values are nil.
func parseTimestamp(data json.RawMessage) (*time.Time, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	switch v := v.(type) {
	case nil:
		return nil, nil
	case float64:
		ts := time.Unix(0, int64(v*float64(time.Second))).UTC()
		return &ts, nil
	case string:
		if v == "" {
			return nil, nil
		}
		for i, layout := range timestampLayouts {
			loc := time.UTC
			if i > 0 {
				loc = time.Local
			}
			if ts, err := time.ParseInLocation(layout, v, loc); err == nil {
				return &ts, nil
			}
		}
		// An unrecognized timestamp is dropped rather than failing the whole mirror
		return nil, nil
	default:
		return nil, fmt.Errorf("cannot decode %s into a timestamp", data)
	}
}

func recordFromTutorial(t models.Tutorial) record {
	return record{
		Title:       t.Title,
		Description: t.Description,
		Level:       t.Level,
		Duration:    t.Duration,
		Language:    t.Language,
		Content:     t.Content,
		CreatedAt:   t.CreatedAt,
		LastUpdated: t.LastUpdated,
	}
}

func (r record) tutorial(id string) models.Tutorial {
	return models.Tutorial{
		ID:          id,
		Title:       r.Title,
		Description: r.Description,
		Level:       r.Level,
		Duration:    r.Duration,
		Language:    r.Language,
		Content:     r.Content,
		CreatedAt:   r.CreatedAt,
		LastUpdated: r.LastUpdated,
	}
}

// Mirror is the in-memory form of the mirror file: a mapping from tutorial id to record.
// Keys keep their insertion order so listing and the serialized file are deterministic.
type Mirror struct {
	order   []string
	records map[string]record
}

// NewMirror creates an empty mirror
func NewMirror() *Mirror {
	return &Mirror{records: make(map[string]record)}
}

// NewMirrorFrom creates a mirror holding the given tutorials in slice order
func NewMirrorFrom(tutorials []models.Tutorial) *Mirror {
	m := NewMirror()
	for _, t := range tutorials {
		m.Put(t)
	}
	return m
}

// Replace drops every tutorial and stores the given ones in slice order
func (m *Mirror) Replace(tutorials []models.Tutorial) {
	m.order = nil
	m.records = make(map[string]record)
	for _, t := range tutorials {
		m.Put(t)
	}
}

// Len returns the number of tutorials in the mirror
func (m *Mirror) Len() int {
	return len(m.order)
}

// Get returns the tutorial stored under id
func (m *Mirror) Get(id string) (models.Tutorial, bool) {
	r, ok := m.records[id]
	if !ok {
		return models.Tutorial{}, false
	}
	return r.tutorial(id), true
}

// Put inserts or replaces the tutorial under t.ID. A replaced key keeps its position.
func (m *Mirror) Put(t models.Tutorial) {
	if _, ok := m.records[t.ID]; !ok {
		m.order = append(m.order, t.ID)
	}
	m.records[t.ID] = recordFromTutorial(t)
}

// Delete removes the tutorial stored under id and reports whether it was present
func (m *Mirror) Delete(id string) bool {
	if _, ok := m.records[id]; !ok {
		return false
	}
	delete(m.records, id)
	for i, key := range m.order {
		if key == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// All returns every tutorial in insertion order
func (m *Mirror) All() []models.Tutorial {
	tutorials := make([]models.Tutorial, 0, len(m.order))
	for _, id := range m.order {
		tutorials = append(tutorials, m.records[id].tutorial(id))
	}
	return tutorials
}

// MarshalJSON writes the mirror as a single JSON object keyed by id, in insertion order
func (m *Mirror) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range m.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(m.records[id])
		if err != nil {
			return nil, fmt.Errorf("failed to encode tutorial %s: %w", id, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keyed by id, keeping the key order of the document
func (m *Mirror) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected a JSON object, got %v", tok)
	}

	m.order = nil
	m.records = make(map[string]record)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected a string key, got %v", tok)
		}
		var r record
		if err := dec.Decode(&r); err != nil {
			return fmt.Errorf("failed to decode tutorial %s: %w", id, err)
		}
		if _, seen := m.records[id]; !seen {
			m.order = append(m.order, id)
		}
		m.records[id] = r
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
