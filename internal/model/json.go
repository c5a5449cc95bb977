package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// isoLayout is Date.prototype.toISOString: UTC with millisecond precision.
const isoLayout = "2006-01-02T15:04:05.000Z"

// isoTime encodes a time the way the stored collections have always held it. Decoding goes
// through time.Time, which accepts any RFC 3339 value.
type isoTime time.Time

func (t isoTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).UTC().Format(isoLayout) + `"`), nil
}

// encodeRecord marshals without HTML escaping, so "<" and "&" in titles and content are stored
// as typed.
func encodeRecord(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (n Note) MarshalJSON() ([]byte, error) {
	return encodeRecord(struct {
		ID      string  `json:"id"`
		Title   string  `json:"title"`
		Content string  `json:"content"`
		Created isoTime `json:"created"`
		Updated isoTime `json:"updated"`
		Pinned  bool    `json:"pinned"`
	}{n.ID, n.Title, n.Content, isoTime(n.Created), isoTime(n.Updated), n.Pinned})
}

func (t Task) MarshalJSON() ([]byte, error) {
	return encodeRecord(struct {
		ID          string   `json:"id"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Priority    Priority `json:"priority"`
		Status      Status   `json:"status"`
		Done        bool     `json:"done"`
		Created     isoTime  `json:"created"`
		DueDate     string   `json:"dueDate"`
	}{t.ID, t.Title, t.Description, t.Priority, t.Status, t.Done, isoTime(t.Created), t.DueDate})
}

func (e CalendarEvent) MarshalJSON() ([]byte, error) {
	return encodeRecord(struct {
		ID          string  `json:"id"`
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Date        string  `json:"date"`
		StartTime   string  `json:"startTime"`
		EndTime     string  `json:"endTime"`
		Color       Color   `json:"color"`
		Created     isoTime `json:"created"`
	}{e.ID, e.Title, e.Description, e.Date, e.StartTime, e.EndTime, e.Color, isoTime(e.Created)})
}
