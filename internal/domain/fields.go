package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Records are written by several generations of clients. Fields this
// package does not model are carried in Extra and written back as-is, and
// timestamps are accepted as numbers, numeric strings or ISO-8601 dates.

var (
	pathwayFields  = []string{"id", "name", "created", "sortOrder", "steps"}
	stepFields     = []string{"name", "bookmarks"}
	bookmarkFields = []string{
		"title", "url", "description", "context", "type", "contentType", "added",
		"lastChecked", "status", "available", "redirectUrl", "checkError",
	}
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseMillis reads a JSON timestamp into unix milliseconds. Numbers,
// numeric strings and ISO-8601 date strings are understood; ok is false for
// anything else.
func ParseMillis(raw []byte) (ms int64, ok bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		return parseMillisString(s)
	}

	return parseMillisNumber(string(raw))
}

func parseMillisString(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if ms, ok := parseMillisNumber(s); ok {
		return ms, true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}

func parseMillisNumber(s string) (int64, bool) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f), true
	}
	return 0, false
}

// decodeMillis returns the parsed value plus the raw form to keep. Plain
// integers need no raw copy since they re-encode identically.
func decodeMillis(raw json.RawMessage) (int64, json.RawMessage) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	ms, _ := ParseMillis(raw)
	if string(raw) == strconv.FormatInt(ms, 10) {
		return ms, nil
	}
	return ms, append(json.RawMessage(nil), raw...)
}

// encodeMillis picks what to write for a timestamp. The raw form survives
// only while ms still matches it.
func encodeMillis(ms int64, raw json.RawMessage) any {
	if raw != nil {
		parsed, _ := ParseMillis(raw)
		if parsed == ms {
			return raw
		}
	}
	if ms != 0 {
		return ms
	}
	return nil
}

// unknownFields collects the members of the JSON object data whose keys are
// not in known. Numbers are kept as json.Number so they round-trip exactly.
func unknownFields(data []byte, known []string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var all map[string]any
	if err := dec.Decode(&all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// withExtra merges extra into the encoded object data. Modelled keys always
// win over a stale copy in extra.
func withExtra(data []byte, extra map[string]any, known []string) ([]byte, error) {
	if len(extra) == 0 {
		return data, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}

	reserved := make(map[string]struct{}, len(known))
	for _, k := range known {
		reserved[k] = struct{}{}
	}

	for k, v := range extra {
		if _, ok := reserved[k]; ok {
			continue
		}
		if _, ok := merged[k]; ok {
			continue
		}
		enc, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		merged[k] = enc
	}
	return json.Marshal(merged)
}
