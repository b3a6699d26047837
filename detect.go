package docdex

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

// detectWindow is how many trailing bytes the fast path inspects. It covers
// `,"format_version":` plus ten digits and the closing brace with room to
// spare.
const detectWindow = 32

const formatVersionKey = `"format_version"`

// detectFast reads the revision from a document that ends with
// `,"format_version":N}`, looking only at its last detectWindow bytes.
func detectFast(data []byte) (uint32, bool) {
	text := bytes.TrimRight(data, " \t\r\n")
	if len(text) < detectWindow {
		return 0, false
	}
	tail := text[len(text)-detectWindow:]

	comma := bytes.LastIndexByte(tail, ',')
	if comma < 0 {
		return 0, false
	}
	rest := tail[comma+1:]
	colon := bytes.LastIndexByte(rest, ':')
	brace := bytes.LastIndexByte(rest, '}')
	if colon < 0 || brace != len(rest)-1 || colon > brace {
		return 0, false
	}
	if string(rest[:colon]) != formatVersionKey {
		return 0, false
	}
	n, err := strconv.ParseUint(string(rest[colon+1:brace]), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// detectSlow decodes the whole document and reads its top-level
// format_version. Keys match exactly.
func detectSlow(data []byte) (uint32, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return 0, err
	}
	raw, ok := top["format_version"]
	if !ok {
		return 0, errors.New("no top-level format_version")
	}
	var n uint32
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	if string(raw) == "null" {
		return 0, errors.New("format_version is null")
	}
	return n, nil
}

// DetectRevision returns the format_version of a document's text. path is
// only used in the error.
func DetectRevision(path string, data []byte) (uint32, error) {
	return NewLoader().DetectRevision(path, data)
}

// DetectRevision returns the format_version of a document's text, trying the
// trailing-bytes fast path before a full decode. Falling back is not an
// error; it is logged at debug level and counted.
func (l *Loader) DetectRevision(path string, data []byte) (uint32, error) {
	if rev, ok := detectFast(data); ok {
		return rev, nil
	}
	l.logger.Debug("revision fast path missed; decoding whole document", "path", path, "size", len(data))
	l.metrics.DetectionFallback()

	rev, err := detectSlow(data)
	if err != nil {
		return 0, &FormatDetectionError{Path: path, Err: err}
	}
	return rev, nil
}
