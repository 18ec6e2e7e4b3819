// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/danielhkuo/coin-poll/models"
)

// maxAmount caps a single coerced value so it always fits an int.
const maxAmount = math.MaxInt32

// Sanitize turns an untrusted allocation payload into option_id -> coins.
// Values are coerced to numbers (numeric strings and booleans included),
// floored, and kept only when strictly positive. Anything that is not a
// JSON object yields an empty allocation. It never fails.
func Sanitize(raw json.RawMessage) models.Allocation {
	out := models.Allocation{}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return out
	}

	for optionID, value := range entries {
		n, ok := toNumber(value)
		if !ok {
			continue
		}
		amount := floorInt(n)
		if amount > 0 {
			out[optionID] = amount
		}
	}
	return out
}

// toNumber coerces a JSON value the way a loosely typed client would:
// numbers as-is, trimmed numeric strings parsed, empty string and false as
// zero, true as one. Missing, null, objects, arrays and non-numeric strings
// report ok=false.
func toNumber(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case 't':
		return 1, string(raw) == "true"
	case 'f':
		return 0, string(raw) == "false"
	case 'n', '{', '[':
		return 0, false
	}

	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func floorInt(f float64) int {
	f = math.Floor(f)
	if f > maxAmount {
		return maxAmount
	}
	if f < -maxAmount {
		return -maxAmount
	}
	return int(f)
}

// present reports whether a field was sent with a non-null value.
func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && string(raw) != "null"
}

// toText renders a JSON value as display text: strings verbatim, other
// scalars by their literal, null and missing as empty.
func toText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return ""
	}
	return string(raw)
}

// truthy reports the boolean reading of a JSON value: false, 0, "", null
// and missing are false; everything else is true.
func truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch string(raw) {
	case "false", "null", `""`:
		return false
	}
	if raw[0] != '"' && raw[0] != '{' && raw[0] != '[' {
		if f, err := strconv.ParseFloat(string(raw), 64); err == nil {
			return f != 0
		}
	}
	return true
}
