package userinfo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vertextoedge/ocs-userinfo/internal/domain"
)

// JSON node names of the OCS user payload
const (
	nodeOCS     = "ocs"
	nodeData    = "data"
	nodeID      = "id"
	nodeEnabled = "enabled"

	nodeQuota         = "quota"
	nodeQuotaFree     = "free"
	nodeQuotaUsed     = "used"
	nodeQuotaTotal    = "total"
	nodeQuotaRelative = "relative"

	// The limit sits under the same name inside the quota object
	nodeQuotaLimit = "quota"
)

// displayNameKeys lists the display name variants, newest server first
var displayNameKeys = []string{"display-name", "displayname"}

// textField maps candidate node names to an optional UserInfo attribute.
// Candidates are tried in order and the first non-empty scalar wins.
type textField struct {
	keys []string
	set  func(u *domain.UserInfo, v string)
}

var optionalFields = []textField{
	{keys: []string{"email"}, set: func(u *domain.UserInfo, v string) { u.Email = v }},
	{keys: []string{"phone"}, set: func(u *domain.UserInfo, v string) { u.Phone = v }},
	{keys: []string{"address"}, set: func(u *domain.UserInfo, v string) { u.Address = v }},
	// webpage was renamed to website in Nextcloud 12
	{keys: []string{"website", "webpage"}, set: func(u *domain.UserInfo, v string) { u.Website = v }},
	{keys: []string{"twitter"}, set: func(u *domain.UserInfo, v string) { u.Twitter = v }},
}

var errMissingDisplayName = errors.New("missing display name")

type object map[string]json.RawMessage

// decodeObject decodes raw into an object, rejecting null and non-object values
func decodeObject(raw json.RawMessage, name string) (object, error) {
	if isNull(raw) {
		return nil, fmt.Errorf("%s is null", name)
	}
	var obj object
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("%s is not an object: %w", name, err)
	}
	return obj, nil
}

// child returns the named object nested in obj
func (o object) child(name string) (object, error) {
	raw, ok := o[name]
	if !ok {
		return nil, fmt.Errorf("missing %q", name)
	}
	return decodeObject(raw, name)
}

// has returns true if the key exists and is not null
func (o object) has(name string) bool {
	raw, ok := o[name]
	return ok && !isNull(raw)
}

// lookupText returns the value of the first candidate key that is present and not null.
// Empty values are accepted; values that are not scalars are an error.
func (o object) lookupText(keys []string) (string, bool, error) {
	for _, key := range keys {
		if !o.has(key) {
			continue
		}
		v, err := textValue(o[key])
		if err != nil {
			return "", false, fmt.Errorf("field %q: %w", key, err)
		}
		return v, true, nil
	}
	return "", false, nil
}

// lookupOptionalText returns the first candidate holding a non-empty scalar.
// Objects and arrays are ignored like absent keys.
func (o object) lookupOptionalText(keys []string) (string, bool) {
	for _, key := range keys {
		if !o.has(key) {
			continue
		}
		v, err := textValue(o[key])
		if err != nil || v == "" {
			continue
		}
		return v, true
	}
	return "", false
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// textValue returns a scalar as text. Numbers and booleans keep their literal form.
func textValue(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", errors.New("empty value")
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		return "", errors.New("expected a scalar value")
	default:
		var v any
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return "", err
		}
		return string(trimmed), nil
	}
}

// boolValue accepts JSON booleans and the strings "true" and "false"
func boolValue(raw json.RawMessage) (bool, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, err
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		switch strings.ToLower(b) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, fmt.Errorf("expected a boolean, got %s", string(raw))
}

// numberValue accepts JSON numbers and numeric strings
func numberValue(raw json.RawMessage) (json.Number, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch n := v.(type) {
	case json.Number:
		return n, nil
	case string:
		s := strings.TrimSpace(n)
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return "", fmt.Errorf("expected a number, got %q", n)
		}
		return json.Number(s), nil
	default:
		return "", fmt.Errorf("expected a number, got %s", string(raw))
	}
}

// int64Value reads an integral value. Fractional values are truncated.
func int64Value(raw json.RawMessage) (int64, error) {
	n, err := numberValue(raw)
	if err != nil {
		return 0, err
	}
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("value %s out of range", n)
	}
	return int64(f), nil
}

func float64Value(raw json.RawMessage) (float64, error) {
	n, err := numberValue(raw)
	if err != nil {
		return 0, err
	}
	return n.Float64()
}

// requiredInt64 reads a mandatory integral field of obj
func (o object) requiredInt64(name string) (int64, error) {
	if !o.has(name) {
		return 0, fmt.Errorf("missing %q", name)
	}
	v, err := int64Value(o[name])
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", name, err)
	}
	return v, nil
}
