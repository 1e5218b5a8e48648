package source

import (
	"strconv"
	"strings"
)

// FieldAliases maps a canonical attribute name to the spellings individual
// services use for it. One shared lookup replaces the per-dataset
// "try NAME, Name, name" chains.
type FieldAliases map[string][]string

// DefaultIdentityFields is the fixed-priority list of attribute names tried
// when deriving a feature's identity key.
var DefaultIdentityFields = []string{
	"objectId", "OBJECTID", "FID", "OBJECTID_1", "GLOBALID", "GlobalID",
}

// ResolveField returns the first non-nil attribute value among aliases, in
// priority order.
func ResolveField(attrs map[string]any, aliases []string) (any, bool) {
	for _, name := range aliases {
		if v, ok := attrs[name]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Resolve looks up the canonical field through its alias list. A canonical
// name with no registered aliases falls back to the name itself.
func (fa FieldAliases) Resolve(attrs map[string]any, canonical string) (any, bool) {
	aliases, ok := fa[canonical]
	if !ok {
		aliases = []string{canonical}
	}
	return ResolveField(attrs, aliases)
}

// Identity derives the deduplication key for a feature: the first non-nil
// value among the identity fields, stringified. Features with none are never
// deduplicated, signalled by an empty string.
func Identity(attrs map[string]any, identityFields []string) string {
	fields := identityFields
	if len(fields) == 0 {
		fields = DefaultIdentityFields
	}
	v, ok := ResolveField(attrs, fields)
	if !ok {
		return ""
	}
	return stringifyIdentity(v)
}

// stringifyIdentity renders an identity value as a stable string. JSON
// numbers arrive as float64; integral ones must not grow a decimal point or
// the same feature would get two different keys across sources.
func stringifyIdentity(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
