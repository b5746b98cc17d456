// internal/messages/normalize.go
package messages

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cast"

	"github.com/qc-advancedmedic/nui/pkg/core"
)

// partMapFields are objects keyed by body part.
var partMapFields = []string{"wounds", "infections", "bodyPartHealth", "bodyParts"}

// levelArrayFields are level tables keyed by number. A Lua table whose keys
// run from 1 without gaps arrives as an array.
var levelArrayFields = []string{"injuryStates", "infectionStages"}

// emptyTablesToNull rewrites every empty array in the tree to null. The host
// encodes an empty Lua table as [] whether it stands for a list or an object.
func emptyTablesToNull(v any) any {
	switch t := v.(type) {
	case []any:
		if len(t) == 0 {
			return nil
		}
		for i := range t {
			t[i] = emptyTablesToNull(t[i])
		}
		return t
	case map[string]any:
		for k, c := range t {
			t[k] = emptyTablesToNull(c)
		}
		return t
	}
	return v
}

// levelTables turns array-encoded level tables back into objects keyed by level.
func levelTables(obj map[string]any) {
	for _, field := range levelArrayFields {
		arr, ok := obj[field].([]any)
		if !ok {
			continue
		}
		m := make(map[string]any, len(arr))
		for i, v := range arr {
			if v != nil {
				m[strconv.Itoa(i+1)] = v
			}
		}
		obj[field] = m
	}
}

// canonicalParts rewrites body-part keys and bodyPart fields of a snapshot
// object to their backend form. Unknown keys are kept and reported.
func canonicalParts(obj map[string]any) []string {
	if obj == nil {
		return nil
	}
	var warnings []string
	for _, field := range partMapFields {
		m, ok := obj[field].(map[string]any)
		if !ok {
			continue
		}
		out := make(map[string]any, len(m))
		for k, v := range m {
			if !core.IsKnownKey(k) {
				warnings = append(warnings, unknownPartWarning(field, k))
			}
			if w, ok := v.(map[string]any); ok {
				canonicalBodyPart(w)
				canonicalRecords(w["treatments"])
			}
			if field == "wounds" {
				if err := readableWound(v); err != nil {
					warnings = append(warnings, fmt.Sprintf("dropped wound %q: %v", k, err))
					continue
				}
			}
			out[string(core.ToBackend(k))] = v
		}
		obj[field] = out
	}
	canonicalRecords(obj["treatments"])
	return warnings
}

// woundNumbers are the integer fields of a wound. Lua sends whole numbers as
// floats at times, and some scripts send them as strings.
var woundNumbers = []string{"painLevel", "bleedingLevel", "health", "severity", "bleeding"}

// readableWound coerces the scalar fields of a wound in place and checks that
// the result decodes. Null wounds pass and are dropped later.
func readableWound(v any) error {
	if v == nil {
		return nil
	}
	w, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("not an object")
	}
	for _, f := range woundNumbers {
		raw, ok := w[f]
		if !ok || raw == nil {
			continue
		}
		n, err := cast.ToFloat64E(scalar(raw))
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return fmt.Errorf("%s is not a number", f)
		}
		w[f] = int(n)
	}
	if raw, ok := w["isScar"]; ok && raw != nil {
		b, err := cast.ToBoolE(scalar(raw))
		if err != nil {
			return fmt.Errorf("isScar is not a flag")
		}
		w["isScar"] = b
	}

	b, err := json.Marshal(w)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, &core.Wound{})
}

func scalar(v any) any {
	if n, ok := v.(json.Number); ok {
		return n.String()
	}
	return v
}

func unknownPartWarning(field, key string) string {
	if s, ok := Suggest(key, core.KnownKeys()); ok {
		return fmt.Sprintf("unknown body part %q in %s (did you mean %q?)", key, field, s)
	}
	return fmt.Sprintf("unknown body part %q in %s", key, field)
}

func canonicalBodyPart(obj map[string]any) {
	if s, ok := obj["bodyPart"].(string); ok && s != "" {
		obj["bodyPart"] = string(core.ToBackend(s))
	}
}

// canonicalRecords handles treatment records both as a list and as a map keyed by id.
func canonicalRecords(v any) {
	switch t := v.(type) {
	case []any:
		for _, r := range t {
			if m, ok := r.(map[string]any); ok {
				canonicalBodyPart(m)
			}
		}
	case map[string]any:
		for _, r := range t {
			if m, ok := r.(map[string]any); ok {
				canonicalBodyPart(m)
			}
		}
	}
}

// normalizeRecords marks records without a status as active.
func normalizeRecords(recs []core.TreatmentRecord) {
	for i := range recs {
		if recs[i].Status == "" {
			recs[i].Status = core.StatusActive
		}
	}
}

// normalizeWounds clamps negative levels and normalizes embedded records.
// Null entries are dropped.
func normalizeWounds(ws core.Wounds) {
	for part, w := range ws {
		if w == nil {
			delete(ws, part)
			continue
		}
		w.PainLevel = max(w.PainLevel, 0)
		w.BleedingLevel = max(w.BleedingLevel, 0)
		if w.BodyPart == "" {
			w.BodyPart = part
		}
		for id, r := range w.Treatments {
			if r.Status == "" {
				r.Status = core.StatusActive
				w.Treatments[id] = r
			}
		}
	}
}
