// Package repair heals common formatting mistakes in generator output before
// strict validation. It walks the generic tree produced by encoding/json and
// never fails: anything it does not recognize is left for the validator.
package repair

import (
	"encoding/json"
	"strconv"

	"github.com/claude/wodgen/internal/models"
)

// Change records one value the pass rewrote.
type Change struct {
	Path string `json:"path"`
	From any    `json:"from"`
	To   any    `json:"to"`
}

// Workout repairs candidate in place and returns it.
func Workout(candidate any) any {
	out, _ := Report(candidate)
	return out
}

// Report repairs candidate in place and returns it along with every change
// made, in walk order.
func Report(candidate any) (any, []Change) {
	r := &repairer{}
	doc, ok := candidate.(map[string]any)
	if !ok {
		return candidate, nil
	}
	blocks, ok := doc["blocks"].([]any)
	if !ok {
		return candidate, nil
	}
	for i, raw := range blocks {
		b, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		r.block("blocks."+strconv.Itoa(i), b)
	}
	return candidate, r.changes
}

type repairer struct {
	changes []Change
}

func (r *repairer) block(p string, b map[string]any) {
	r.duration(p, b, "time_cap")
	if score, ok := b["score"].(map[string]any); ok {
		r.duration(p+".score", score, "cap")
	}

	tag, _ := b["type"].(string)
	switch models.BlockType(tag) {
	case models.BlockAMRAP:
		r.duration(p, b, "duration")
	case models.BlockEMOM:
		if slots, ok := b["slots"].([]any); ok {
			for i, raw := range slots {
				slot, ok := raw.(map[string]any)
				if !ok {
					continue
				}
				sp := p + ".slots." + strconv.Itoa(i)
				r.minuteMod(sp, slot)
				r.movements(sp+".work", slot["work"])
			}
		}
	}

	r.movements(p+".sequence", b["sequence"])
}

func (r *repairer) movements(p string, v any) {
	list, ok := v.([]any)
	if !ok {
		return
	}
	for i, raw := range list {
		if m, ok := raw.(map[string]any); ok {
			r.duration(p+"."+strconv.Itoa(i), m, "time")
		}
	}
}

// duration normalizes obj[key] when it holds a string.
func (r *repairer) duration(p string, obj map[string]any, key string) {
	s, ok := obj[key].(string)
	if !ok {
		return
	}
	next := models.NormalizeDuration(s)
	if next == s {
		return
	}
	obj[key] = next
	r.record(p+"."+key, s, next)
}

// minuteMod raises a numeric minute_mod below 1 to 1, keeping the numeric
// representation the tree already uses.
func (r *repairer) minuteMod(p string, slot map[string]any) {
	var one any
	switch v := slot["minute_mod"].(type) {
	case float64:
		if v >= 1 {
			return
		}
		one = float64(1)
	case json.Number:
		f, err := v.Float64()
		if err != nil || f >= 1 {
			return
		}
		one = json.Number("1")
	default:
		return
	}
	r.record(p+".minute_mod", slot["minute_mod"], one)
	slot["minute_mod"] = one
}

func (r *repairer) record(path string, from, to any) {
	r.changes = append(r.changes, Change{Path: path, From: from, To: to})
}
