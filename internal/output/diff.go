// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// Diff compares two captured outputs. JSON documents are compared
// structurally; anything else line by line. changed is false when the two
// are equivalent, in which case the rendering is empty.
func Diff(previous, current string, color bool) (rendered string, changed bool, err error) {
	left := map[string]interface{}{"output": diffable(previous)}
	right := map[string]interface{}{"output": diffable(current)}

	d := gojsondiff.New().CompareObjects(left, right)
	if !d.Modified() {
		return "", false, nil
	}

	f := formatter.NewAsciiFormatter(left, formatter.AsciiFormatterConfig{
		ShowArrayIndex: false,
		Coloring:       color,
	})
	rendered, err = f.Format(d)
	if err != nil {
		return "", true, fmt.Errorf("failed to format diff: %w", err)
	}
	return rendered, true, nil
}

// diffable decodes JSON when it can and otherwise splits into lines.
func diffable(s string) interface{} {
	if gjson.Valid(s) {
		var v interface{}
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	out := make([]interface{}, len(lines))
	for i, l := range lines {
		out[i] = l
	}
	return out
}
