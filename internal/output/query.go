// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrNotJSON is returned by Query when the document is not valid JSON.
var ErrNotJSON = errors.New("output is not JSON")

// Query extracts path from a JSON document using gjson syntax. Strings come
// back unquoted, everything else as raw JSON.
func Query(doc string, path string) (string, error) {
	if !gjson.Valid(doc) {
		return "", ErrNotJSON
	}
	r := gjson.Get(doc, path)
	if !r.Exists() {
		return "", fmt.Errorf("query %q matched nothing", path)
	}
	if r.Type == gjson.String {
		return r.Str, nil
	}
	return r.Raw, nil
}
