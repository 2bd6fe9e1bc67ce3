// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package confounds

import (
	"fmt"
	"os"
	"strings"
)

// WriteList writes names to path, one per line with no header or quoting.
// An existing file is overwritten. An empty list produces an empty file.
func WriteList(path string, names []string) error {
	var b strings.Builder
	for _, n := range names {
		b.WriteString(n)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing outlier list: %w", err)
	}
	return nil
}
