package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// exportJSON writes v to the --json path when one was given
func exportJSON(w io.Writer, v interface{}) error {
	if jsonPath == "" {
		return nil
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", jsonPath, err)
	}

	fmt.Fprintf(w, "\nExported to %s\n", jsonPath)
	return nil
}
