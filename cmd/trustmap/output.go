package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// tableFunc renders v as aligned columns.
type tableFunc func(tw *tabwriter.Writer)

// writeOutput prints v in the requested format. YAML keeps the JSON field
// names. A command without a table layout falls back to JSON.
func writeOutput(w io.Writer, format string, v interface{}, table tableFunc) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "yaml", "yml":
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic interface{}
		if err := json.Unmarshal(data, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()
	case "table":
		if table != nil {
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			table(tw)
			return tw.Flush()
		}
		fallthrough
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q (want json, yaml or table)", format)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
