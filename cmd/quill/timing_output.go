package main

import (
	"encoding/json"
	"fmt"
	"io"

	"quill/internal/observ"
)

// printTimings пишет сводку фаз: текстом или, для машинных форматов, одной JSON-строкой.
func printTimings(out io.Writer, timer *observ.Timer, format string) error {
	if out == nil || timer == nil {
		return nil
	}
	if format == "json" || format == "msgpack" {
		data, err := json.Marshal(timer.Report())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s\n", data)
		return err
	}
	_, err := io.WriteString(out, timer.Summary())
	return err
}
