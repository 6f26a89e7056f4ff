// Package render presents a panel view as JSON, terminal tables or an HTML
// page with charts.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/naka-gawa/star-trend/internal/config"
	"github.com/naka-gawa/star-trend/internal/usecase"
)

// Write renders v in the given format.
func Write(format string, w io.Writer, v *usecase.View) error {
	switch format {
	case config.FormatJSON:
		return JSON(w, v)
	case config.FormatTable:
		return Table(w, v)
	case config.FormatHTML:
		return HTML(w, v)
	default:
		return fmt.Errorf("%w: %q", config.ErrInvalidFormat, format)
	}
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v *usecase.View) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal view to JSON: %w", err)
	}
	return nil
}

const dateLayout = "2006-01-02"
