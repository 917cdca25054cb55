package session

import (
	"fmt"
	"strings"

	"contourqa/internal/ledger"
)

// FormatDetails renders the human-readable detail text of a disposition
// entry: marker, status, comment, then one accuracy line per element.
func FormatDetails(marker, status, comment string, elements []ledger.SnapshotElement) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Marker: %s\n", orDash(marker))
	fmt.Fprintf(&b, "Status: %s\n", status)
	fmt.Fprintf(&b, "Comment: %s", orDash(comment))
	for _, el := range elements {
		fmt.Fprintf(&b, "\n%s, Accuracy: %.1f%%", ElementName(el.ShapeName, el.ElementID), el.Accuracy)
	}
	return b.String()
}

// ElementName is the display name of an element: its reference shape name
// when known.
func ElementName(shapeName string, elementID int) string {
	if strings.TrimSpace(shapeName) != "" {
		return shapeName
	}
	return fmt.Sprintf("Element %d", elementID)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return strings.TrimSpace(s)
}
