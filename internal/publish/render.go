package publish

import (
	"fmt"
	"strings"

	"discflight/internal/store"
)

// Render formats the announcement text for one prediction.
func Render(p store.Prediction) string {
	return fmt.Sprintf(
		"%s %s has been approved. Estimated flight numbers:\nSPEED: %d\nGLIDE: %d\nTURN : %d\nFADE : %d\n\nSee it here: %s",
		strings.TrimSpace(p.Manufacturer),
		strings.TrimSpace(p.Name),
		p.Speed, p.Glide, p.Turn, p.Fade,
		strings.TrimSpace(p.URL),
	)
}
