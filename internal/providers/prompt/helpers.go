package prompt

import (
	"fmt"
	"strings"
)

// buildEnhanceMessage wraps the raw user description in the fixed
// instructional wrapper sent as the single user-role message.
func buildEnhanceMessage(description string) string {
	sb := &strings.Builder{}
	sb.WriteString("Rewrite the following product description into a vivid, concrete description for guiding an AI image generator. ")
	sb.WriteString("Focus on visual attributes such as material, colour, shape, and setting. Keep it under 80 words and respond with the rewritten description only. ")
	fmt.Fprintf(sb, "Product description: %q", strings.TrimSpace(description))
	return sb.String()
}
