package textextract

import (
	"fmt"
	"strings"

	"veritext/internal/services"
)

// MinTextLength is the minimum number of characters (after trimming) a text
// must have to be admitted for training or inference. The same gate runs in
// both places so the serving path never sees shorter inputs than the model
// was trained on.
const MinTextLength = 10

// ValidateText rejects text shorter than minLength characters after trimming.
// A minLength of zero or less falls back to MinTextLength.
func ValidateText(text string, minLength int) error {
	if minLength <= 0 {
		minLength = MinTextLength
	}
	if len(strings.TrimSpace(text)) < minLength {
		return services.Wrap(services.ErrValidation, "validate", "text",
			fmt.Sprintf("text must be at least %d characters long", minLength), nil)
	}
	return nil
}
