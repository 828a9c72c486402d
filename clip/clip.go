// Package clip puts built commands on the system clipboard.
package clip

import (
	"errors"
	"strings"

	"github.com/atotto/clipboard"
)

var ErrNothingToCopy = errors.New("nothing to copy")

// Writer is the clipboard backend. Tests swap it out.
var Writer = clipboard.WriteAll

// Copy places text on the clipboard verbatim. Blank text is refused.
func Copy(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrNothingToCopy
	}
	return Writer(text)
}

