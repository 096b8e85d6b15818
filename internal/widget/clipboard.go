package widget

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrClipboardUnavailable is returned by clipboards that cannot be written.
var ErrClipboardUnavailable = errors.New("widget: clipboard unavailable")

// Clipboard receives copied text.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// Prompter shows text for the viewer to copy by hand when the clipboard fails.
type Prompter interface {
	Prompt(message, value string)
}

// NoClipboard refuses every write, forcing the prompt fallback.
type NoClipboard struct{}

func (NoClipboard) WriteText(context.Context, string) error {
	return ErrClipboardUnavailable
}

// WriterPrompter prints the prompt and the value to W.
type WriterPrompter struct {
	W io.Writer
}

func (p WriterPrompter) Prompt(message, value string) {
	if p.W == nil {
		return
	}
	fmt.Fprintf(p.W, "%s\n%s\n", message, value)
}
