package cmdenv

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/papercomputeco/marcus/pkg/cliui"
	"github.com/papercomputeco/marcus/pkg/llm"
	"github.com/papercomputeco/marcus/pkg/stream"
)

// ErrServiceReported is returned when the service sends an error event
// in the stream.
var ErrServiceReported = errors.New("service reported an error")

// PrintStream writes the text of every event to w as it arrives and returns
// the full text. Frames that fail to parse are logged and skipped.
func PrintStream(w io.Writer, r *stream.Reader, log *slog.Logger) (string, error) {
	defer r.Close()

	var text strings.Builder
	for ev, err := range r.All() {
		if err != nil {
			var decodeErr *llm.DecodeError
			if errors.As(err, &decodeErr) {
				log.Warn("skipping malformed frame",
					"offset", decodeErr.Offset,
					"payload", decodeErr.RawPayload,
				)
				continue
			}
			return text.String(), err
		}

		if ev.Kind == stream.KindError {
			return text.String(), fmt.Errorf("%w: %s", ErrServiceReported, errorMessage(ev))
		}

		chunk := ev.Text()
		text.WriteString(chunk)
		if _, err := io.WriteString(w, chunk); err != nil {
			return text.String(), err
		}

		if ev.Kind == stream.KindFinal {
			log.Debug("stream complete", "stop_reason", stopReason(ev))
		}
	}

	return text.String(), nil
}

func errorMessage(ev *stream.Event) string {
	if msg := ev.Get("error.message"); msg.Exists() {
		return msg.String()
	}
	return ev.Get("error").String()
}

func stopReason(ev *stream.Event) string {
	if r := ev.Get("event.stop_reason"); r.Exists() {
		return r.String()
	}
	return ev.Get("stop_reason").String()
}

// PrintText writes a complete reply, rendered as markdown when w is a
// terminal.
func PrintText(w io.Writer, text string) {
	if cliui.IsTerminal(w) {
		if rendered, err := cliui.RenderMarkdown(text); err == nil {
			fmt.Fprint(w, rendered)
			return
		}
	}
	fmt.Fprintln(w, text)
}
