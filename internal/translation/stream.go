package translation

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/kkahadze/mkhedruli-megruli/internal/textutil"
)

const dataPrefix = "data: "

// Event is one frame of the backend's event stream.
type Event struct {
	Progress float64 `json:"progress,omitempty"`
	Message  string  `json:"message,omitempty"`
	Result   *Result `json:"result,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// EventKind classifies an Event.
type EventKind int

const (
	KindUnknown EventKind = iota
	KindProgress
	KindResult
	KindError
)

// Kind reports what the frame carries. A zero progress value does not count
// as progress, and progress wins over result and error in the same frame.
func (e Event) Kind() EventKind {
	switch {
	case e.Progress != 0:
		return KindProgress
	case e.Result != nil:
		return KindResult
	case e.Error != "":
		return KindError
	}
	return KindUnknown
}

// EventReader decodes "data: <json>" lines from a stream.
type EventReader struct {
	r *bufio.Reader
}

// NewEventReader wraps r.
func NewEventReader(r io.Reader) *EventReader {
	return &EventReader{r: bufio.NewReader(r)}
}

// Next returns the next decodable event. Lines without the data prefix are
// skipped, malformed JSON is logged and skipped. A final line that is not
// terminated by a newline is dropped. Returns io.EOF at end of stream.
func (er *EventReader) Next() (Event, error) {
	for {
		line, err := er.r.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				if line != "" {
					log.Debug().Str("line", textutil.Truncate(line, 60)).Msg("Dropping unterminated stream line")
				}
				return Event{}, io.EOF
			}
			return Event{}, err
		}

		line = strings.TrimRight(line, "\r\n")
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}

		payload := line[len(dataPrefix):]
		var ev Event
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			log.Warn().Err(err).Str("payload", textutil.Truncate(payload, 60)).Msg("Failed to parse event")
			continue
		}
		return ev, nil
	}
}
