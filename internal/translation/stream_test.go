package translation

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestEventReader(t *testing.T) {
	t.Parallel()
	input := strings.Join([]string{
		`data: {"progress": 25, "message": "Step 1"}`,
		``,
		`event: ignored`,
		`data: not-json`,
		`data: {"result": {"english": "hello", "georgian": "გამარჯობა"}}` + "\r",
		`data: {"error": "boom"}`,
		`data: {"progress": 99}`, // unterminated, dropped
	}, "\n")

	// One byte at a time so that every line arrives split across reads.
	er := NewEventReader(iotest.OneByteReader(strings.NewReader(input)))

	ev, err := er.Next()
	if err != nil || ev.Kind() != KindProgress || ev.Progress != 25 || ev.Message != "Step 1" {
		t.Fatalf("first event = %+v, %v", ev, err)
	}

	ev, err = er.Next()
	if err != nil || ev.Kind() != KindResult || ev.Result.English != "hello" || ev.Result.Georgian != "გამარჯობა" {
		t.Fatalf("second event = %+v, %v", ev, err)
	}

	ev, err = er.Next()
	if err != nil || ev.Kind() != KindError || ev.Error != "boom" {
		t.Fatalf("third event = %+v, %v", ev, err)
	}

	if _, err := er.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("err = %v, want io.EOF", err)
	}
}

func TestEventReaderReadError(t *testing.T) {
	t.Parallel()
	wantErr := errors.New("connection reset")
	er := NewEventReader(iotest.ErrReader(wantErr))
	if _, err := er.Next(); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestEventKind(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		ev   Event
		want EventKind
	}{
		{"empty", Event{}, KindUnknown},
		{"zero progress is not progress", Event{Progress: 0, Message: "starting"}, KindUnknown},
		{"progress", Event{Progress: 50}, KindProgress},
		{"progress wins over result", Event{Progress: 50, Result: &Result{}}, KindProgress},
		{"result wins over error", Event{Result: &Result{}, Error: "x"}, KindResult},
		{"error", Event{Error: "x"}, KindError},
	}
	for _, tt := range tests {
		if got := tt.ev.Kind(); got != tt.want {
			t.Errorf("%s: Kind() = %d, want %d", tt.name, got, tt.want)
		}
	}
}
