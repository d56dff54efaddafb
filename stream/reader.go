package stream

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

type Frame struct {
	Code    string
	Payload json.RawMessage
}

func (f Frame) Decode(v any) error {
	return json.Unmarshal(f.Payload, v)
}

// Read splits a data stream body into frames.
func Read(r io.Reader) ([]Frame, error) {
	var frames []Frame

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)

	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}

		code, payload, ok := strings.Cut(line, ":")
		if !ok || !json.Valid([]byte(payload)) {
			return nil, fmt.Errorf("malformed frame %q", line)
		}

		frames = append(frames, Frame{Code: code, Payload: json.RawMessage(payload)})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return frames, nil
}
