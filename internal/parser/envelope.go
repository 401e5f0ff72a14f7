package parser

import (
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// Envelope is one device-response result object delivered by the transport
// layer: {success, data: {raw, parsed?, command, timestamp}, message?}.
type Envelope struct {
	Success   bool
	Command   Command
	Raw       string
	Parsed    gjson.Result // pre-segmented payload; may not Exist()
	Timestamp time.Time
	Message   string
}

// DecodeEnvelope decodes a transport result object. The command name must
// be one of the supported commands; everything else about the payload is
// validated lazily by the per-command parsers.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("result envelope is not valid JSON")
	}
	root := gjson.ParseBytes(data)

	cmdName := root.Get("data.command").String()
	cmd, err := ParseCommand(cmdName)
	if err != nil {
		return nil, fmt.Errorf("result envelope: %w", err)
	}

	env := &Envelope{
		Success: root.Get("success").Bool(),
		Command: cmd,
		Raw:     root.Get("data.raw").String(),
		Parsed:  root.Get("data.parsed"),
		Message: root.Get("message").String(),
	}

	if ts := root.Get("data.timestamp").String(); ts != "" {
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, ts); err == nil {
				env.Timestamp = t
				break
			}
		}
	}

	return env, nil
}
