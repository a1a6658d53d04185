//go:build js && wasm

package logging

import (
	"encoding/json"
	"syscall/js"
)

// ConsoleWriter forwards encoded entries to the browser console, choosing
// console.debug/log/warn/error by entry level.
type ConsoleWriter struct {
	console js.Value
}

// NewConsoleWriter binds the global console object.
func NewConsoleWriter() *ConsoleWriter {
	return &ConsoleWriter{console: js.Global().Get("console")}
}

func (c *ConsoleWriter) Write(p []byte) (int, error) {
	if !c.console.Truthy() {
		return len(p), nil
	}
	var entry Entry
	if err := json.Unmarshal(p, &entry); err != nil {
		c.console.Call("log", string(p))
		return len(p), nil
	}
	method := "log"
	switch entry.Level {
	case DEBUG.String():
		method = "debug"
	case WARN.String():
		method = "warn"
	case ERROR.String(), FATAL.String():
		method = "error"
	}
	args := []any{"[" + entry.Component + "] " + entry.Message}
	if len(entry.Fields) > 0 {
		args = append(args, js.ValueOf(toJSObject(entry.Fields)))
	}
	c.console.Call(method, args...)
	return len(p), nil
}

// toJSObject keeps only values js.ValueOf accepts.
func toJSObject(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch v.(type) {
		case string, bool, float64, int, int64, nil:
			out[k] = v
		default:
			data, err := json.Marshal(v)
			if err != nil {
				continue
			}
			out[k] = string(data)
		}
	}
	return out
}
