package logging

import (
	"encoding/json"
	"log"
	"time"
)

// Fields is one structured log line. Zero-valued optional fields are dropped.
type Fields struct {
	Service    string `json:"service"`
	RequestID  string `json:"request_id,omitempty"`
	OrderID    int64  `json:"order_id,omitempty"`
	ProductID  int64  `json:"product_id,omitempty"`
	EventID    string `json:"event_id,omitempty"`
	Step       string `json:"step,omitempty"`
	Status     string `json:"status,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// Log writes fields as a single JSON line through the standard logger.
func Log(fields Fields) {
	log.Print(Format(fields))
}

// Format renders fields as JSON, stamping the current UTC time when the
// caller did not set one.
func Format(fields Fields) string {
	if fields.Timestamp == "" {
		fields.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return `{"service":"` + fields.Service + `","status":"log_error"}`
	}
	return string(data)
}

// Err is a convenience for logging a failed step.
func Err(service, step string, err error, fields Fields) {
	fields.Service = service
	fields.Step = step
	fields.Status = "error"
	if err != nil {
		fields.Error = err.Error()
	}
	Log(fields)
}
