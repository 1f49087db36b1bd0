// SPDX-License-Identifier: MIT

package telemetry

import (
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys shared by slideshow spans.
const (
	PollTriggerKey   = "slideshow.poll.trigger"
	PollFailuresKey  = "slideshow.poll.failures"
	PollVisibleKey   = "slideshow.poll.visible"
	PlaylistLenKey   = "slideshow.playlist.length"
	ControlActionKey = "slideshow.control.action"

	ErrorTypeKey = "error.type"
)

// PollAttributes describes a poll at the moment it starts.
func PollAttributes(trigger string, failures int, visible bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(PollTriggerKey, trigger),
		attribute.Int(PollFailuresKey, failures),
		attribute.Bool(PollVisibleKey, visible),
	}
}

// ControlAttributes describes a user control request.
func ControlAttributes(action string) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.String(ControlActionKey, action)}
}

// typedError is implemented by errors that classify themselves.
type typedError interface {
	Reason() string
}

// RecordError marks span as failed. Errors exposing Reason() contribute an error.type attribute.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	var te typedError
	if errors.As(err, &te) {
		span.SetAttributes(attribute.String(ErrorTypeKey, te.Reason()))
	}
}
