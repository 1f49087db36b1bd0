// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldService   = "service"
	FieldVersion   = "version"
	FieldRequestID = "request_id"
	FieldFetchID   = "fetch_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Engine state fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"
	FieldStatus   = "status"
	FieldIndex    = "index"
	FieldLength   = "length"
	FieldFailures = "failures"
	FieldCycles   = "cycles"
	FieldDelay    = "delay"
	FieldTrigger  = "trigger"
	FieldVisible  = "visible"

	// Media fields
	FieldMediaID  = "media_id"
	FieldTeam     = "team"
	FieldMIMEType = "mime_type"

	// Path / URL fields
	FieldPath      = "path"
	FieldSourceURL = "source_url"
	FieldExportTo  = "export_path"
)
