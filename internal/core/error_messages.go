package core

// # Error Codes Reference
//
// Every skipped row and every fatal error carries a code so a failed run can
// be diagnosed from its summary alone. Codes are grouped by category:
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: Export exceeds the configured size limit
//	          Patterns: "file too large"
//	FILE002 - Invalid JSON: Export is not valid JSON
//	          Patterns: "invalid json"
//	FILE003 - Not an array: Export's top-level value is not a JSON array
//	          Patterns: "not an array"
//	FILE005 - Unreadable file: Export could not be opened or read
//	          Patterns: "read export"
//
// # Row Errors (ROW001-ROW099)
//
//	ROW001 - Not an object: Export element is null or a scalar, not a row
//	         Patterns: "not a json object"
//
// # Image Errors (IMG001-IMG099)
//
//	IMG001 - Invalid image: IMAGE is not valid base64
//	         Patterns: "decode image", "illegal base64"
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key: A document with this ID already exists
//	        Patterns: "duplicate key"
//	DB004 - Connection refused: Unable to connect to the store
//	        Patterns: "connection refused"
//	DB005 - Connection reset: Store connection was interrupted
//	        Patterns: "connection reset"
//	DB006 - Timeout: Store operation timed out
//	        Patterns: "timeout", "deadline exceeded"
//	DB008 - Store unavailable: No reachable server or the client is closed
//	        Patterns: "server selection", "client is disconnected", "conn closed"
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - Cancelled: The run was interrupted
//	         Patterns: "context canceled"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches.
//
// Patterns are matched case-insensitively using strings.Contains and the first
// match wins, so more specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides readable error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors (FILE001-FILE005)
	// Fatal: raised before the first write.
	// =========================================================================
	{
		pattern: ReasonTooLarge,
		msg: UserMessage{
			Message: "Export exceeds the configured size limit",
			Action:  "Raise EXPORT_MAX_FILE_SIZE or split the export",
			Code:    "FILE001",
		},
	},
	{
		pattern: ReasonInvalidJSON,
		msg: UserMessage{
			Message: "Export is not valid JSON",
			Action:  "Re-run the exporter and check the file was not truncated",
			Code:    "FILE002",
		},
	},
	{
		pattern: ReasonNotArray,
		msg: UserMessage{
			Message: "Export must be a JSON array of rows",
			Action:  "Check that the file is the exporter's output",
			Code:    "FILE003",
		},
	},
	{
		pattern: ReasonReadFailed,
		msg: UserMessage{
			Message: "Export file could not be read",
			Action:  "Check the path and file permissions",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Row Errors (ROW001)
	// Per row: the row is skipped.
	// =========================================================================
	{
		pattern: "not a json object",
		msg: UserMessage{
			Message: "Export element is not a row object",
			Action:  "Remove or fix the null or scalar entry in the export array",
			Code:    "ROW001",
		},
	},

	// =========================================================================
	// Image Errors (IMG001)
	// Per row: the row is skipped.
	// =========================================================================
	{
		pattern: OpDecodeImage,
		msg: UserMessage{
			Message: "Image is not valid base64",
			Action:  "Fix or clear the IMAGE value for this row",
			Code:    "IMG001",
		},
	},
	{
		pattern: "illegal base64",
		msg: UserMessage{
			Message: "Image is not valid base64",
			Action:  "Fix or clear the IMAGE value for this row",
			Code:    "IMG001",
		},
	},

	// =========================================================================
	// Database Errors (DB001-DB008)
	// Per row: the row is skipped.
	// =========================================================================
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A document with this ID already exists",
			Action:  "Check the export for rows sharing an ID",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the store",
			Action:  "Check STORE_URL and that the server is running",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Store connection was interrupted",
			Action:  "Re-run the migration; identified rows are upserted",
			Code:    "DB005",
		},
	},
	{
		pattern: "server selection",
		msg: UserMessage{
			Message: "No reachable store server",
			Action:  "Check STORE_URL and network access",
			Code:    "DB008",
		},
	},
	{
		pattern: "client is disconnected",
		msg: UserMessage{
			Message: "Store client is closed",
			Action:  "Re-run the migration",
			Code:    "DB008",
		},
	},
	{
		pattern: "conn closed",
		msg: UserMessage{
			Message: "Store client is closed",
			Action:  "Re-run the migration",
			Code:    "DB008",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The run was interrupted",
			Action:  "Re-run the migration; identified rows are upserted",
			Code:    "RUN001",
		},
	},
	{
		pattern: "deadline exceeded",
		msg: UserMessage{
			Message: "Store operation timed out",
			Action:  "Check store load or raise STORE_CONNECT_TIMEOUT",
			Code:    "DB006",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Store operation timed out",
			Action:  "Check store load or raise STORE_CONNECT_TIMEOUT",
			Code:    "DB006",
		},
	},
}

// defaultMessage is returned when no pattern matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the log line for this row",
	Code:    "ERR000",
}

// MapError converts a technical error to a coded message.
// Returns an empty UserMessage for nil.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matched a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
