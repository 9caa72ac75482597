package core

// errors.go maps technical errors to user-friendly messages with support
// codes. Patterns are matched case-insensitively using strings.Contains;
// the first matching pattern wins, so more specific patterns come before
// general ones.
//
// Code ranges:
//
//	FILE001-FILE099  file handling and parsing
//	MAP001-MAP099    column mapping
//	VAL001-VAL099    row validation
//	SUB001-SUB099    batch submission
//	SES001-SES099    wizard sessions
//	RATE001          request throttling
//	ERR000           fallback
import "strings"

// UserMessage provides user-friendly error information with actionable
// guidance. Message and Action are intended for direct display.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// File errors
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Upload a .csv, .xlsx, or .xls file",
			Code:    "FILE001",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE002",
		},
	},
	{
		pattern: "parse csv",
		msg: UserMessage{
			Message: "Could not parse the file",
			Action:  "Ensure the file is comma-separated with consistent columns",
			Code:    "FILE003",
		},
	},
	{
		pattern: "parse spreadsheet",
		msg: UserMessage{
			Message: "Could not read the spreadsheet",
			Action:  "Re-save the file as .xlsx or .csv and try again",
			Code:    "FILE003",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a file with a header row and data rows",
			Code:    "FILE004",
		},
	},
	{
		pattern: "no data rows",
		msg: UserMessage{
			Message: "The file has a header but no data rows",
			Action:  "Add at least one data row and try again",
			Code:    "FILE005",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Choose a file to upload",
			Code:    "FILE006",
		},
	},

	// Mapping errors
	{
		pattern: "not found in file",
		msg: UserMessage{
			Message: "A mapped column does not exist in the file",
			Action:  "Re-check the column mapping against the file headers",
			Code:    "MAP001",
		},
	},
	{
		pattern: "unknown schema",
		msg: UserMessage{
			Message: "The requested import type is not configured",
			Action:  "Pick one of the listed import types",
			Code:    "MAP002",
		},
	},

	// Validation errors
	{
		pattern: "no valid rows",
		msg: UserMessage{
			Message: "No rows passed validation",
			Action:  "Fix the reported row errors and upload again",
			Code:    "VAL001",
		},
	},
	{
		pattern: "too many rows",
		msg: UserMessage{
			Message: "The file has more rows than a single import allows",
			Action:  "Split the file and import it in parts",
			Code:    "VAL002",
		},
	},

	// Submission errors; timeout/cancel patterns must come before the
	// generic backend pattern
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The import request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "SUB002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The import request was cancelled",
			Action:  "Start the import again when ready",
			Code:    "SUB003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Could not reach the import service",
			Action:  "Try again in a few moments",
			Code:    "SUB004",
		},
	},
	{
		pattern: "import rejected",
		msg: UserMessage{
			Message: "The import was rejected by the server",
			Action:  "Review the reported reason and try again",
			Code:    "SUB001",
		},
	},

	// Session errors
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "This import session has expired",
			Action:  "Start a new import",
			Code:    "SES001",
		},
	},
	{
		pattern: "import already in progress",
		msg: UserMessage{
			Message: "An import is already running for this session",
			Action:  "Wait for it to finish",
			Code:    "SES002",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// MapError translates a technical error into a user-facing message.
// Unmatched errors fall back to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	lower := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(lower, ep.pattern) {
			return ep.msg
		}
	}

	return UserMessage{
		Message: "An unexpected error occurred",
		Action:  "Try again or contact support",
		Code:    "ERR000",
	}
}
