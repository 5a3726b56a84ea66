package server

// ANSI colours for DEV route logging.
const (
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Gray    = "\033[90m"

	ResetColor = "\033[0m"
)

var methodColors = map[string]string{
	"GET":    Green,
	"POST":   Blue,
	"PUT":    Cyan,
	"DELETE": Yellow,
	"PATCH":  Magenta,
}

// statusColor picks red for server errors and yellow for client errors.
func statusColor(status int) string {
	switch {
	case status >= 500:
		return Red
	case status >= 400:
		return Yellow
	default:
		return Green
	}
}
