package render

import "log"

// Logf receives progress lines from rendering. The CLI mutes it with --quiet.
var Logf = log.Printf

// SetLogger swaps the progress logger; nil discards everything.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		f = func(string, ...interface{}) {}
	}
	Logf = f
}
