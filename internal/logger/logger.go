package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

const Prefix = "TAGVM"

// New creates a logger writing to w. Without debug only warnings and
// errors are shown.
func New(w io.Writer, debug, noColor bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportCaller:    debug,
		ReportTimestamp: false, // the run reports its own elapsed time
		Prefix:          Prefix,
	})

	l.SetLevel(log.WarnLevel)
	if debug {
		l.SetLevel(log.DebugLevel)
	}

	l.SetColorProfile(termenv.ANSI256)
	if noColor {
		l.SetColorProfile(termenv.Ascii)
	}
	return l
}

// Init installs the default logger on stderr
func Init(debug, noColor bool) {
	log.SetDefault(New(os.Stderr, debug, noColor))
}
