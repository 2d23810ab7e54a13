// Package color renders terminal colours through a termenv profile shared by
// the tracer, the disassembler and the debugger.
package color

import (
	"os"

	"github.com/muesli/termenv"
)

// ANSI colour indices understood by termenv.Profile.Color
const (
	Yellow    = "3"
	Blue      = "4"
	Cyan      = "6"
	Gray      = "8"
	BrightRed = "9"
)

var profile = termenv.Ascii

func init() {
	if os.Getenv("NO_COLOR") == "" && isTerminal() {
		profile = termenv.ANSI256
	}
}

func isTerminal() bool {
	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}

func EnableColor(enable bool) {
	if enable {
		profile = termenv.ANSI256
		return
	}
	profile = termenv.Ascii
}

func IsColorEnabled() bool {
	return profile != termenv.Ascii
}

func Colorize(color, text string) string {
	return profile.String(text).Foreground(profile.Color(color)).String()
}

func BrightRedText(text string) string {
	return Colorize(BrightRed, text)
}

func YellowText(text string) string {
	return Colorize(Yellow, text)
}

func BlueText(text string) string {
	return Colorize(Blue, text)
}

func CyanText(text string) string {
	return Colorize(Cyan, text)
}

func GrayText(text string) string {
	return Colorize(Gray, text)
}

func Error(message string) string {
	if !IsColorEnabled() {
		return "Error: " + message
	}
	return BrightRedText("Error: ") + message
}

func Warning(message string) string {
	if !IsColorEnabled() {
		return "Warning: " + message
	}
	return YellowText("Warning: ") + message
}

func Info(message string) string {
	if !IsColorEnabled() {
		return message
	}
	return BlueText(message)
}
