package cli

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/fatih/color"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
	infoColor = color.New(color.FgCyan)
)

func printOK(w io.Writer, a ...any)   { _, _ = okColor.Fprintln(w, a...) }
func printWarn(w io.Writer, a ...any) { _, _ = warnColor.Fprintln(w, a...) }
func printErr(w io.Writer, a ...any)  { _, _ = errColor.Fprintln(w, a...) }
func printInfo(w io.Writer, a ...any) { _, _ = infoColor.Fprintln(w, a...) }

// printBody writes a response body, indenting it when it is JSON.
func printBody(w io.Writer, body []byte) {
	if len(bytes.TrimSpace(body)) == 0 {
		printOK(w, "OK (empty response)")
		return
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		_, _ = w.Write(body)
		_, _ = io.WriteString(w, "\n")
		return
	}
	buf.WriteByte('\n')
	_, _ = buf.WriteTo(w)
}
