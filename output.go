package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

const usageText = `Usage: pbkdf2 [flags] <hashType> <salt> <iterationCount> <password> [doItRight]
       hashType: 1=SHA-1, 2=SHA-256, 3=SHA384, 4 or 5=SHA512
       doItRight: If present the salt is interpreted as a byte array and
                  the password is converted to UTF-8 before hashing
                  Otherwise the salt is interpreted as an integer and
                  the password is used in the ANSI or UTF-16 encoding
       --password-prompt: a password of "-" is read from PBKDF2_PASSWORD
                  or the terminal. Without it "-" is the password itself
`

// console writes text to one output stream. Streams attached to a terminal
// get colour, redirected streams get the plain bytes.
type console struct {
	w        io.Writer
	terminal bool
}

func newConsole(w io.Writer) *console {
	return &console{w: w, terminal: isTerminal(w)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// segment is a piece of a line with optional terminal attributes
type segment struct {
	text  string
	attrs []color.Attribute
}

func (c *console) writeLine(segments ...segment) error {
	if !c.terminal {
		bw := bufio.NewWriter(c.w)
		for _, s := range segments {
			if _, err := bw.WriteString(s.text); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
		return bw.Flush()
	}

	for _, s := range segments {
		if len(s.attrs) == 0 {
			if _, err := io.WriteString(c.w, s.text); err != nil {
				return err
			}
			continue
		}
		col := color.New(s.attrs...)
		col.EnableColor()
		if _, err := col.Fprint(c.w, s.text); err != nil {
			return err
		}
	}
	_, err := io.WriteString(c.w, "\n")
	return err
}

func (c *console) printError(msg string) {
	_ = c.writeLine(segment{text: strings.TrimRight(msg, "\n"), attrs: []color.Attribute{color.FgRed}})
}

func (c *console) printUsage() {
	c.printError(usageErrorMessage)
	for _, line := range strings.Split(strings.TrimRight(usageText, "\n"), "\n") {
		_ = c.writeLine(segment{text: line})
	}
}

// formatReport renders the two result lines
func formatReport(r Report) (string, string) {
	return reportPrefix(r) + encodeHex(r.Result.DerivedKey), durationLine(r)
}

func reportPrefix(r Report) string {
	return fmt.Sprintf("HashType: %s, Salt: %s, IterationCount: %d, Password: '%s', PBKDF2: ",
		r.Algorithm, r.SaltText, r.IterationCount, r.Password)
}

func durationLine(r Report) string {
	return fmt.Sprintf("Duration: %d ms", roundedMillis(r.Result.ElapsedSeconds))
}

func (c *console) printReport(r Report) error {
	if err := c.writeLine(
		segment{text: reportPrefix(r)},
		segment{text: encodeHex(r.Result.DerivedKey), attrs: []color.Attribute{color.Bold}},
	); err != nil {
		return err
	}
	return c.writeLine(segment{text: durationLine(r)})
}
