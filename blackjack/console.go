package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

//
// ===== pretty printing =====
//

var useColor bool

const (
	colReset  = "\033[0m"
	colBold   = "\033[1m"
	colDim    = "\033[2m"
	colGreen  = "\033[32m"
	colRed    = "\033[31m"
	colYellow = "\033[33m"
	colCyan   = "\033[36m"
)

func c(code, s string) string {
	if !useColor {
		return s
	}
	return code + s + colReset
}
func bold(s string) string { return c(colBold, s) }
func dim(s string) string  { return c(colDim, s) }
func good(s string) string { return c(colGreen, s) }
func warn(s string) string { return c(colYellow, s) }
func bad(s string) string  { return c(colRed, s) }
func cyan(s string) string { return c(colCyan, s) }

//
// ===== prompts =====
//

// ErrInputClosed is returned once the input has no more lines.
var ErrInputClosed = errors.New("input closed")

var errLineTooLong = errors.New("input line too long")

// maxLineBytes bounds a single answer; longer lines are discarded.
const maxLineBytes = 4096

// Prompter is the line-oriented console: it writes prompts to out and reads
// one answer per line from in.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

func (p *Prompter) Printf(format string, a ...any) { fmt.Fprintf(p.out, format, a...) }
func (p *Prompter) Println(a ...any)               { fmt.Fprintln(p.out, a...) }

func (p *Prompter) section(title string) {
	fmt.Fprintf(p.out, "\n%s %s %s\n", dim("---"), bold(title), dim("---"))
}

// Ask prints the prompt and returns the next line, trimmed. An over-long line
// is dropped and the prompt repeated.
func (p *Prompter) Ask(prompt string) (string, error) {
	for {
		fmt.Fprint(p.out, prompt)
		line, err := p.readLine()
		switch {
		case err == nil:
			return strings.TrimSpace(line), nil
		case errors.Is(err, errLineTooLong):
			p.Println(warn("Input too long. Please try again."))
		default:
			fmt.Fprintln(p.out)
			return "", err
		}
	}
}

// readLine reads up to the next newline. The whole line is always consumed,
// but only maxLineBytes of it are kept.
func (p *Prompter) readLine() (string, error) {
	var (
		buf     []byte
		read    bool
		tooLong bool
	)
	for {
		chunk, err := p.in.ReadSlice('\n')
		read = read || len(chunk) > 0
		if !tooLong {
			buf = append(buf, chunk...)
			if len(buf) > maxLineBytes {
				tooLong, buf = true, nil
			}
		}
		switch {
		case err == nil:
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if !read {
				return "", ErrInputClosed
			}
		default:
			return "", err
		}
		if tooLong {
			return "", errLineTooLong
		}
		return string(buf), nil
	}
}

// YesNo asks until the answer is Y or N, in either case.
func (p *Prompter) YesNo(prompt string) (bool, error) {
	for {
		ans, err := p.Ask(prompt)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(ans) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		p.Println(warn("Invalid input. Please enter 'Y' or 'N'."))
	}
}
