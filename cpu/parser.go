// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

const (
	// LABEL_MARKER introduces a label declaration line.
	LABEL_MARKER = "."
	// COMMENT_MARKER starts a comment running to end of line.
	COMMENT_MARKER = ";"
)

// Parser splits source text into a Program and its label table. No semantic
// validation happens here: malformed statements are deferred to execution
// time. The only load-time failures are $() expression errors.
type Parser struct {
	Verbose bool           // If set, verbosely logs the parser actions.
	Label   map[string]int // Map of label names to line indexes.

	predefine map[string]string // Predefines available to $() expressions.
}

// Predefine defines a new predefine or redefines an existing one.
func (p *Parser) Predefine(name string, value string) {
	if p.predefine == nil {
		p.predefine = map[string]string{name: value}
	} else {
		p.predefine[name] = value
	}
}

// parenEval does parse-time $(...) evaluations.
func (p *Parser) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range p.predefine {
		value64, perr := strconv.ParseInt(str, 0, 64)
		if perr != nil {
			// Ignore non-integer predefines.
			continue
		}
		pred[key] = starlark.MakeInt(int(value64))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = st_int64
	return
}

// parseLine strips comments and substitutes $() evaluations, leaving the rest
// of the line untouched so that line indexes stay 1:1 with the source.
func (p *Parser) parseLine(line string) (out string, err error) {
	out, _, _ = strings.Cut(line, COMMENT_MARKER)

	// Do $() evaluations
	re := regexp.MustCompile(`\$\([^\$]*\)`)
	out = re.ReplaceAllStringFunc(out, func(str string) string {
		value, _err := p.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%v", value)
	})

	return
}

// Parse reads source text into a Program. Lines are kept in order, one
// instruction index per source line; a line whose trimmed content begins with
// the label marker declares a label mapped to that line's own index. Later
// declarations shadow earlier ones with the same name.
func (p *Parser) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	if p.Label == nil {
		p.Label = make(map[string]int, 16)
	}
	clear(p.Label)

	var lines []string
	for scanner.Scan() {
		line = scanner.Text()
		lineno += 1

		if p.Verbose {
			log.Printf("%v: %v", lineno, line)
		}

		line, err = p.parseLine(line)
		if err != nil {
			return
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, LABEL_MARKER) {
			name := strings.TrimPrefix(trimmed, LABEL_MARKER)
			p.Label[name] = len(lines)
		}

		lines = append(lines, line)
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	prog = &Program{
		Lines:  lines,
		Labels: maps.Clone(p.Label),
	}

	return
}
