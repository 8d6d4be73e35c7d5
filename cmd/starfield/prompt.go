package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var errNoInput = errors.New("unexpected end of input")

// prompter reads positive integers from the console, one per line.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

// askInt prints label and reads one integer. Blank lines are skipped.
func (p *prompter) askInt(label string) (int, error) {
	fmt.Fprintf(p.out, "Enter the number of %s: ", label)
	for p.in.Scan() {
		line := strings.TrimSpace(p.in.Text())
		if line == "" {
			continue
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			return 0, fmt.Errorf("number of %s: %q is not an integer", label, line)
		}
		return n, nil
	}
	if err := p.in.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("number of %s: %w", label, errNoInput)
}
