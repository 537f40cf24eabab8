package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// prompter reads answers line by line from the command's input.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

// ask prints label and returns the trimmed reply, or io.EOF when input ends.
func (p *prompter) ask(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// fill asks for *value when it is still empty.
func (p *prompter) fill(label string, value *string) error {
	if *value != "" {
		return nil
	}
	reply, err := p.ask(label)
	if err != nil {
		return err
	}
	*value = reply
	return nil
}
