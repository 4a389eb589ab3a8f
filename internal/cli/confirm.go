package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirmer gates dangerous actions behind an explicit acknowledgment.
// Keeping it an interface keeps the pipeline testable without a terminal.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// StdioConfirmer reads a yes/no answer from In. Only "y" or "yes"
// (case-insensitive) confirm; anything else, including EOF, declines.
type StdioConfirmer struct {
	In  io.Reader
	Out io.Writer
}

func (c *StdioConfirmer) Confirm(prompt string) (bool, error) {
	if _, err := fmt.Fprintf(c.Out, "%s [y/N]: ", prompt); err != nil {
		return false, err
	}

	line, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
