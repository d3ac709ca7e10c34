// help.go: Help text rendering
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package argparse

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mitchellh/go-wordwrap"
	"golang.org/x/term"
)

// Default help layout.
const (
	DefaultConsoleWidth = 80
	DefaultLeftWidth    = 24
)

const (
	helpLeftPad   = 2
	helpMiddlePad = 1
)

func layoutError(consoleWidth, leftWidth int) error {
	if consoleWidth <= 0 || leftWidth < 0 || leftWidth >= consoleWidth {
		e := newError(KindInvalidLayout, "help layout needs 0 <= left width < console width")
		e.Expected, e.Got = consoleWidth, leftWidth
		return e
	}
	return nil
}

// lineFormat wraps s to width and indents every line by left spaces.
// Words longer than the available width are kept whole.
func lineFormat(s string, width, left int) string {
	wrapped := wordwrap.WrapString(strings.Join(strings.Fields(s), " "), uint(width-left))
	pad := strings.Repeat(" ", left)
	lines := strings.Split(wrapped, "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}

func typeTag(a *Argument) string {
	var name string
	switch a.vt {
	case Bool:
		name = "Boolean"
	case Int:
		name = "integer"
	case Float:
		name = "float"
	default:
		name = "string"
	}
	if a.nargs > 1 {
		return fmt.Sprintf("[%s x %d]", name, a.nargs)
	}
	return "[" + name + "]"
}

// slotLabel names value position i of dest: dest for a single value,
// dest1, dest2... otherwise.
func slotLabel(a *Argument, dest string, i int) string {
	if a.nargs > 1 {
		return fmt.Sprintf("%s%d", dest, i+1)
	}
	return dest
}

// HelpString renders the help entry for the argument registered as dest.
func (a *Argument) HelpString(dest string, consoleWidth, leftWidth int) (string, error) {
	if err := layoutError(consoleWidth, leftWidth); err != nil {
		return "", err
	}

	var head strings.Builder
	head.WriteString(strings.Repeat(" ", helpLeftPad))
	head.WriteString(a.name)
	if !a.positional {
		if !a.action.binary() {
			for i := 0; i < a.nargs; i++ {
				head.WriteString(" " + slotLabel(a, dest, i))
			}
		}
		if len(a.altSwitches) > 0 {
			head.WriteString("   (" + strings.Join(a.altSwitches, ", ") + ")")
		}
	}

	var b strings.Builder
	b.WriteString(head.String())
	if head.Len() < leftWidth-helpMiddlePad {
		b.WriteString(strings.Repeat(" ", leftWidth-head.Len()))
	} else {
		b.WriteString("\n" + strings.Repeat(" ", leftWidth))
	}

	body := typeTag(a)
	if a.help != "" {
		body += " " + a.help
	}
	if a.action == ActionStoreTrue {
		body += " (Default: FALSE)"
	} else if a.action == ActionStoreFalse {
		body += " (Default: TRUE)"
	}
	b.WriteString(strings.TrimLeft(lineFormat(body, consoleWidth, leftWidth), " "))

	if len(a.acceptSet) > 0 {
		label := "Range:"
		if a.nargs > 1 {
			label = "Ranges:"
		}
		b.WriteString("\n" + lineFormat(label, consoleWidth, leftWidth))
		for i, pred := range a.acceptSet {
			if pred == "" {
				pred = "(any)"
			}
			b.WriteString("\n" + lineFormat(slotLabel(a, dest, i)+": "+pred, consoleWidth, leftWidth+2))
		}
	}

	if !a.positional && a.defaults != nil && !a.action.binary() {
		b.WriteString("\n" + lineFormat("Default:", consoleWidth, leftWidth))
		for i, v := range formatSlots(a.defaults) {
			b.WriteString("\n" + lineFormat(slotLabel(a, dest, i)+" = "+v, consoleWidth, leftWidth+2))
		}
	}
	return b.String(), nil
}

// usageLine packs the usage items greedily, continuing lines under the
// first item.
func usageLine(prefix string, items []string, consoleWidth int) string {
	var b strings.Builder
	b.WriteString(prefix)
	col := len(prefix)
	indent := len(prefix) + 1
	if indent >= consoleWidth/2 {
		indent = 4
	}
	for _, item := range items {
		if col+1+len(item) > consoleWidth && col > indent {
			b.WriteString("\n" + strings.Repeat(" ", indent-1))
			col = indent - 1
		}
		b.WriteString(" " + item)
		col += 1 + len(item)
	}
	return b.String()
}

// HelpString renders the complete help text.
func (p *ArgumentParser) HelpString(consoleWidth, leftWidth int) (string, error) {
	if err := layoutError(consoleWidth, leftWidth); err != nil {
		return "", err
	}

	var items []string
	p.VisitAll(func(dest string, a *Argument) {
		if a.positional {
			return
		}
		item := "[" + a.name
		if !a.action.binary() {
			for i := 0; i < a.nargs; i++ {
				item += " " + slotLabel(a, dest, i)
			}
		}
		items = append(items, item+"]")
	})
	items = append(items, p.positionals...)

	var b strings.Builder
	b.WriteString(usageLine("Usage: "+p.command, items, consoleWidth))
	b.WriteString("\n\n")
	if p.description != "" {
		b.WriteString(lineFormat(p.description, consoleWidth, 0))
		b.WriteString("\n\n")
	}

	var positional, optional []string
	var renderErr error
	p.VisitAll(func(dest string, a *Argument) {
		if renderErr != nil {
			return
		}
		entry, err := a.HelpString(dest, consoleWidth, leftWidth)
		if err != nil {
			renderErr = err
			return
		}
		if a.positional {
			positional = append(positional, entry)
		} else {
			optional = append(optional, entry)
		}
	})
	if renderErr != nil {
		return "", renderErr
	}

	if len(positional) > 0 {
		b.WriteString("Positional arguments:\n")
		b.WriteString(strings.Join(positional, "\n"))
		b.WriteString("\n\n")
	}
	if len(optional) > 0 {
		b.WriteString("Optional arguments:\n")
		b.WriteString(strings.Join(optional, "\n"))
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

// TerminalWidth returns the width of w when it is a terminal, otherwise
// DefaultConsoleWidth.
func TerminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > DefaultLeftWidth+16 {
			return width
		}
	}
	return DefaultConsoleWidth
}

// WriteHelp renders the help text to w, sized to the terminal when w is
// one.
func (p *ArgumentParser) WriteHelp(w io.Writer) error {
	text, err := p.HelpString(TerminalWidth(w), DefaultLeftWidth)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, text)
	return err
}

// PrintHelp writes the help text to standard output.
func (p *ArgumentParser) PrintHelp() error {
	return p.WriteHelp(os.Stdout)
}
