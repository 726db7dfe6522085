package driver

import (
	"fmt"
	"io"
	"strings"

	"github.com/askiada/go-vessel/pkg/vessel"
)

// HelpMode prints the usage text.
const HelpMode = "help"

type modeKind int

const (
	segmentKind modeKind = iota
	scaleKind
	calibratedKind
)

// modeDef describes what a command line mode runs.
type modeDef struct {
	name    string
	dataset string
	kind    modeKind
	variant vessel.Variant
	usage   string
}

var modes = []modeDef{
	{name: "drive", dataset: vessel.DriveName, kind: segmentKind, usage: "<input> <output>"},
	{name: "stare", dataset: vessel.StareName, kind: segmentKind, usage: "<input> <output>"},
	{name: "drive-scale", dataset: vessel.DriveName, kind: scaleKind, usage: "<image0> [<image1>]..."},
	{name: "stare-scale", dataset: vessel.StareName, kind: scaleKind, usage: "<image0> [<image1>]..."},
	{name: "drive-cn", dataset: vessel.DriveName, kind: calibratedKind, variant: vessel.VariantCN, usage: "<input> <scale> <output>"},
	{name: "stare-cn", dataset: vessel.StareName, kind: calibratedKind, variant: vessel.VariantCN, usage: "<input> <scale> <output>"},
	{name: "drive-ca", dataset: vessel.DriveName, kind: calibratedKind, variant: vessel.VariantCA, usage: "<input> <scale> <output>"},
	{name: "stare-ca", dataset: vessel.StareName, kind: calibratedKind, variant: vessel.VariantCA, usage: "<input> <scale> <output>"},
}

func lookupMode(name string) (modeDef, bool) {
	for _, m := range modes {
		if m.name == name {
			return m, true
		}
	}

	return modeDef{}, false
}

// Modes returns the runnable modes in usage order.
func Modes() []string {
	res := make([]string, 0, len(modes))
	for _, m := range modes {
		res = append(res, m.name)
	}

	return res
}

// ModeUsage returns the argument synopsis of a mode.
func ModeUsage(name string) string {
	m, ok := lookupMode(name)
	if !ok {
		return ""
	}

	return m.usage
}

func (m modeDef) checkArgs(args []string) error {
	switch m.kind {
	case segmentKind:
		if len(args) != 2 {
			return &UsageError{Mode: m.name, Want: "2", Got: len(args)}
		}
	case scaleKind:
		if len(args) == 0 {
			return &UsageError{Mode: m.name, Want: "at least 1", Got: 0}
		}
	case calibratedKind:
		if len(args) != 3 {
			return &UsageError{Mode: m.name, Want: "3", Got: len(args)}
		}
	}

	return nil
}

// output returns the designated output of the run, if the mode has one.
func (m modeDef) output(args []string) string {
	switch m.kind {
	case segmentKind:
		return args[1]
	case calibratedKind:
		return args[2]
	default:
		return ""
	}
}

// UsageError reports a mode called with the wrong number of arguments.
type UsageError struct {
	Mode string
	Want string
	Got  int
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s expects %s argument(s), got %d", e.Mode, e.Want, e.Got)
}

// PrintUsage writes the list of modes, each line prefixed with program.
func PrintUsage(w io.Writer, program string) {
	var b strings.Builder
	b.WriteString("Usages:\n")
	for _, m := range modes {
		fmt.Fprintf(&b, "%s %s %s\n", program, m.name, m.usage)
	}
	fmt.Fprintf(&b, "%s %s\n", program, HelpMode)

	_, _ = io.WriteString(w, b.String())
}
