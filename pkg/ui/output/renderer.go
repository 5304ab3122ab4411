// Package output turns scaffold results and bundle metadata into terminal
// output. It has a styled mode for interactive terminals and a plain mode
// for pipes and CI logs; both carry the same information.
package output

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"

	"github.com/armature-io/armature/pkg/types"
)

// Renderer formats results for one output stream.
type Renderer struct {
	plain bool
}

// NewRenderer builds a renderer for the given color mode: "always",
// "never", or "auto". Auto enables styling only on a color-capable TTY.
func NewRenderer(colorMode string) *Renderer {
	switch colorMode {
	case "always":
		return &Renderer{plain: false}
	case "never":
		return &Renderer{plain: true}
	default:
		tty := isatty.IsTerminal(os.Stdout.Fd())
		return &Renderer{plain: !tty || termenv.ColorProfile() == termenv.Ascii}
	}
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if r.plain {
		return text
	}
	return s.Render(text)
}

// Summary renders a ScaffoldResult as a human-readable report.
func (r *Renderer) Summary(res types.ScaffoldResult) string {
	var b strings.Builder

	b.WriteString(r.outcomeLine(res.Outcome))
	b.WriteString("\n")

	if len(res.PlannedPaths) > 0 {
		b.WriteString(r.style(headingStyle, "Would create:"))
		b.WriteString("\n")
		for _, p := range res.PlannedPaths {
			fmt.Fprintf(&b, "  %s\n", r.style(pathStyle, p))
		}
	}
	if len(res.CreatedPaths) > 0 {
		b.WriteString(r.style(headingStyle, "Created:"))
		b.WriteString("\n")
		for _, p := range res.CreatedPaths {
			fmt.Fprintf(&b, "  %s\n", r.style(pathStyle, p))
		}
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(&b, "%s %s\n", r.style(warningStyle, "warning:"), w)
	}
	for _, err := range res.Errors {
		fmt.Fprintf(&b, "%s %s\n", r.style(errorStyle, "error:"), err.Error())
	}

	fmt.Fprintf(&b, "%s\n", r.style(mutedStyle,
		fmt.Sprintf("(%s)", res.Duration.Round(time.Millisecond))))
	return b.String()
}

func (r *Renderer) outcomeLine(outcome types.Outcome) string {
	switch outcome {
	case types.OutcomeCompleted:
		return r.style(successStyle, "Scaffold complete")
	case types.OutcomePartial:
		return r.style(warningStyle, "Scaffold complete, with hook failures")
	case types.OutcomeRolledBack:
		return r.style(errorStyle, "Scaffold failed, all written paths rolled back")
	default:
		return r.style(errorStyle, "Scaffold failed")
	}
}

// BundleInfo renders a bundle's parameters and presets as tables.
func (r *Renderer) BundleInfo(b *types.TemplateBundle) string {
	var out strings.Builder

	fmt.Fprintf(&out, "%s", r.style(headingStyle, b.Name))
	if b.Description != "" {
		fmt.Fprintf(&out, " %s", r.style(mutedStyle, "— "+b.Description))
	}
	out.WriteString("\n\n")

	rows := pterm.TableData{{"Parameter", "Type", "Required", "Default", "Description"}}
	for _, d := range b.Definitions {
		def := ""
		if d.HasDefault() {
			def = types.FormatValue(d.Default)
		}
		rows = append(rows, []string{
			d.Name, string(d.Type), fmt.Sprintf("%t", d.Required), def, d.Description,
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
	if err == nil {
		out.WriteString(table)
		out.WriteString("\n")
	}

	if len(b.Presets) > 0 {
		out.WriteString("\n")
		out.WriteString(r.style(headingStyle, "Presets:"))
		out.WriteString("\n")
		rows := pterm.TableData{{"Preset", "Extends", "Values"}}
		for _, name := range presetNames(b.Presets) {
			p := b.Presets[name]
			rows = append(rows, []string{
				p.Name,
				strings.Join(p.Extends, ", "),
				formatValues(p.Values),
			})
		}
		if table, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender(); err == nil {
			out.WriteString(table)
			out.WriteString("\n")
		}
	}
	return out.String()
}

// ValidationReport renders validator errors one per line.
func (r *Renderer) ValidationReport(errs []error) string {
	if len(errs) == 0 {
		return r.style(successStyle, "Parameters valid") + "\n"
	}
	var b strings.Builder
	for _, err := range errs {
		fmt.Fprintf(&b, "%s %s\n", r.style(errorStyle, "invalid:"), err.Error())
	}
	return b.String()
}

func presetNames(table types.PresetTable) []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func formatValues(values types.ValueSet) string {
	parts := make([]string, 0, len(values))
	for _, name := range values.Names() {
		parts = append(parts, fmt.Sprintf("%s=%s", name, types.FormatValue(values[name])))
	}
	return strings.Join(parts, ", ")
}
