package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cobra"

	"github.com/turtacn/TrajMap/internal/application/mapview"
	"github.com/turtacn/TrajMap/pkg/colorseq"
	"github.com/turtacn/TrajMap/pkg/errors"
)

// PaletteEntry describes one sequencer colour.
type PaletteEntry struct {
	Index int     `json:"index"`
	Hex   string  `json:"hex"`
	R     uint8   `json:"r"`
	G     uint8   `json:"g"`
	B     uint8   `json:"b"`
	Hue   float64 `json:"hue"`
	Sat   float64 `json:"saturation"`
	Light float64 `json:"lightness"`
}

// PaletteResult is the output of `trajmap colors`.
type PaletteResult struct {
	Colours []PaletteEntry `json:"colours"`
	swatch  bool
}

// TableHeaders implements tableProvider.
func (p PaletteResult) TableHeaders() []string {
	return []string{"#", "HEX", "RGB", "HSL"}
}

// TableRows implements tableProvider.
func (p PaletteResult) TableRows() [][]string {
	rows := make([][]string, 0, len(p.Colours))
	for _, e := range p.Colours {
		rows = append(rows, []string{strconv.Itoa(e.Index), e.Hex, e.rgb(), e.hsl()})
	}
	return rows
}

func (p PaletteResult) String() string {
	var sb strings.Builder
	for i, e := range p.Colours {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%4d  %s  %-16s %-18s", e.Index, e.Hex, e.rgb(), e.hsl())
		if p.swatch {
			sb.WriteString(lipgloss.NewStyle().Background(lipgloss.Color(e.Hex)).Render("      "))
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

func (e PaletteEntry) rgb() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", e.R, e.G, e.B)
}

func (e PaletteEntry) hsl() string {
	return fmt.Sprintf("hsl(%.0f,%.0f%%,%.0f%%)", e.Hue, e.Sat*100, e.Light*100)
}

// BuildPalette describes the first n colours of a fresh sequencer.
func BuildPalette(n int) (PaletteResult, error) {
	if n < 1 || n > mapview.MaxPaletteSize {
		return PaletteResult{}, errors.Newf(errors.ErrCodeValidation,
			"palette size must be between 1 and %d", mapview.MaxPaletteSize).WithDetail(strconv.Itoa(n))
	}
	hexes := colorseq.Take(n)
	out := PaletteResult{Colours: make([]PaletteEntry, 0, n)}
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return PaletteResult{}, errors.Wrap(err, errors.ErrCodeInternal, "sequencer produced an invalid colour")
		}
		r, g, b := c.RGB255()
		hue, sat, light := c.Hsl()
		out.Colours = append(out.Colours, PaletteEntry{
			Index: i, Hex: h, R: r, G: g, B: b, Hue: hue, Sat: sat, Light: light,
		})
	}
	return out, nil
}

// NewColorsCmd prints the sequencer palette.  It needs no backend.
func NewColorsCmd() *cobra.Command {
	var (
		count  int
		swatch bool
	)
	cmd := &cobra.Command{
		Use:   "colors",
		Short: "Print the stroke colours layers are drawn with",
		Long: "Prints the first n colours a fresh sequencer emits.  The walk repeats every " +
			strconv.Itoa(colorseq.Period) + " colours.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := BuildPalette(count)
			if err != nil {
				return err
			}
			if cliCtx, err := GetCLIContext(cmd); err == nil {
				res.swatch = swatch && !cliCtx.NoColor
			}
			return PrintResult(cmd, res)
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", colorseq.Period, "number of colours to print")
	cmd.Flags().BoolVar(&swatch, "swatch", true, "draw a colour swatch next to each entry (text output)")
	return cmd
}

//Personal.AI order the ending
