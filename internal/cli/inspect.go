package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/galvo/pkg/ilda"
)

// inspectCommand creates the inspect command, which summarizes the frames
// of an existing stream.
func (c *CLI) inspectCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "inspect <file.ild>",
		Short: "Summarize the frames of an ILDA stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frames, err := readStream(args[0])
			if err != nil {
				return err
			}
			c.Logger.Debug("decoded stream", "file", args[0], "frames", len(frames))

			if interactive {
				_, err := tea.NewProgram(newFrameBrowser(args[0], frames), tea.WithContext(cmd.Context())).Run()
				return err
			}

			printInfo("%s", StyleTitle.Render(args[0]))
			fmt.Println(frameTable(frames, 0, len(frames), -1))
			fmt.Println(streamSummary(frames))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the frames interactively")

	return cmd
}

// readStream decodes the stream at name.
func readStream(name string) ([]*ilda.Frame, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	frames, err := ilda.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return frames, nil
}

// streamSummary totals the frames and points of a decoded stream.
func streamSummary(frames []*ilda.Frame) string {
	points, on := 0, 0
	for _, f := range frames {
		points += len(f.Points)
		on += f.CountOn()
	}
	return summaryLine([]string{
		fmt.Sprintf("%d frames", len(frames)),
		fmt.Sprintf("%d points", points),
		fmt.Sprintf("%d on", on),
	})
}

// frameTable renders rows [offset, offset+height) of frames. The row at
// cursor is highlighted; pass -1 for none.
func frameTable(frames []*ilda.Frame, offset, height, cursor int) string {
	end := min(offset+height, len(frames))

	rows := make([][]string, 0, end-offset)
	for i := offset; i < end; i++ {
		f := frames[i]
		minX, minY, maxX, maxY := f.Bounds()
		rows = append(rows, []string{
			fmt.Sprintf("%d", f.Header.Index),
			fmt.Sprintf("%d", len(f.Points)),
			fmt.Sprintf("%d", f.CountOn()),
			fmt.Sprintf("%d,%d", minX, minY),
			fmt.Sprintf("%d,%d", maxX, maxY),
			f.Header.Name,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Frame", "Points", "On", "Min", "Max", "Name").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			if offset+row == cursor {
				return cellStyle.Foreground(colorCyan).Bold(true)
			}
			if col == 1 || col == 2 {
				return cellStyle.Foreground(colorWhite)
			}
			return cellStyle.Foreground(colorGray)
		})

	return t.Render()
}
