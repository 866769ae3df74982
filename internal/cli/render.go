package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/coursedates/internal/dates"
	"github.com/aidanlsb/coursedates/internal/directive"
	"github.com/aidanlsb/coursedates/internal/rewrite"
	"github.com/aidanlsb/coursedates/internal/ui"
)

var renderDates dateFlags

type renderResult struct {
	Input   string `json:"input"`
	Format  string `json:"format"`
	Day     int    `json:"day"`
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Value   string `json:"value"`
}

var renderCmd = &cobra.Command{
	Use:   "render <directive>...",
	Short: "Resolve directives without touching any file",
	Long: `Render resolves each argument the way a course update would and prints
the date it produces. Arguments may be full directives or just their
arguments:

  coursedates render -s 08/19/2024 'DateReplace("NN, MM D", 3)'
  coursedates render -s 08/19/2024 'M D,10' 'YYYY-MM-DD'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, index, err := renderDates.resolve(cmd.Flags(), getConfig())
		if err != nil {
			return handleError(ErrConfigInvalid, err, "Pass --start MM/DD/YYYY")
		}

		results := make([]renderResult, 0, len(args))
		for _, arg := range args {
			res, err := renderOne(arg, start, index)
			if err != nil {
				return handleError(ErrInvalidInput, err, "Use DateReplace(<format>, <day>) or <format>,<day>")
			}
			results = append(results, res)
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"results": results}, &Meta{Count: len(results)})
			return nil
		}
		for _, res := range results {
			fmt.Printf("%s  %s\n", ui.Accent.Render(res.Value), ui.Hint(fmt.Sprintf("day %d, %s", res.Day, res.Date)))
		}
		return nil
	},
}

// renderOne accepts "DateReplace(args)" or bare args.
func renderOne(arg string, start dates.Date, startIndex int) (renderResult, error) {
	args := strings.TrimSpace(arg)
	if strings.HasPrefix(args, directive.Marker) {
		args = strings.TrimPrefix(args, directive.Marker)
		end := strings.IndexByte(args, ')')
		if end < 0 {
			return renderResult{}, fmt.Errorf("%q: directive has no closing parenthesis", arg)
		}
		args = args[:end]
	}

	rw := rewrite.New(start, startIndex)
	format, day, err := rw.Parser.ParseArgs(args)
	if err != nil {
		return renderResult{}, fmt.Errorf("%q: %w", arg, err)
	}
	target, value := rw.Resolve(directive.Directive{
		Format:    format,
		DayNumber: day,
		DayOffset: day - startIndex,
		Args:      args,
	})
	return renderResult{
		Input:   arg,
		Format:  format,
		Day:     day,
		Date:    target.String(),
		Weekday: target.Weekday().String(),
		Value:   value,
	}, nil
}

func init() {
	renderDates.register(renderCmd.Flags())
	rootCmd.AddCommand(renderCmd)
}
