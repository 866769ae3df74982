package cli

import (
	"math"
	"strings"

	"github.com/spf13/pflag"

	"github.com/aidanlsb/coursedates/internal/config"
	"github.com/aidanlsb/coursedates/internal/dates"
	"github.com/aidanlsb/coursedates/internal/update"
)

// dateFlags holds the start date and numbering convention shared by the
// root command and render.
type dateFlags struct {
	start string
	index int
}

func (f *dateFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.start, "start", "s", "", "School-year start date (MM/DD/YYYY or YYYY-MM-DD)")
	fs.IntVarP(&f.index, "index", "i", 0, "Day number that directives use for the start date")
}

// resolve applies flag > config > default precedence.
func (f *dateFlags) resolve(fs *pflag.FlagSet, c *config.Config) (dates.Date, int, error) {
	start := c.StartDate
	if fs.Changed("start") {
		start = f.start
	}
	if strings.TrimSpace(start) == "" {
		return dates.Date{}, 0, &update.ConfigError{Field: "start date", Message: "is required (pass --start or set start_date in config)"}
	}
	d, err := dates.ParseStartDate(start)
	if err != nil {
		return dates.Date{}, 0, &update.ConfigError{Field: "start date", Message: err.Error()}
	}

	index := c.GetStartIndex()
	if fs.Changed("index") {
		index = f.index
	}
	if index < math.MinInt32 || index > math.MaxInt32 {
		return dates.Date{}, 0, &update.ConfigError{Field: "start index", Message: "must fit in a 32-bit integer"}
	}
	return d, index, nil
}

func intFlagOr(fs *pflag.FlagSet, name string, flagValue, fallback int) int {
	if fs.Changed(name) {
		return flagValue
	}
	return fallback
}

func stringFlagOr(fs *pflag.FlagSet, name, flagValue, fallback string) string {
	if fs.Changed(name) {
		return flagValue
	}
	return fallback
}
