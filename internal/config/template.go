package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/example/school-timetable/internal/application"
)

// DefaultTemplate is the form prefill used when no template file is configured.
func DefaultTemplate() application.TemplateInput {
	return application.TemplateInput{
		PeriodsPerDay:       "8",
		PeriodsSaturday:     "4",
		PeriodDuration:      "40",
		BreakAfterPeriod:    "4",
		WeekdayStartTime:    "08:00",
		SaturdayStartTime:   "08:00",
		LunchStartMonFri:    "10:40",
		LunchDurationMonFri: "30",
		LunchStartSat:       "10:40",
		LunchDurationSat:    "20",
	}
}

// LoadTemplate reads template form defaults from a TOML file. Keys missing
// from the file keep their DefaultTemplate value; an empty path returns the
// defaults unchanged.
func LoadTemplate(path string) (application.TemplateInput, error) {
	input := DefaultTemplate()
	if path == "" {
		return input, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return application.TemplateInput{}, fmt.Errorf("reading template file: %w", err)
	}

	decoder := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := decoder.Decode(&input); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return application.TemplateInput{}, fmt.Errorf("parsing template file: %s", strict.String())
		}
		return application.TemplateInput{}, fmt.Errorf("parsing template file: %w", err)
	}
	return input, nil
}

// WriteTemplate encodes input as TOML, the format LoadTemplate reads.
func WriteTemplate(path string, input application.TemplateInput) error {
	data, err := toml.Marshal(input)
	if err != nil {
		return fmt.Errorf("encoding template: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing template file: %w", err)
	}
	return nil
}
