package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/school-timetable/internal/application"
	"github.com/example/school-timetable/internal/config"
	"github.com/example/school-timetable/internal/logging"
)

// cliPrincipal generates templates on behalf of the operator.
var cliPrincipal = application.Principal{UserID: "cli", Role: application.RoleAdmin}

func (a *app) generateCmd() *cobra.Command {
	var (
		templateFile string
		noColor      bool
		form         application.TemplateInput
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a generated week on the nine-column grid",
		Long: `Generate a week template from a TOML template file and flag overrides,
then print every day on the display grid. Nothing is stored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noColor {
				color.NoColor = true
			}

			path := templateFile
			if path == "" {
				path = strings.TrimSpace(os.Getenv("TIMETABLE_TEMPLATE_FILE"))
			}
			input, err := config.LoadTemplate(path)
			if err != nil {
				return err
			}
			applyFormFlags(cmd, &input, form)

			service := application.NewTimetableServiceWithLogger(nil, newID, nil, logging.Discard())
			result, err := service.GenerateTemplate(cmd.Context(), application.GenerateTemplateParams{
				Principal: cliPrincipal,
				Input:     input,
			})
			if err != nil {
				return describeGenerateError(err)
			}

			renderWeek(a.stdout, result)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&templateFile, "template", "", "TOML file with template form values")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")
	flags.StringVar(&form.PeriodsPerDay, "periods", "", "teaching periods Monday to Friday")
	flags.StringVar(&form.PeriodsSaturday, "periods-saturday", "", "teaching periods on Saturday")
	flags.StringVar(&form.PeriodDuration, "duration", "", "period length in minutes")
	flags.StringVar(&form.BreakAfterPeriod, "break-after", "", "period the break follows (0 for none)")
	flags.StringVar(&form.BreakAfterPeriodSaturday, "break-after-saturday", "", "Saturday break position when it differs")
	flags.StringVar(&form.WeekdayStartTime, "start", "", "first period start Monday to Friday (HH:MM)")
	flags.StringVar(&form.SaturdayStartTime, "saturday-start", "", "first period start on Saturday (HH:MM)")
	flags.StringVar(&form.LunchStartMonFri, "lunch-start", "", "break start Monday to Friday (HH:MM)")
	flags.StringVar(&form.LunchDurationMonFri, "lunch-duration", "", "break length Monday to Friday in minutes")
	flags.StringVar(&form.LunchStartSat, "lunch-start-saturday", "", "break start on Saturday (HH:MM)")
	flags.StringVar(&form.LunchDurationSat, "lunch-duration-saturday", "", "break length on Saturday in minutes")
	return cmd
}

// applyFormFlags copies explicitly set flags over the loaded template.
func applyFormFlags(cmd *cobra.Command, input *application.TemplateInput, flags application.TemplateInput) {
	overrides := []struct {
		name string
		dst  *string
		src  string
	}{
		{"periods", &input.PeriodsPerDay, flags.PeriodsPerDay},
		{"periods-saturday", &input.PeriodsSaturday, flags.PeriodsSaturday},
		{"duration", &input.PeriodDuration, flags.PeriodDuration},
		{"break-after", &input.BreakAfterPeriod, flags.BreakAfterPeriod},
		{"break-after-saturday", &input.BreakAfterPeriodSaturday, flags.BreakAfterPeriodSaturday},
		{"start", &input.WeekdayStartTime, flags.WeekdayStartTime},
		{"saturday-start", &input.SaturdayStartTime, flags.SaturdayStartTime},
		{"lunch-start", &input.LunchStartMonFri, flags.LunchStartMonFri},
		{"lunch-duration", &input.LunchDurationMonFri, flags.LunchDurationMonFri},
		{"lunch-start-saturday", &input.LunchStartSat, flags.LunchStartSat},
		{"lunch-duration-saturday", &input.LunchDurationSat, flags.LunchDurationSat},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.name) {
			*o.dst = o.src
		}
	}
}

func describeGenerateError(err error) error {
	var vErr *application.ValidationError
	if !errors.As(err, &vErr) || len(vErr.FieldErrors) == 0 {
		return err
	}
	fields := make([]string, 0, len(vErr.FieldErrors))
	for field := range vErr.FieldErrors {
		fields = append(fields, field)
	}
	slices.Sort(fields)
	lines := make([]string, 0, len(fields))
	for _, field := range fields {
		lines = append(lines, fmt.Sprintf("  %s: %s", field, vErr.FieldErrors[field]))
	}
	return fmt.Errorf("invalid template:\n%s", strings.Join(lines, "\n"))
}
