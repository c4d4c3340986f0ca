package cli

import "github.com/alecthomas/kong"

// App es la raíz de comandos de medsctl.
type App struct {
	Version kong.VersionFlag

	NextDose    NextDoseCmd    `cmd:"" help:"Show the next dose time for today."`
	Status      StatusCmd      `cmd:"" help:"Show the dose status of every medication for a day."`
	Metrics     MetricsCmd     `cmd:"" help:"Compute adherence metrics from JSON files."`
	Frequencies FrequenciesCmd `cmd:"" help:"List supported frequencies."`
}

// Options comunes para main y tests.
func Options(version string) []kong.Option {
	return []kong.Option{
		kong.Name("medsctl"),
		kong.Description("Offline tools for meds-buddy schedules and adherence"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	}
}
