package schedule

import "strings"

type Frequency string

const (
	FrequencyOnceDaily       Frequency = "once_daily"
	FrequencyTwiceDaily      Frequency = "twice_daily"
	FrequencyThreeTimesDaily Frequency = "three_times_daily"
	FrequencyFourTimesDaily  Frequency = "four_times_daily"
	FrequencyEveryOtherDay   Frequency = "every_other_day"
	FrequencyWeekly          Frequency = "weekly"
	FrequencyAsNeeded        Frequency = "as_needed"
)

type rule struct {
	doses   int
	offsets []int // horas desde scheduled_time, por índice de toma
	label   string
}

// Única tabla de frecuencias. Agregar una frecuencia nueva es agregar una fila acá.
var rules = map[Frequency]rule{
	FrequencyOnceDaily:       {doses: 1, offsets: []int{0}, label: "Once daily"},
	FrequencyTwiceDaily:      {doses: 2, offsets: []int{0, 12}, label: "Twice daily"},
	FrequencyThreeTimesDaily: {doses: 3, offsets: []int{0, 8, 16}, label: "Three times daily"},
	FrequencyFourTimesDaily:  {doses: 4, offsets: []int{0, 6, 12, 18}, label: "Four times daily"},
	FrequencyEveryOtherDay:   {doses: 1, offsets: []int{0}, label: "Every other day"},
	FrequencyWeekly:          {doses: 1, offsets: []int{0}, label: "Weekly"},
	FrequencyAsNeeded:        {doses: 1, offsets: []int{0}, label: "As needed"},
}

// Frecuencias desconocidas se tratan como una toma diaria.
var defaultRule = rule{doses: 1, offsets: []int{0}}

var ordered = []Frequency{
	FrequencyOnceDaily,
	FrequencyTwiceDaily,
	FrequencyThreeTimesDaily,
	FrequencyFourTimesDaily,
	FrequencyEveryOtherDay,
	FrequencyWeekly,
	FrequencyAsNeeded,
}

func lookup(f Frequency) rule {
	if r, ok := rules[f]; ok {
		return r
	}
	return defaultRule
}

// Frequencies lista los valores conocidos en orden de presentación.
func Frequencies() []Frequency {
	out := make([]Frequency, len(ordered))
	copy(out, ordered)
	return out
}

// RequiredDosesPerDay es total: cualquier valor devuelve >= 1.
func RequiredDosesPerDay(f Frequency) int {
	return lookup(f).doses
}

// ParseFrequency es la variante estricta: rechaza valores fuera del enum.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.TrimSpace(s))
	if _, ok := rules[f]; !ok {
		return "", &InvalidInputError{Field: "frequency", Value: s}
	}
	return f, nil
}

// Label devuelve el texto para UI; para valores desconocidos, el valor crudo.
func Label(f Frequency) string {
	if r, ok := rules[f]; ok {
		return r.label
	}
	return string(f)
}
