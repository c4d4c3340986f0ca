package schedule

// IsComplete indica si con takenCount tomas confirmadas el día ya está completo.
func IsComplete(f Frequency, takenCount int) bool {
	return takenCount >= RequiredDosesPerDay(f)
}

// NextDoseTime calcula la próxima toma esperada del día.
// ok == false significa día completo (no hay próxima toma).
//
// Sólo importa la cantidad de takenTimes, no su contenido ni su orden: la toma
// n-ésima cae en scheduled + offsets[n] horas, con wrap a 24h.
func NextDoseTime(scheduled string, f Frequency, takenTimes []string) (string, bool, error) {
	base, err := ParseClock(scheduled)
	if err != nil {
		return "", false, &InvalidInputError{Field: "scheduled_time", Value: scheduled, Err: err}
	}

	n := len(takenTimes)
	if IsComplete(f, n) {
		return "", false, nil
	}

	r := lookup(f)
	if n >= len(r.offsets) {
		return "", false, nil
	}

	return base.Add(r.offsets[n]).String(), true, nil
}
