package dateparse

// FormatReadable renders a canonical date in long human-readable form,
// e.g. "September 1, 2026".
func FormatReadable(v *TemporalValue) string {
	if v == nil {
		return ""
	}
	return v.Start.Format("January 2, 2006")
}

// FormatRange renders the whole temporal value: the literal "Ongoing" for
// open-ended values, "<start> – <end>" for ranges, a single readable date
// for points.
func FormatRange(v *TemporalValue) string {
	if v == nil {
		return ""
	}
	if v.Ongoing {
		return "Ongoing"
	}
	if v.End != nil {
		return v.Start.Format("January 2, 2006") + " – " + v.End.Format("January 2, 2006")
	}
	return v.Start.Format("January 2, 2006")
}
