package domain

// MinYear is the earliest employment year a review may claim.
const MinYear = 1970

// ValidateEmploymentPeriod checks a candidate review's employment period
// against the declared status. Inputs are raw form values; malformed input
// is classified as a violation, never a panic or decode failure. All
// applicable violations are collected in rule order so a client can show
// every problem at once. An empty result means the period is acceptable
// for persistence.
func ValidateEmploymentPeriod(status string, start, end YearField, currentYear int) []ErrorKind {
	var kinds []ErrorKind

	if start.IsAbsent() {
		kinds = append(kinds, MissingStartYear)
	} else if !yearInRange(start, currentYear) {
		kinds = append(kinds, StartYearOutOfRange)
	}

	if status == EmploymentStatusFormer {
		switch {
		case end.IsAbsent():
			kinds = append(kinds, MissingEndYear)
		case end.IsSentinel():
			// A former employee with a "present" end year has not supplied a
			// concrete year.
			kinds = append(kinds, MissingEndYear)
		case !yearInRange(end, currentYear):
			kinds = append(kinds, EndYearOutOfRange)
		}

		startYear, startOK := start.Int()
		endYear, endOK := end.Int()
		if startOK && endOK && startYear > endYear {
			kinds = append(kinds, StartAfterEnd)
		}
	}

	// For current employees the end year is normalized to the sentinel by the
	// write path, never validated.
	return kinds
}

// NormalizeEndYear applies the write-path normalization: a current
// employee's end year is always the sentinel regardless of client input; a
// former employee's end year passes through unchanged.
func NormalizeEndYear(status string, end YearField) YearField {
	if status == EmploymentStatusCurrent {
		return YearPresent()
	}
	return end
}

// yearInRange reports whether the field holds a concrete year within
// [MinYear, currentYear]. Sentinel and malformed values are out of range.
func yearInRange(f YearField, currentYear int) bool {
	y, ok := f.Int()
	if !ok {
		return false
	}
	return y >= MinYear && y <= currentYear
}
