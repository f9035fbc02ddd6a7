package validation

// Result contains the overall validation result.
type Result struct {
	IsCodecCorrect      bool
	IsDimensionsCorrect bool
	IsDurationCorrect   bool
	IsAudioCorrect      bool

	CodecName          string
	CodecMessage       string
	ActualDimensions   *[2]int
	ExpectedDimensions *[2]int
	DimensionsMessage  string
	ActualDuration     *float64
	ExpectedDuration   *float64
	DurationMessage    string
	AudioCodecs        []string
	AudioMessage       string
}

// ValidationStep represents a single validation check.
type ValidationStep struct {
	Name    string
	Passed  bool
	Details string
}

// IsValid returns true if all validation checks passed.
func (r *Result) IsValid() bool {
	return r.IsCodecCorrect &&
		r.IsDimensionsCorrect &&
		r.IsDurationCorrect &&
		r.IsAudioCorrect
}

// GetValidationSteps returns all validation steps with results.
func (r *Result) GetValidationSteps() []ValidationStep {
	return []ValidationStep{
		{
			Name:    "Video codec",
			Passed:  r.IsCodecCorrect,
			Details: r.CodecMessage,
		},
		{
			Name:    "Dimensions",
			Passed:  r.IsDimensionsCorrect,
			Details: r.DimensionsMessage,
		},
		{
			Name:    "Duration",
			Passed:  r.IsDurationCorrect,
			Details: r.DurationMessage,
		},
		{
			Name:    "Audio",
			Passed:  r.IsAudioCorrect,
			Details: r.AudioMessage,
		},
	}
}

// GetFailures returns descriptions of failed validation checks.
func (r *Result) GetFailures() []string {
	var failures []string
	for _, step := range r.GetValidationSteps() {
		if !step.Passed {
			failures = append(failures, step.Name+": "+step.Details)
		}
	}
	return failures
}
