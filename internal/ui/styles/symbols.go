package styles

// Status is the outcome of one item in a batch operation.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
	StatusPlanned Status = "planned"
)

var statusSymbols = map[Status]string{
	StatusOK:      "✓",
	StatusSkipped: "-",
	StatusFailed:  "✗",
	StatusPlanned: "○",
}

// Symbol returns the plain glyph for s, or "?" for unknown statuses.
func (s Status) Symbol() string {
	if sym, ok := statusSymbols[s]; ok {
		return sym
	}
	return "?"
}

// FormatStatus returns the colored glyph for s.
func FormatStatus(s Status) string {
	sym := s.Symbol()
	switch s {
	case StatusOK:
		return SuccessStyle.Render(sym)
	case StatusFailed:
		return ErrorStyle.Render(sym)
	case StatusPlanned:
		return PrimaryStyle.Render(sym)
	default:
		return MutedStyle.Render(sym)
	}
}

// WarningMark returns the colored marker used in front of warnings.
func WarningMark() string {
	return WarningStyle.Render("!")
}
