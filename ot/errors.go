package ot

import (
	"errors"
	"fmt"
)

// Error taxonomy. Concrete errors returned from this package are of type FontError
// and match one of these with errors.Is.
var (
	// ErrFormat flags structurally invalid font data: an unknown header tag,
	// truncated or out-of-bounds table data, or arithmetic overflow.
	ErrFormat = errors.New("OpenType font format")
	// ErrMissingTable flags the absence of a table required for a typeface.
	ErrMissingTable = errors.New("OpenType font is missing a required table")
	// ErrCollectionIndex flags a face index outside of a font collection.
	ErrCollectionIndex = fmt.Errorf("%w: collection index out of range", ErrFormat)
)

// ErrorSeverity represents the severity level of a font parsing error.
type ErrorSeverity int

const (
	// SeverityCritical indicates a severe error that makes the font unusable or unreliable.
	SeverityCritical ErrorSeverity = iota
	// SeverityMajor indicates a significant error that may affect functionality but doesn't prevent usage.
	SeverityMajor
	// SeverityMinor indicates a minor issue that can be safely ignored in most cases.
	SeverityMinor
)

// String returns a human-readable representation of the error severity.
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityMajor:
		return "MAJOR"
	case SeverityMinor:
		return "MINOR"
	default:
		return "UNKNOWN"
	}
}

// FontError represents an error encountered during font parsing.
type FontError struct {
	Table    Tag           // The OpenType table where the error occurred (e.g., "cmap", "hmtx")
	Section  string        // Specific section within the table (e.g., "Header", "Subtable")
	Issue    string        // Human-readable description of the issue
	Severity ErrorSeverity // Severity level of the error
	Offset   uint32        // Byte offset in the font file where the error occurred (0 if unknown)
	kind     error         // ErrFormat, ErrMissingTable or ErrCollectionIndex
}

// Error implements the error interface.
func (e FontError) Error() string {
	table := e.Table.String()
	if e.Table == 0 {
		table = "font"
	}
	if e.Offset > 0 {
		return fmt.Sprintf("[%s] %s/%s at offset %d: %s", e.Severity, table, e.Section, e.Offset, e.Issue)
	}
	return fmt.Sprintf("[%s] %s/%s: %s", e.Severity, table, e.Section, e.Issue)
}

// Unwrap returns the error category, making FontError work with errors.Is.
func (e FontError) Unwrap() error {
	if e.kind == nil {
		return ErrFormat
	}
	return e.kind
}

// FontWarning represents a non-critical issue encountered during font parsing.
// Warnings indicate potential problems but do not prevent font usage.
type FontWarning struct {
	Table  Tag    // The OpenType table where the warning occurred
	Issue  string // Human-readable description of the warning
	Offset uint32 // Byte offset in the font file where the warning occurred (0 if unknown)
}

// String returns a human-readable representation of the warning.
func (w FontWarning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("[WARNING] %s at offset %d: %s", w.Table, w.Offset, w.Issue)
	}
	return fmt.Sprintf("[WARNING] %s: %s", w.Table, w.Issue)
}

// MissingTable creates an error for a required table which is absent or could not
// be interpreted. cause may be nil.
func MissingTable(tag Tag, cause error) error {
	issue := "missing required table"
	if cause != nil {
		issue = fmt.Sprintf("required table unusable: %v", cause)
	}
	return FontError{
		Table:    tag,
		Section:  "Directory",
		Issue:    issue,
		Severity: SeverityCritical,
		kind:     ErrMissingTable,
	}
}

// errFontFormat produces user level errors for font parsing.
func errFontFormat(message string) error {
	return fmt.Errorf("%w: %s", ErrFormat, message)
}

// errorCollector accumulates errors and warnings during font parsing.
// This is an internal helper used by the parser to collect issues as they are discovered.
type errorCollector struct {
	errors   []FontError
	warnings []FontWarning
}

// addError records a parsing error.
func (ec *errorCollector) addError(table Tag, section string, issue string, severity ErrorSeverity, offset uint32) {
	ec.errors = append(ec.errors, FontError{
		Table:    table,
		Section:  section,
		Issue:    issue,
		Severity: severity,
		Offset:   offset,
		kind:     ErrFormat,
	})
}

// fail records a critical format error and returns it.
func (ec *errorCollector) fail(table Tag, section string, issue string, offset uint32) error {
	ec.addError(table, section, issue, SeverityCritical, offset)
	return ec.errors[len(ec.errors)-1]
}

// addWarning records a parsing warning.
func (ec *errorCollector) addWarning(table Tag, issue string, offset uint32) {
	ec.warnings = append(ec.warnings, FontWarning{
		Table:  table,
		Issue:  issue,
		Offset: offset,
	})
}

// hasErrors returns true if any errors have been recorded.
func (ec *errorCollector) hasErrors() bool {
	return len(ec.errors) > 0
}

// hasWarnings returns true if any warnings have been recorded.
func (ec *errorCollector) hasWarnings() bool {
	return len(ec.warnings) > 0
}

// tolerate lowers the severity of the errors recorded for table tag, after the
// table has been kept as an uninterpreted table. Failures of tables required
// for every OpenType font become SeverityMajor, all others SeverityMinor.
// It returns err with the lowered severity.
func (ec *errorCollector) tolerate(tag Tag, err error) error {
	severity := SeverityMinor
	if isRequiredTable(tag) {
		severity = SeverityMajor
	}
	for i := range ec.errors {
		if ec.errors[i].Table == tag && ec.errors[i].Severity < severity {
			ec.errors[i].Severity = severity
		}
	}
	var fe FontError
	if errors.As(err, &fe) && fe.Severity < severity {
		fe.Severity = severity
		return fe
	}
	return err
}

// requiredTables lists the tables required in every OpenType font, except
// 'post', which is not interpreted.
var requiredTables = [...]Tag{
	T("cmap"), T("head"), T("hhea"), T("hmtx"), T("maxp"), T("name"), T("OS/2"),
}

func isRequiredTable(tag Tag) bool {
	for _, t := range requiredTables {
		if t == tag {
			return true
		}
	}
	return false
}

// errorsOf selects the errors of a given severity.
func errorsOf(errs []FontError, severity ErrorSeverity) []FontError {
	var selected []FontError
	for _, e := range errs {
		if e.Severity == severity {
			selected = append(selected, e)
		}
	}
	return selected
}
