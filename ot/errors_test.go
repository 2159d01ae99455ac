package ot

import (
	"errors"
	"testing"
)

// TestErrorSeverity verifies the ErrorSeverity String() method.
func TestErrorSeverity(t *testing.T) {
	tests := []struct {
		severity ErrorSeverity
		expected string
	}{
		{SeverityCritical, "CRITICAL"},
		{SeverityMajor, "MAJOR"},
		{SeverityMinor, "MINOR"},
		{ErrorSeverity(999), "UNKNOWN"},
	}

	for _, tt := range tests {
		result := tt.severity.String()
		if result != tt.expected {
			t.Errorf("ErrorSeverity(%d).String() = %q; want %q", tt.severity, result, tt.expected)
		}
	}
}

// TestFontError verifies FontError formatting.
func TestFontError(t *testing.T) {
	tests := []struct {
		name     string
		err      FontError
		expected string
	}{
		{
			name: "Error with offset",
			err: FontError{
				Table:    T("cmap"),
				Section:  "Header",
				Issue:    "cmap header truncated",
				Severity: SeverityCritical,
				Offset:   1234,
			},
			expected: "[CRITICAL] cmap/Header at offset 1234: cmap header truncated",
		},
		{
			name: "Error without offset",
			err: FontError{
				Table:    T("GPOS"),
				Section:  "LookupList",
				Issue:    "Invalid format",
				Severity: SeverityMajor,
			},
			expected: "[MAJOR] GPOS/LookupList: Invalid format",
		},
		{
			name: "Error without table",
			err: FontError{
				Section:  "Header",
				Issue:    "font too small",
				Severity: SeverityCritical,
			},
			expected: "[CRITICAL] font/Header: font too small",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.err.Error()
			if result != tt.expected {
				t.Errorf("FontError.Error() = %q; want %q", result, tt.expected)
			}
		})
	}
}

// TestFontErrorKinds verifies matching of FontError values with errors.Is.
func TestFontErrorKinds(t *testing.T) {
	var err error = FontError{Table: T("kern"), Section: "Bounds", Severity: SeverityCritical}
	if !errors.Is(err, ErrFormat) {
		t.Errorf("expected plain FontError to be a format error")
	}
	err = MissingTable(T("head"), nil)
	if !errors.Is(err, ErrMissingTable) || errors.Is(err, ErrFormat) {
		t.Errorf("expected missing table error, got %v", err)
	}
	var fe FontError
	if !errors.As(err, &fe) || fe.Table != T("head") {
		t.Errorf("expected FontError for table head, got %#v", err)
	}
	err = MissingTable(T("hhea"), errFontFormat("hhea table too small"))
	if !errors.Is(err, ErrMissingTable) {
		t.Errorf("expected missing table error for unusable table, got %v", err)
	}
	if !errors.Is(ErrCollectionIndex, ErrFormat) {
		t.Errorf("expected collection index error to be a format error")
	}
	if !errors.Is(errFontFormat("x"), ErrFormat) {
		t.Errorf("expected errFontFormat to wrap ErrFormat")
	}
}

// TestFontWarning verifies FontWarning formatting.
func TestFontWarning(t *testing.T) {
	tests := []struct {
		name     string
		warning  FontWarning
		expected string
	}{
		{
			name: "Warning with offset",
			warning: FontWarning{
				Table:  T("kern"),
				Issue:  "Table size mismatch",
				Offset: 5678,
			},
			expected: "[WARNING] kern at offset 5678: Table size mismatch",
		},
		{
			name: "Warning without offset",
			warning: FontWarning{
				Table: T("name"),
				Issue: "string of name record 3 out of bounds",
			},
			expected: "[WARNING] name: string of name record 3 out of bounds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.warning.String()
			if result != tt.expected {
				t.Errorf("FontWarning.String() = %q; want %q", result, tt.expected)
			}
		})
	}
}

// TestErrorCollector verifies the errorCollector helper type.
func TestErrorCollector(t *testing.T) {
	ec := &errorCollector{}

	if ec.hasErrors() || ec.hasWarnings() {
		t.Error("errorCollector should be empty initially")
	}

	ec.addError(T("OS/2"), "Test", "Minor issue", SeverityMinor, 100)
	if !ec.hasErrors() {
		t.Error("errorCollector should have errors after adding one")
	}
	if len(errorsOf(ec.errors, SeverityCritical)) != 0 {
		t.Error("errorCollector should not have critical errors yet")
	}

	err := ec.fail(T("hmtx"), "Size", "Critical issue", 200)
	if !errors.Is(err, ErrFormat) {
		t.Errorf("fail() should return a format error, got %v", err)
	}
	if len(ec.errors) != 2 {
		t.Errorf("errorCollector should have 2 errors; got %d", len(ec.errors))
	}

	if n := len(errorsOf(ec.errors, SeverityCritical)); n != 1 {
		t.Errorf("errorCollector should have 1 critical error; got %d", n)
	}
	err = ec.tolerate(T("hmtx"), err)
	var fe FontError
	if !errors.As(err, &fe) || fe.Severity != SeverityMajor {
		t.Errorf("expected tolerated hmtx error to be major, got %v", err)
	}
	if len(errorsOf(ec.errors, SeverityCritical)) != 0 || len(errorsOf(ec.errors, SeverityMajor)) != 1 {
		t.Errorf("expected collected hmtx error to be downgraded to major")
	}
	ec.fail(T("GPOS"), "Header", "GPOS header truncated", 300)
	ec.tolerate(T("GPOS"), nil)
	if minor := errorsOf(ec.errors, SeverityMinor); len(minor) != 2 || minor[1].Table != T("GPOS") {
		t.Errorf("expected tolerated GPOS error to be minor, have %v", minor)
	}

	ec.addWarning(T("kern"), "Warning issue", 400)
	if !ec.hasWarnings() || len(ec.warnings) != 1 {
		t.Errorf("errorCollector should have 1 warning; got %d", len(ec.warnings))
	}
}

// TestFontErrorMethods verifies Font error inspection methods.
func TestFontErrorMethods(t *testing.T) {
	font := &Font{
		parseErrors: []FontError{
			{Table: T("kern"), Section: "Bounds", Issue: "Critical issue", Severity: SeverityCritical},
		},
		parseWarnings: []FontWarning{
			{Table: T("cmap"), Issue: "Warning issue", Offset: 400},
		},
		tableErrors: map[Tag]error{},
	}
	font.tableErrors[T("kern")] = font.parseErrors[0]

	if len(font.Errors()) != 1 {
		t.Errorf("Font.Errors() should return 1 error; got %d", len(font.Errors()))
	}
	if len(font.Warnings()) != 1 {
		t.Errorf("Font.Warnings() should return 1 warning; got %d", len(font.Warnings()))
	}
	if font.TableError(T("kern")) == nil || font.TableError(T("GPOS")) != nil {
		t.Error("Font.TableError() should report the error for kern only")
	}

	emptyFont := &Font{}
	if len(emptyFont.Errors()) != 0 || len(emptyFont.Warnings()) != 0 {
		t.Error("Empty font should return no errors or warnings")
	}
	if emptyFont.TableError(T("kern")) != nil {
		t.Error("Empty font should not report table errors")
	}
}
