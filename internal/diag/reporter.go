package diag

import "redline/internal/source"

// Reporter — минимальный контракт получения диагностик от производителей.
// Реализации: BagReporter (кладёт в Bag), fan-out и no-op при необходимости.
type Reporter interface {
	Report(d Diagnostic)
}

// ReportBuilder accumulates diagnostic details before emitting to Reporter.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

// NewReportBuilder constructs a builder bound to Reporter.
func NewReportBuilder(r Reporter, sev Severity, msg string) *ReportBuilder {
	return &ReportBuilder{
		reporter: r,
		diag:     New(sev, msg),
	}
}

// ReportError is a shortcut for SevError diagnostics.
func ReportError(r Reporter, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, msg)
}

// ReportWarning is a shortcut for SevWarning diagnostics.
func ReportWarning(r Reporter, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, msg)
}

// ReportNote is a shortcut for SevNote diagnostics.
func ReportNote(r Reporter, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevNote, msg)
}

// WithCode sets the diagnostic code.
func (b *ReportBuilder) WithCode(code string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag.Code = code
	return b
}

// WithLabel appends a primary label.
func (b *ReportBuilder) WithLabel(sp source.Span, msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithLabel(sp, msg)
	return b
}

// WithSecondaryLabel appends a secondary label.
func (b *ReportBuilder) WithSecondaryLabel(sp source.Span, msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithSecondaryLabel(sp, msg)
	return b
}

// WithNote appends a free-text note.
func (b *ReportBuilder) WithNote(note string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithNote(note)
	return b
}

// Emit sends the diagnostic to the underlying reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	if b.reporter != nil {
		b.reporter.Report(b.diag)
	}
	b.emitted = true
}

// Diagnostic returns the accumulated diagnostic without emitting.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.diag
}

// BagReporter — адаптер, который пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}
