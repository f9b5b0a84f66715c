package app

import (
	"github.com/yourusername/fileconv-go/internal/domain"
)

// SelectionState holds the chosen files, the chosen target and the targets
// derived from the files. Every method leaves it consistent: the target is
// cleared in the same call that replaces the files.
//
// SelectionState is not safe for concurrent use; the Controller owns it.
type SelectionState struct {
	selection  domain.Selection
	targets    Targets
	targetsErr error
}

// NewSelectionState creates an empty selection state
func NewSelectionState() *SelectionState {
	return &SelectionState{}
}

// SetFiles replaces the files, recomputes the targets and clears the target
func (s *SelectionState) SetFiles(files []domain.SelectedFile) {
	s.selection = domain.Selection{Files: append([]domain.SelectedFile(nil), files...)}
	s.targets = Targets{}
	s.targetsErr = nil

	if len(files) == 0 {
		return
	}
	s.targets, s.targetsErr = TargetsForFiles(s.selection.Files)
}

// SetTargetFormat chooses a target from the current targets
func (s *SelectionState) SetTargetFormat(code string) error {
	code = domain.NormalizeExtension(code)
	if len(s.selection.Files) == 0 {
		return domain.NewError(domain.KindInvalidTarget, "Select files before choosing a format.")
	}
	if !s.targets.Contains(code) {
		return domain.NewError(domain.KindInvalidTarget, "%q is not an available target format.", code)
	}
	s.selection.TargetFormat = code
	return nil
}

// ClearTargetFormat unsets the target
func (s *SelectionState) ClearTargetFormat() {
	s.selection.TargetFormat = ""
}

// Reset empties the state
func (s *SelectionState) Reset() {
	s.selection = domain.Selection{}
	s.targets = Targets{}
	s.targetsErr = nil
}

// IsSubmittable reports whether files are chosen and the target is one of
// the current targets
func (s *SelectionState) IsSubmittable() bool {
	return len(s.selection.Files) > 0 &&
		s.selection.TargetFormat != "" &&
		s.targetsErr == nil &&
		s.targets.Contains(s.selection.TargetFormat)
}

// Selection returns a copy of the current selection
func (s *SelectionState) Selection() domain.Selection {
	sel := s.selection
	sel.Files = append([]domain.SelectedFile(nil), s.selection.Files...)
	return sel
}

// Targets returns the current targets
func (s *SelectionState) Targets() Targets {
	return Targets{
		Entries:  append([]domain.FormatEntry(nil), s.targets.Entries...),
		Degraded: s.targets.Degraded,
	}
}

// Degraded reports whether the targets are the full-catalog fallback
func (s *SelectionState) Degraded() bool {
	return s.targets.Degraded
}

// TargetsErr returns why no target can be chosen, if any
func (s *SelectionState) TargetsErr() error {
	return s.targetsErr
}
