package app

import (
	"github.com/samber/lo"
	"github.com/yourusername/fileconv-go/internal/domain"
)

// Targets is the resolver output for a selection
type Targets struct {
	// Entries holds selectable formats with their group headers interleaved
	Entries []domain.FormatEntry `json:"entries"`
	// Degraded is set when a mixed selection falls back to the whole catalog
	Degraded bool `json:"degraded"`
}

// Selectable returns the entries that can actually be chosen
func (t Targets) Selectable() []domain.FormatEntry {
	return lo.Filter(t.Entries, func(e domain.FormatEntry, _ int) bool { return !e.IsHeader() })
}

// Contains checks if code is a selectable target
func (t Targets) Contains(code string) bool {
	code = domain.NormalizeExtension(code)
	return lo.ContainsBy(t.Entries, func(e domain.FormatEntry) bool {
		return !e.IsHeader() && e.Code == code
	})
}

// allowed decides whether entry e is a legal target for the source
func allowed(e domain.FormatEntry, source domain.Category, sourceExt string) bool {
	if e.Category == source && e.Code != sourceExt {
		return true
	}
	switch source {
	case domain.CategoryImage:
		return e.Code == "pdf"
	case domain.CategoryDocument:
		return e.Category == domain.CategoryImage
	default:
		// audio and video never cross
		return false
	}
}

// CompatibleTargets returns the legal targets for a source category in
// catalog order. A group header is emitted only ahead of a group that has
// at least one included entry. sourceExtension may be empty.
func CompatibleTargets(source domain.Category, sourceExtension string) ([]domain.FormatEntry, error) {
	if !domain.ValidCategory(source) {
		return nil, domain.NewError(domain.KindNoCompatibleTargets,
			"No compatible formats available for this file type.")
	}
	sourceExtension = domain.NormalizeExtension(sourceExtension)

	var (
		result  []domain.FormatEntry
		pending *domain.FormatEntry
	)
	for _, e := range domain.ListEntries() {
		if e.IsHeader() {
			header := e
			pending = &header
			continue
		}
		if !allowed(e, source, sourceExtension) {
			continue
		}
		if pending != nil {
			result = append(result, *pending)
			pending = nil
		}
		result = append(result, e)
	}

	if len(result) == 0 {
		return nil, domain.NewError(domain.KindNoCompatibleTargets,
			"No compatible formats available for this file type.")
	}
	return result, nil
}

// FullCatalog is the degraded-mode target list used for mixed selections
func FullCatalog() Targets {
	return Targets{Entries: domain.ListEntries(), Degraded: true}
}

// TargetsForFiles resolves targets for a validated selection. A homogeneous
// selection uses CompatibleTargets; the shared extension is excluded only
// when every file has the same one. A mixed selection gets the full catalog.
func TargetsForFiles(files []domain.SelectedFile) (Targets, error) {
	if len(files) == 0 {
		return Targets{}, domain.NewError(domain.KindNoFilesSelected, "Please select at least one file.")
	}

	sel := domain.Selection{Files: files}
	category, ok := sel.SourceCategory()
	if !ok {
		if lo.EveryBy(files, func(f domain.SelectedFile) bool {
			_, known := f.Category()
			return known
		}) {
			return FullCatalog(), nil
		}
		return Targets{}, domain.NewError(domain.KindIncompatibleFileSet, "Unsupported file type.")
	}

	entries, err := CompatibleTargets(category, sel.SourceExtension())
	if err != nil {
		return Targets{}, err
	}
	return Targets{Entries: entries}, nil
}
