package app

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/yourusername/fileconv-go/internal/domain"
)

// Validator checks a raw file pick against the configured limits and
// classifies every file by extension. It holds no state between calls.
type Validator struct {
	limits domain.LimitsConfig
}

// NewValidator creates a new validator
func NewValidator(limits domain.LimitsConfig) *Validator {
	if limits.MaxFiles < 1 {
		limits.MaxFiles = domain.DefaultMaxFiles
	}
	if limits.MaxTotalSize < 1 {
		limits.MaxTotalSize = domain.DefaultMaxTotalSize
	}
	if limits.TooManyPolicy == "" {
		limits.TooManyPolicy = domain.TooManyTruncate
	}
	if limits.MixedPolicy == "" {
		limits.MixedPolicy = domain.MixedStrict
	}
	return &Validator{limits: limits}
}

// Limits returns the effective limits
func (v *Validator) Limits() domain.LimitsConfig {
	return v.limits
}

// Truncated reports whether Validate would drop files from this pick
func (v *Validator) Truncated(raw []domain.RawFile) bool {
	return v.limits.TooManyPolicy == domain.TooManyTruncate && len(raw) > v.limits.MaxFiles
}

// Validate turns a raw file pick into a Selection with no target format.
// Rules run in order: count, aggregate size, homogeneity.
func (v *Validator) Validate(raw []domain.RawFile) (domain.Selection, error) {
	if len(raw) == 0 {
		return domain.Selection{}, domain.NewError(domain.KindNoFilesSelected, "Please select at least one file.")
	}

	if len(raw) > v.limits.MaxFiles {
		if v.limits.TooManyPolicy == domain.TooManyReject {
			return domain.Selection{}, domain.NewError(domain.KindTooManyFiles,
				"Too many files: %d selected, at most %d allowed.", len(raw), v.limits.MaxFiles)
		}
		raw = raw[:v.limits.MaxFiles]
	}

	files := lo.Map(raw, func(r domain.RawFile, _ int) domain.SelectedFile {
		return domain.NewSelectedFile(r)
	})

	total := lo.SumBy(files, func(f domain.SelectedFile) int64 { return f.SizeBytes })
	if total > v.limits.MaxTotalSize {
		return domain.Selection{}, domain.NewError(domain.KindSizeLimitExceeded,
			"Total size %s exceeds the %s limit.",
			humanize.IBytes(uint64(total)), humanize.IBytes(uint64(v.limits.MaxTotalSize)))
	}

	unknown := lo.Filter(files, func(f domain.SelectedFile, _ int) bool {
		_, ok := f.Category()
		return !ok
	})
	if len(unknown) > 0 {
		names := lo.Map(unknown, func(f domain.SelectedFile, _ int) string { return f.Name })
		return domain.Selection{}, domain.NewError(domain.KindIncompatibleFileSet,
			"Unsupported file type: %s", strings.Join(names, ", "))
	}

	categories := lo.Uniq(lo.Map(files, func(f domain.SelectedFile, _ int) domain.Category {
		c, _ := f.Category()
		return c
	}))
	if len(categories) > 1 && v.limits.MixedPolicy == domain.MixedStrict {
		return domain.Selection{}, domain.NewError(domain.KindIncompatibleFileSet,
			"All files must be of the same type (found %s).", joinCategories(categories))
	}

	return domain.Selection{Files: files}, nil
}

func joinCategories(categories []domain.Category) string {
	return strings.Join(lo.Map(categories, func(c domain.Category, _ int) string {
		return string(c)
	}), ", ")
}
