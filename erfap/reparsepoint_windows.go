//go:build windows

package erfap

// platformDirectoryReparsePointAsFileSupported is true on platforms that have
// reparse points at all; it gates the extra clauses of
// shouldTreatDirectoryReparsePointAsFile (see SPEC_FULL.md §4.2).
const platformDirectoryReparsePointAsFileSupported = true
