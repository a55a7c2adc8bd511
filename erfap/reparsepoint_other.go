//go:build !windows

package erfap

// platformDirectoryReparsePointAsFileSupported is false on platforms without
// reparse points; shouldTreatDirectoryReparsePointAsFile always reports false
// there, so isDirectoryLocation reduces to "handle is a directory" (see
// SPEC_FULL.md §4.2).
const platformDirectoryReparsePointAsFileSupported = false
