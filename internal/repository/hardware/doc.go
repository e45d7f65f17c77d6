// Package hardware persists the hardware configuration log.
//
// The FileRepository stores the record as JSON on disk and swaps new content
// in by rename, so a reader never observes a partially written file.
package hardware
