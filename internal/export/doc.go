// Package export turns confirmed batch results into downloadable documents.
//
// ToTable flattens outcomes into one row per successful image using the
// effective template (human override first) and counts the failed images it
// left out. Coordinator.Document renders that table, or the per-image text
// report, through a format-specific renderer and names the file
// <prefix>_<YYYYMMDD_HHMMSS>.<ext>.
package export
