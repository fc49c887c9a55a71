// Package dashboard generates the static index page linking every
// converted file under a project root.
//
// The directory tree is flattened into cards:
//
//	Root                  loose files at the top level, one "View" button each
//	<dir>/<dir>           one card per directory holding elements
//	  element             a files-only subdirectory, one button per file
//	                      labelled by extension: PDF, PNG, PNG2...
//
// The Root card comes first; the others are ordered by element count,
// largest first. Titles and labels show '-' and '_' as spaces.
package dashboard
