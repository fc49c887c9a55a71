package main

import (
	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	root    string
	quiet   bool
	verbose bool
	noColor bool
}

// convertFlags holds flags for the convert command.
type convertFlags struct {
	folder string
}

// watchFlags holds flags for the watch command.
type watchFlags struct {
	folder   string
	debounce string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVarP(&f.root, "root", "r", "", "project root (default: config root)")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show warnings and errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug output")
	fs.BoolVar(&f.noColor, "no-color", false, "disable colored output")
}

// addFolderFlag adds the non-interactive folder selection flag.
func addFolderFlag(fs *flag.FlagSet, folder *string) {
	fs.StringVarP(folder, "folder", "f", "", "folder to convert (skips the prompt)")
}

// addConvertFlags adds convert flags to a FlagSet.
func addConvertFlags(fs *flag.FlagSet, f *convertFlags) {
	addFolderFlag(fs, &f.folder)
}

// addWatchFlags adds watch flags to a FlagSet.
func addWatchFlags(fs *flag.FlagSet, f *watchFlags) {
	addFolderFlag(fs, &f.folder)
	fs.StringVar(&f.debounce, "debounce", "", "quiet period before converting a changed file (e.g. 500ms)")
}
