// Package html2png turns folders of HTML design documents into PDFs and
// cropped PNG page images.
//
// # Quick Start
//
// Locate the documents of a folder, then run them through a Driver built
// for the folder's profile:
//
//	profile := html2png.ConversionProfile{
//	    Name: "Wireframes",
//	    Layout: html2png.PageLayout{
//	        Format:          "letter",
//	        PrintBackground: true,
//	        Scale:           0.8,
//	        Margin:          html2png.Margins{Top: "0.5in"},
//	    },
//	    DPI:  600,
//	    Crop: true,
//	}
//
//	docs, err := html2png.Locate("docs/Wireframes", html2png.DefaultIgnoreSet())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	driver := html2png.NewDriver(profile,
//	    html2png.RodEngineFactory(html2png.EngineOptions{}),
//	    html2png.NewRasterizer(),
//	    html2png.NewCropper(),
//	)
//	summary := driver.Run(ctx, docs)
//	fmt.Printf("%d converted, %d failed\n", summary.Succeeded, summary.Failed)
//
// # Conversion Pipeline
//
// Each document goes through these stages:
//
//  1. Render: headless Chrome (go-rod) loads the file and prints it to
//     <name>.pdf next to the source, using the profile's page layout.
//  2. Wait: the PDF is polled until it exists and is non-empty.
//  3. Rasterize: pdftocairo writes <name>-N.png for every page at the
//     profile's DPI. Transient failures are retried.
//  4. Crop: when the profile asks for it, uniform borders are trimmed from
//     each page in place.
//  5. Cleanup: leftover temporary files matching the document are removed.
//
// A failure stops only the document it happened to. ConversionResult
// records the stage that failed and the stages that completed.
//
// # Sessions
//
// Driver.Run opens one browser for a batch and closes it afterwards.
// Long-running callers such as Watcher use Driver.Start to keep a Session
// open and process documents one at a time.
//
// # Error Handling
//
// Errors wrap sentinel values that can be checked with errors.Is:
//
//	if errors.Is(err, html2png.ErrBrowserConnect) {
//	    // Chrome could not be started
//	}
//	if errors.Is(err, html2png.ErrRasterizerNotFound) {
//	    // pdftocairo is not installed
//	}
//
// Command failures from the rasterizer carry stderr in *CommandError.
package html2png
