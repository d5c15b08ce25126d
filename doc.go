// Package bookforge turns a directory of Markdown documents into a static
// HTML site or a PDF book.
//
// # Quick Start
//
//	svc, err := bookforge.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer svc.Close()
//
//	path, err := svc.Generate(ctx, bookforge.Request{
//	    Format: bookforge.FormatHTML,
//	    Input:  "./docs",
//	    Output: "./dist/html",
//	    Title:  "Handbook",
//	})
//
// # Document Order
//
// When the input directory holds README.md, SUMMARY.md or index.md (probed
// in that order), its Markdown list links decide which documents are
// included and in what order. Otherwise the directory is scanned
// recursively in name order, skipping directories whose name contains an
// ignore pattern (node_modules, .git, dist, build by default).
//
// Each document's title is its first level-1 heading, falling back to its
// first heading of any level, then "Untitled". A document that cannot be
// read is logged and skipped; the rest of the book is still produced.
//
// # Outputs
//
// HTML output is index.html (the first document), one page per document
// named after its slugged title, styles.css and script.js. PDF output is a
// single <slug(title)>.pdf with a cover, a chapter list and one chapter per
// document. Relative images are copied into the output directory.
//
// # Configuration
//
//	svc, err := bookforge.New(
//	    bookforge.WithEncoding("latin1"),
//	    bookforge.WithIgnorePatterns([]string{"drafts"}),
//	    bookforge.WithHighlightStyle("dracula"),
//	    bookforge.WithPDFOptions(bookforge.PDFOptions{PageSize: "letter", NoPageNumbers: true}),
//	    bookforge.WithAssetPath("/path/to/custom/assets"),
//	)
//
// # Browser Requirements
//
// PDF generation requires Chrome/Chromium. go-rod downloads a managed
// Chromium on first run (~/.cache/rod/browser/). In containers and CI set
// ROD_NO_SANDBOX=1; set ROD_BROWSER_BIN to use an installed binary.
package bookforge
