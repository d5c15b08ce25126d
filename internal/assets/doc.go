// Package assets provides the HTML templates, stylesheets and scripts used
// to render a book. Assets can be loaded from embedded files or a custom
// directory.
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	Loader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in assets)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── Resolver          - combines both with custom-first fallback
//
// Resolver is the loader handed to the template service. It tries the
// custom FilesystemLoader first, falling back to EmbeddedLoader if the asset
// is not found. This enables overriding a single stylesheet or template set
// while keeping the other defaults.
//
// # Directory Structure
//
// Assets are organized by type:
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css           # site.css (HTML), book.css (PDF)
//	├── scripts/
//	│   └── {name}.js            # site.js (HTML)
//	└── templates/
//	    ├── html/
//	    │   ├── page.html        # One page of the site
//	    │   ├── sidebar.html     # Navigation between documents
//	    │   └── toc.html         # In-page table of contents
//	    └── pdf/
//	        ├── book.html        # Whole book document
//	        ├── toc.html         # Chapter table of contents
//	        └── chapter.html     # One chapter section
//
// A custom template set must provide every file of its set.
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
