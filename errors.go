package bookforge

import (
	"errors"

	"github.com/alnah/bookforge/internal/assets"
	"github.com/alnah/bookforge/internal/document"
	"github.com/alnah/bookforge/internal/generator"
	"github.com/alnah/bookforge/internal/markdown"
	"github.com/alnah/bookforge/internal/tree"
)

// Sentinel errors for request validation.
var (
	ErrEmptyInput    = errors.New("input directory cannot be empty")
	ErrEmptyOutput   = errors.New("output directory cannot be empty")
	ErrInvalidFormat = errors.New("invalid output format")
)

// Errors surfaced from the build and render stages, re-exported so callers
// can match them with errors.Is without importing internal packages.
var (
	// Loading.
	ErrRead            = document.ErrRead
	ErrDecode          = document.ErrDecode
	ErrUnknownEncoding = document.ErrUnknownEncoding
	ErrEntryFile       = tree.ErrEntryFile
	ErrInvalidWorkers  = tree.ErrInvalidWorkers

	// Rendering.
	ErrConversion        = markdown.ErrConversion
	ErrUnknownStyle      = markdown.ErrUnknownStyle
	ErrRender            = generator.ErrRender
	ErrWriteOutput       = generator.ErrWriteOutput
	ErrInvalidPDFOptions = generator.ErrInvalidPDFOptions

	// Browser.
	ErrBrowserConnect = generator.ErrBrowserConnect
	ErrPageCreate     = generator.ErrPageCreate
	ErrPageLoad       = generator.ErrPageLoad
	ErrPDFGeneration  = generator.ErrPDFGeneration

	// Assets.
	ErrStyleNotFound         = assets.ErrStyleNotFound
	ErrTemplateSetNotFound   = assets.ErrTemplateSetNotFound
	ErrIncompleteTemplateSet = assets.ErrIncompleteTemplateSet
	ErrInvalidAssetPath      = assets.ErrInvalidBasePath
)
