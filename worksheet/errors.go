package worksheet

import "errors"

// Sentinel errors
var (
	ErrUnsupportedFormat  = errors.New("unsupported worksheet format")
	ErrInvalidFrontMatter = errors.New("invalid front matter")
	ErrInvalidVariable    = errors.New("invalid variable definition")
	ErrNoExpressions      = errors.New("worksheet has no expressions")
)
