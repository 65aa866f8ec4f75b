package contexts

import "errors"

// ErrExtractionFailed wraps transport and status failures of the context extractor.
var ErrExtractionFailed = errors.New("context extraction failed")
