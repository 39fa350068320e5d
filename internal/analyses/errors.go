package analyses

import "errors"

// errSectionPanic marks a rule that failed while extracting; Parse falls back.
var errSectionPanic = errors.New("section rule failed")
