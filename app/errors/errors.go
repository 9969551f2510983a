package errors

import (
	"errors"
	"log/slog"
	"sort"
)

// Log logs an error with the given logger, extracting metadata if it's a
// StructuredError. The cause is logged first and the hint, if any, last.
func Log(logger *slog.Logger, err error) {
	var serr *StructuredError
	if !errors.As(err, &serr) {
		logger.Error(err.Error())
		return
	}

	args := make([]any, 0, len(serr.metadata)*2+2)

	cause := serr.metadata["cause"]
	if serr.cause != nil {
		cause = serr.cause
	}
	if cause != nil {
		args = append(args, "cause", cause)
	}

	keys := make([]string, 0, len(serr.metadata))
	for k := range serr.metadata {
		if k != "cause" && k != "hint" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		args = append(args, k, serr.metadata[k])
	}
	if hint, ok := serr.metadata["hint"]; ok {
		args = append(args, "hint", hint)
	}

	logger.Error(serr.Message(), args...)
}
