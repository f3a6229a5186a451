package common

import "log"

// Warnf logs a non-fatal decode warning, tagged with the job id that
// produced it so concurrent decodes' warnings can be told apart in a
// shared log stream. This mirrors the plain stdlib log.Fatalf/log.Printf
// calls the reference examples use; nothing in the retrieval pack reaches
// for a structured-logging library, so this package doesn't either.
func Warnf(jobID string, format string, args ...any) {
	log.Printf("[%s] WARN "+format, append([]any{jobID}, args...)...)
}
