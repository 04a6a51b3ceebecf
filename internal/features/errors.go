package features

import "fmt"

// SchemaMismatchError signals drift between the compiled-in feature schema and
// the schema a model artifact was trained against. It is never retried: the
// only fix is retraining or redeploying.
type SchemaMismatchError struct {
	Got    string
	Want   string
	Detail string
}

func (e *SchemaMismatchError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("feature schema mismatch: artifact %q vs extractor %q (%s)", e.Got, e.Want, e.Detail)
	}
	return fmt.Sprintf("feature schema mismatch: artifact %q vs extractor %q", e.Got, e.Want)
}

// InvalidReadingError rejects a reading missing identity fields before any
// feature extraction happens.
type InvalidReadingError struct {
	Reason string
}

func (e *InvalidReadingError) Error() string {
	return fmt.Sprintf("invalid sensor reading: %s", e.Reason)
}
