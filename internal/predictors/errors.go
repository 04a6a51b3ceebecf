package predictors

import "fmt"

// ArtifactLoadError reports a missing or corrupt model artifact. It is fatal
// at startup: the process must refuse to serve diagnoses rather than degrade
// silently.
type ArtifactLoadError struct {
	Path string
	Err  error
}

func (e *ArtifactLoadError) Error() string {
	return fmt.Sprintf("load artifact %s: %v", e.Path, e.Err)
}

func (e *ArtifactLoadError) Unwrap() error {
	return e.Err
}

// ModelUnavailableError is returned by every predict call on a predictor that
// was never successfully loaded. Fabricating a default prediction instead
// would corrupt downstream severity ranking.
type ModelUnavailableError struct {
	Model string
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("model %s is not loaded", e.Model)
}
