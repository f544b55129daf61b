package worker

import "errors"

var errMissingArtifact = errors.New("generation finished without a stored artifact")
