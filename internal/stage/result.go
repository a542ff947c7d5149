// Package stage defines the outcome value every pipeline stage reports back
// to the orchestrator, plus the stable error codes surfaced to callers.
package stage

// Artifact tags which kind of output a stage result refers to.
type Artifact string

const (
	ArtifactSegment Artifact = "segment"
	ArtifactVideo   Artifact = "video"
	ArtifactImage   Artifact = "image"
)

// Stable error codes for known failure classes. Callers branch on these to
// decide whether a retry is worthwhile.
const (
	CodeBadSegmentStatus = "3200"
	CodeRenderFailed     = "3300"
	CodeUploadFailed     = "4000"
)

// Result is the tagged outcome of one stage operation. Stages never abort the
// process; they report a Result and the orchestrator decides fatal vs not.
type Result struct {
	Created  bool
	Artifact Artifact
	Message  string // human-readable detail when Created is false
	Code     string // stable error code, empty when unclassified
}

// OK reports a successful stage outcome for the given artifact.
func OK(artifact Artifact) Result {
	return Result{Created: true, Artifact: artifact}
}

// Fail reports a failed stage outcome. code may be empty for unclassified
// failures such as transport errors.
func Fail(artifact Artifact, code, message string) Result {
	return Result{Artifact: artifact, Code: code, Message: message}
}
