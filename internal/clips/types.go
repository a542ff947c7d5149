// Package clips implements the clip assembly pipeline and its HTTP boundary.
package clips

import (
	"fmt"
	"strings"

	"github.com/smartclips/clipper/internal/publish"
	"github.com/smartclips/clipper/internal/status"
)

// Request is one clip invocation. It is immutable for the lifetime of the
// invocation; every required field must pass validation before any stage runs.
type Request struct {
	Files               []string                    `json:"files"`
	Length              float64                     `json:"length"`
	AccountID           string                      `json:"accountId"`
	ClipID              string                      `json:"clipId"`
	GameID              string                      `json:"gameId"`
	Subscriber          bool                        `json:"subscriber"`
	Base                string                      `json:"base"`
	ObjectStoreConfig   *publish.ObjectStoreConfig  `json:"objectStoreConfig"`
	ObjectStoreBucket   string                      `json:"objectStoreBucket"`
	MetadataStoreConfig *status.MetadataStoreConfig `json:"metadataStoreConfig,omitempty"`
}

// Validate checks presence of every required field. Status recording is the
// only optional collaborator, so MetadataStoreConfig may be nil.
func (r *Request) Validate() error {
	switch {
	case len(r.Files) == 0:
		return fmt.Errorf("files is required")
	case r.Base == "":
		return fmt.Errorf("base is required")
	case r.Length <= 0:
		return fmt.Errorf("length must be positive")
	case r.AccountID == "":
		return fmt.Errorf("accountId is required")
	case r.ClipID == "":
		return fmt.Errorf("clipId is required")
	case r.GameID == "":
		return fmt.Errorf("gameId is required")
	case r.ObjectStoreConfig == nil:
		return fmt.Errorf("objectStoreConfig is required")
	case r.ObjectStoreBucket == "":
		return fmt.Errorf("objectStoreBucket is required")
	}
	return nil
}

// SegmentURLs joins every file entry with the base to form the absolute
// segment URLs, in playback order.
func (r *Request) SegmentURLs() []string {
	base := strings.TrimSuffix(r.Base, "/")
	urls := make([]string, len(r.Files))
	for i, f := range r.Files {
		urls[i] = base + "/" + f
	}
	return urls
}
