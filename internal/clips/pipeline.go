package clips

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/smartclips/clipper/internal/blob"
	"github.com/smartclips/clipper/internal/publish"
	"github.com/smartclips/clipper/internal/stage"
	"github.com/smartclips/clipper/internal/status"
	"github.com/smartclips/clipper/pkg/response"
)

// SegmentFetcher downloads all segment URLs into the store and reports one
// result per URL, indexed by input position.
type SegmentFetcher interface {
	FetchAll(ctx context.Context, store *blob.Store, urls []string) []stage.Result
}

// Renderer runs the two encoding-engine operations over independent readers
// of the concatenated buffer and returns (image result, video result).
type Renderer interface {
	Run(ctx context.Context, src []byte, thumbnail io.Writer, videoPath string, lengthSec float64) (stage.Result, stage.Result)
}

// Uploader puts one artifact into object storage.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, artifact stage.Artifact, body io.Reader) stage.Result
}

// StatusRecorder writes the clip's terminal status to the metadata store.
type StatusRecorder interface {
	Record(ctx context.Context, accountID, clipID, gameID string, st status.ClipStatus, subscriber bool) error
}

// UploaderFactory builds an uploader from the request's object store config.
// Publishers are per-invocation because credentials travel with the request.
type UploaderFactory func(ctx context.Context, cfg publish.ObjectStoreConfig, bucket string) (Uploader, error)

// RecorderFactory builds a status recorder from the request's metadata store config.
type RecorderFactory func(ctx context.Context, cfg status.MetadataStoreConfig) (StatusRecorder, error)

// Pipeline sequences fetch, concat, transcode, upload and status recording
// for one clip request, short-circuiting on the first fatal stage failure.
type Pipeline struct {
	fetcher     SegmentFetcher
	renderer    Renderer
	newUploader UploaderFactory
	newRecorder RecorderFactory
	workDir     string
	clipDomain  string
	logger      *zap.Logger
}

// NewPipeline wires a pipeline. workDir holds rendered clips until they are
// uploaded; clipDomain is the public host in success URLs.
func NewPipeline(fetcher SegmentFetcher, renderer Renderer, newUploader UploaderFactory, newRecorder RecorderFactory, workDir, clipDomain string, logger *zap.Logger) *Pipeline {
	if workDir == "" {
		workDir = os.TempDir()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		fetcher:     fetcher,
		renderer:    renderer,
		newUploader: newUploader,
		newRecorder: newRecorder,
		workDir:     workDir,
		clipDomain:  clipDomain,
		logger:      logger,
	}
}

// Run executes the pipeline for one validated request and always returns a
// terminal response. Stage failures record status=failed best-effort and
// short-circuit; later stages never run after a fatal failure.
func (p *Pipeline) Run(ctx context.Context, req *Request) response.Clip {
	log := p.logger.With(
		zap.String("account_id", req.AccountID),
		zap.String("clip_id", req.ClipID),
	)

	recorder := p.makeRecorder(ctx, req, log)
	fail := func(message, code string) response.Clip {
		p.recordStatus(ctx, recorder, req, status.StatusFailed, log)
		return response.Failed(message, code)
	}

	store := blob.NewStore()
	urls := req.SegmentURLs()

	// Fetching: all downloads race, the pipeline joins on every one of them.
	results := p.fetcher.FetchAll(ctx, store, urls)
	for _, res := range results {
		if !res.Created {
			log.Warn("segment fetch failed", zap.String("detail", res.Message))
			return fail(res.Message, res.Code)
		}
	}

	// Concatenating: caller order defines playback order.
	concatKey := publish.ConcatKey(req.AccountID, req.ClipID)
	src, err := concat(store, urls, concatKey)
	if err != nil {
		log.Error("concat failed", zap.Error(err))
		return fail(fmt.Sprintf("concat segments: %v", err), "")
	}

	// Transcoding: thumbnail lands in the store, the clip on disk. The two
	// renders hold their own readers over src, so the store entry can go now.
	imageKey := publish.ImageKey(req.AccountID, req.ClipID)
	thumbnail := blob.NewSink(store, imageKey)
	store.Delete(concatKey)

	videoPath := filepath.Join(p.workDir, req.AccountID, req.ClipID+".mp4")
	if err := os.MkdirAll(filepath.Dir(videoPath), 0o750); err != nil {
		log.Error("create work dir failed", zap.Error(err))
		return fail("could not render video", stage.CodeRenderFailed)
	}
	// A failed render can still leave a partial file behind; clean up on
	// every exit path, not just after a successful publish.
	defer os.Remove(videoPath)

	imageRes, videoRes := p.renderer.Run(ctx, src, thumbnail, videoPath, req.Length)
	if !imageRes.Created {
		// Non-fatal: the clip just publishes without a thumbnail.
		log.Warn("thumbnail render failed", zap.String("detail", imageRes.Message))
		store.Delete(imageKey)
	}
	if !videoRes.Created {
		log.Warn("video render failed", zap.String("detail", videoRes.Message))
		return fail("could not render video", stage.CodeRenderFailed)
	}

	// Uploading: the clip is mandatory, the thumbnail rides along when present.
	uploader, err := p.newUploader(ctx, *req.ObjectStoreConfig, req.ObjectStoreBucket)
	if err != nil {
		log.Error("object store client failed", zap.Error(err))
		return fail("could not upload video", stage.CodeUploadFailed)
	}

	videoFile, err := os.Open(videoPath)
	if err != nil {
		log.Error("open rendered clip failed", zap.Error(err))
		return fail("could not upload video", stage.CodeUploadFailed)
	}

	var (
		wg       sync.WaitGroup
		videoUp  stage.Result
		imageUp  = stage.OK(stage.ArtifactImage)
		videoKey = publish.VideoKey(req.AccountID, req.ClipID)
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		videoUp = uploader.Upload(ctx, videoKey, publish.ContentTypeVideo, stage.ArtifactVideo, videoFile)
	}()
	if imageRes.Created {
		if img, getErr := store.Get(imageKey); getErr == nil {
			wg.Add(1)
			go func() {
				defer wg.Done()
				imageUp = uploader.Upload(ctx, imageKey, publish.ContentTypeImage, stage.ArtifactImage, bytes.NewReader(img))
			}()
		}
	}
	wg.Wait()
	videoFile.Close()
	store.Delete(imageKey)

	if !imageUp.Created {
		log.Warn("thumbnail upload failed", zap.String("detail", imageUp.Message))
	}
	if !videoUp.Created {
		log.Warn("video upload failed", zap.String("detail", videoUp.Message))
		return fail("could not upload video", stage.CodeUploadFailed)
	}

	p.recordStatus(ctx, recorder, req, status.StatusPublished, log)
	log.Info("clip published", zap.String("key", videoKey), zap.Bool("thumbnail", imageRes.Created && imageUp.Created))
	return response.Published(fmt.Sprintf("https://%s/%s/%s", p.clipDomain, req.AccountID, req.ClipID))
}

// concat appends each URL's buffer in the given order into destKey, then
// drops the source entries to bound peak memory.
func concat(store *blob.Store, urls []string, destKey string) ([]byte, error) {
	var total int
	parts := make([][]byte, len(urls))
	for i, url := range urls {
		b, err := store.Get(url)
		if err != nil {
			return nil, err
		}
		parts[i] = b
		total += len(b)
	}
	out := make([]byte, 0, total)
	for _, b := range parts {
		out = append(out, b...)
	}
	store.Put(destKey, out)
	for _, url := range urls {
		store.Delete(url)
	}
	return out, nil
}

func (p *Pipeline) makeRecorder(ctx context.Context, req *Request, log *zap.Logger) StatusRecorder {
	if req.MetadataStoreConfig == nil || p.newRecorder == nil {
		return nil
	}
	recorder, err := p.newRecorder(ctx, *req.MetadataStoreConfig)
	if err != nil {
		log.Warn("metadata store client failed", zap.Error(err))
		return nil
	}
	return recorder
}

// recordStatus is best-effort by contract: failures are logged and never
// influence the pipeline's outcome.
func (p *Pipeline) recordStatus(ctx context.Context, recorder StatusRecorder, req *Request, st status.ClipStatus, log *zap.Logger) {
	if recorder == nil {
		return
	}
	if err := recorder.Record(ctx, req.AccountID, req.ClipID, req.GameID, st, req.Subscriber); err != nil {
		log.Warn("status record failed", zap.Int("status", int(st)), zap.Error(err))
	}
}
