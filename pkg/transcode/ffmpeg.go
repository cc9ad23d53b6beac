package transcode

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

const defaultTimeout = 30 * time.Second

// FFmpeg shells out to an ffmpeg binary for thumbnail derivation.
type FFmpeg struct {
	binary       string
	maxDimension int
	timeout      time.Duration
}

// NewFFmpeg returns a transcoder using the given binary path.
func NewFFmpeg(binary string, maxDimension int) *FFmpeg {
	if binary == "" {
		binary = "ffmpeg"
	}
	if maxDimension <= 0 {
		maxDimension = 500
	}
	return &FFmpeg{binary: binary, maxDimension: maxDimension, timeout: defaultTimeout}
}

// Image resizes and recompresses a still image into a JPEG at dst.
func (f *FFmpeg) Image(ctx context.Context, src, dst string) error {
	return f.run(ctx, "-y", "-i", src, "-vf", f.scaleFilter(), "-q:v", "4", dst)
}

// VideoFrame extracts the first frame of a video or animation and resizes it
// into a JPEG at dst.
func (f *FFmpeg) VideoFrame(ctx context.Context, src, dst string) error {
	return f.run(ctx, "-y", "-i", src, "-vframes", "1", "-vf", f.scaleFilter(), "-q:v", "4", dst)
}

func (f *FFmpeg) scaleFilter() string {
	// Shrink the longer edge to maxDimension, never upscale.
	return fmt.Sprintf("scale='min(%d,iw)':'min(%d,ih)':force_original_aspect_ratio=decrease", f.maxDimension, f.maxDimension)
}

func (f *FFmpeg) run(ctx context.Context, args ...string) error {
	runCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, f.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, stderr.String())
	}
	return nil
}
