package artifacts

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
)

// ListRegistryImage streams the layers of a remote image and emits each file
// path once, without pulling the image to disk. It uses the local Docker
// credentials (if available) for authentication.
func ListRegistryImage(ctx context.Context, imageRef string, limits Limits, emit EmitFunc, stats *Stats) error {
	ref, err := name.ParseReference(imageRef)
	if err != nil {
		return fmt.Errorf("invalid image reference %q: %w", imageRef, err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if stats == nil {
		stats = &Stats{}
	}

	// Fetches the manifest only; layers are streamed below.
	img, err := remote.Image(ref, remote.WithAuthFromKeychain(authn.DefaultKeychain), remote.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to fetch image metadata for %q: %w", imageRef, err)
	}
	layers, err := img.Layers()
	if err != nil {
		return fmt.Errorf("failed to get layers for %q: %w", imageRef, err)
	}

	seen := map[string]bool{}
	dedupe := func(p string) {
		if seen[p] {
			return
		}
		seen[p] = true
		emit(p)
	}
	l := newLister(ctx, limits, dedupe, stats)
	// later layers repeat paths they modify; whiteouts are not files
	for _, layer := range layers {
		if l.check() {
			return nil
		}
		digest, err := layer.Digest()
		if err != nil {
			continue
		}
		rc, err := layer.Uncompressed()
		if err != nil {
			return fmt.Errorf("failed to read layer %s: %w", digest, err)
		}
		err = l.tarFilter("", rc, 0, func(p string) bool {
			return seen[p] || strings.HasPrefix(path.Base(p), ".wh.")
		})
		_ = rc.Close()
		if err != nil {
			return fmt.Errorf("layer %s: %w", digest, err)
		}
	}
	return nil
}
