package analysis

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"artidicia/internal/frames"
	"artidicia/internal/services"
	"artidicia/internal/services/llm"
)

// encodeFrames JPEG-encodes frames in parallel, keeping selection order.
func encodeFrames(ctx context.Context, selected []frames.Frame, quality int) ([]llm.Image, error) {
	images := make([]llm.Image, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(len(selected)))
	for i := range selected {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			data, err := frames.EncodeJPEG(selected[i].Image, quality)
			if err != nil {
				return services.Wrap(services.ErrDecode, "analysis", "encode frame",
					fmt.Sprintf("Frame %d could not be encoded", i+1), err)
			}
			images[i] = llm.Image{MIME: "image/jpeg", Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

func workerCount(n int) int {
	return max(1, min(n, runtime.NumCPU()))
}
