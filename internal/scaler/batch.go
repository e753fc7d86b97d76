package scaler

import (
	"context"

	"go.uber.org/zap"
)

// Result is the outcome of one batch item.
type Result struct {
	Index  int
	Name   string
	Width  int
	Height int
	Output Output
	Err    error
}

// ProgressUpdate carries counter deltas for progress displays.
type ProgressUpdate struct {
	TotalDelta     int
	ProcessedDelta int
	ErrorDelta     int
	BytesDelta     int64
}

// Batch applies one settings snapshot to many inputs, rendering them one
// at a time on a single Renderer.
type Batch struct {
	renderer *Renderer
	logger   *zap.Logger
	updates  chan<- ProgressUpdate
}

type BatchOption func(*Batch)

// WithRenderer makes the batch draw on r instead of a private renderer.
func WithRenderer(r *Renderer) BatchOption {
	return func(b *Batch) {
		b.renderer = r
	}
}

func WithLogger(logger *zap.Logger) BatchOption {
	return func(b *Batch) {
		b.logger = logger
	}
}

// WithProgress streams counter deltas to updates. Sends block, so the
// channel must be drained while Run is in progress.
func WithProgress(updates chan<- ProgressUpdate) BatchOption {
	return func(b *Batch) {
		b.updates = updates
	}
}

func NewBatch(opts ...BatchOption) *Batch {
	b := &Batch{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	if b.renderer == nil {
		b.renderer = NewRenderer()
	}
	return b
}

type decoded struct {
	index int
	src   *Source
	err   error
}

// Run processes inputs in order and returns one Result per input. A
// failing item is recorded on its Result and the run continues. Decoding
// runs at most one item ahead of rendering; rendering and encoding are
// sequential.
//
// If ctx is cancelled, Run stops before the next item and returns the
// results so far together with ctx.Err().
func (b *Batch) Run(ctx context.Context, inputs []Input, snap Snapshot) ([]Result, error) {
	settings, err := snap.Settings().Normalize()
	if err != nil {
		return nil, err
	}
	anchor := settings.Anchor
	if anchor == FieldNone {
		anchor = FieldWidth
	}

	ahead := make(chan decoded, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(ahead)
		for i, in := range inputs {
			src, err := Decode(ctx, in)
			select {
			case ahead <- decoded{index: i, src: src, err: err}:
			case <-done:
				return
			}
		}
	}()

	b.report(ctx, ProgressUpdate{TotalDelta: len(inputs)})

	results := make([]Result, 0, len(inputs))
	for d := range ahead {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res := Result{Index: d.index, Name: inputs[d.index].Name()}
		if d.err != nil {
			res.Err = d.err
		} else {
			res = b.process(res, d.src, settings, anchor)
		}

		if res.Err != nil {
			b.logger.Warn("batch item failed",
				zap.Int("index", res.Index),
				zap.String("name", res.Name),
				zap.Error(res.Err),
			)
			b.report(ctx, ProgressUpdate{ProcessedDelta: 1, ErrorDelta: 1})
		} else {
			b.logger.Debug("batch item exported",
				zap.Int("index", res.Index),
				zap.String("file", res.Output.Filename),
				zap.Int("width", res.Width),
				zap.Int("height", res.Height),
				zap.Int("bytes", len(res.Output.Data)),
			)
			b.report(ctx, ProgressUpdate{ProcessedDelta: 1, BytesDelta: int64(len(res.Output.Data))})
		}
		results = append(results, res)
	}

	return results, ctx.Err()
}

func (b *Batch) process(res Result, src *Source, s Settings, anchor Field) Result {
	dims := Resolve(s.Request(src.Aspect(), anchor))
	target := b.renderer.Render(src.Image(), dims.OutWidth, dims.OutHeight)

	out, err := Export(target, s.Format, s.Quality, src.NameBase())
	if err != nil {
		res.Err = err
		return res
	}
	res.Width = dims.OutWidth
	res.Height = dims.OutHeight
	res.Output = out
	return res
}

// report sends update unless ctx ends first, so a consumer that stopped
// reading cannot stall the run.
func (b *Batch) report(ctx context.Context, update ProgressUpdate) {
	if b.updates == nil {
		return
	}
	select {
	case b.updates <- update:
	case <-ctx.Done():
	}
}
