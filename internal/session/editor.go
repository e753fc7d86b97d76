package session

import (
	"context"
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"

	"rescale/internal/scaler"
)

var (
	// ErrNoImages is returned by Open when no input is an image.
	ErrNoImages = errors.New("no image files found")
	// ErrEmptyCollection is returned by navigation and export-all before
	// anything was opened.
	ErrEmptyCollection = errors.New("no images loaded")
	// ErrNoSource is returned by operations that need a decoded image.
	ErrNoSource = errors.New("no image decoded")
)

// Preview describes the current render.
type Preview struct {
	Name           string
	Index          int
	Count          int
	SourceWidth    int
	SourceHeight   int
	OutWidth       int
	OutHeight      int
	EstimatedBytes int
}

// Label returns the "Image i of n" caption.
func (p Preview) Label() string {
	if p.Count == 0 {
		return ""
	}
	return fmt.Sprintf("Image %d of %d", p.Index+1, p.Count)
}

// Editor is the state behind an interactive resize session: the opened
// files, the decoded current image and the live settings. It is not safe
// for concurrent use.
type Editor struct {
	files    *Collection
	current  *scaler.Source
	shown    int
	settings scaler.Settings
	renderer *scaler.Renderer
	logger   *zap.Logger
}

type Option func(*Editor)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithSettings sets the initial format, quality and aspect lock. Width,
// height and scale are replaced whenever an image is shown.
func WithSettings(s scaler.Settings) Option {
	return func(e *Editor) {
		e.settings = s
	}
}

func WithRenderer(r *scaler.Renderer) Option {
	return func(e *Editor) {
		e.renderer = r
	}
}

func New(opts ...Option) *Editor {
	e := &Editor{
		files:    NewCollection(nil),
		settings: scaler.DefaultSettings(0, 0),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.renderer == nil {
		e.renderer = scaler.NewRenderer()
	}
	return e
}

// Open replaces the collection with the image inputs and shows the first.
// Non-image inputs are dropped; ErrNoImages is returned if none remain.
func (e *Editor) Open(ctx context.Context, inputs []scaler.Input) error {
	images := scaler.FilterImages(inputs)
	if len(images) == 0 {
		return ErrNoImages
	}
	if skipped := len(inputs) - len(images); skipped > 0 {
		e.logger.Debug("skipped non-image inputs", zap.Int("count", skipped))
	}

	e.files = NewCollection(images)
	e.current = nil
	return e.show(ctx)
}

// Next shows the following image, wrapping to the first.
func (e *Editor) Next(ctx context.Context) error {
	if _, err := e.files.Next(); err != nil {
		return err
	}
	return e.show(ctx)
}

// Prev shows the preceding image, wrapping to the last.
func (e *Editor) Prev(ctx context.Context) error {
	if _, err := e.files.Prev(); err != nil {
		return err
	}
	return e.show(ctx)
}

// show decodes the input under the cursor. On failure the previous image
// and settings stay in place.
func (e *Editor) show(ctx context.Context) error {
	in, err := e.files.Current()
	if err != nil {
		return err
	}

	src, err := scaler.Decode(ctx, in)
	if err != nil {
		e.logger.Warn("could not load image", zap.String("name", in.Name()), zap.Error(err))
		return err
	}

	e.current = src
	e.shown = e.files.Index()
	e.settings.Width = src.Width()
	e.settings.Height = src.Height()
	e.settings.ScalePercent = scaler.DefaultScalePercent
	e.settings.Anchor = scaler.FieldNone
	return nil
}

// Current returns the decoded image, or nil.
func (e *Editor) Current() *scaler.Source { return e.current }

// Files returns the opened collection.
func (e *Editor) Files() *Collection { return e.files }

// Settings returns a copy of the live settings.
func (e *Editor) Settings() scaler.Settings { return e.settings }

// SetWidth edits the width field. With the aspect lock on, the height
// field follows.
func (e *Editor) SetWidth(w int) {
	e.settings.Width = w
	e.edit(scaler.FieldWidth)
}

// SetHeight edits the height field. With the aspect lock on, the width
// field follows.
func (e *Editor) SetHeight(h int) {
	e.settings.Height = h
	e.edit(scaler.FieldHeight)
}

func (e *Editor) edit(field scaler.Field) {
	e.settings.Anchor = field
	if e.current == nil {
		return
	}
	res := scaler.Resolve(e.settings.Request(e.current.Aspect(), field))
	e.settings.Width = res.Width
	e.settings.Height = res.Height
}

// SetLockAspect toggles the aspect lock. The fields are left as they are
// until the next width or height edit.
func (e *Editor) SetLockAspect(lock bool) {
	e.settings.LockAspect = lock
}

// SetScale sets the scale percentage, clamped to [10, 200].
func (e *Editor) SetScale(percent float64) {
	e.settings.ScalePercent = clamp(percent, scaler.MinScalePercent, scaler.MaxScalePercent)
}

// SetQuality sets the encoder quality, clamped to [0.01, 1].
func (e *Editor) SetQuality(q float64) {
	e.settings.Quality = clamp(q, scaler.MinQuality, scaler.MaxQuality)
}

func (e *Editor) SetFormat(f scaler.Format) error {
	if !f.Valid() {
		return fmt.Errorf("%w: %q", scaler.ErrEncodeUnsupported, f)
	}
	e.settings.Format = f
	return nil
}

// Reset restores the source size, the aspect lock, 100% scale, JPEG and
// 0.9 quality.
func (e *Editor) Reset() error {
	if e.current == nil {
		return ErrNoSource
	}
	e.settings = scaler.DefaultSettings(e.current.Width(), e.current.Height())
	return nil
}

// Render draws the current image at the resolved size. The returned raster
// is valid until the next render on this editor's renderer.
func (e *Editor) Render() (*image.RGBA, scaler.Resolution, error) {
	if e.current == nil {
		return nil, scaler.Resolution{}, ErrNoSource
	}
	res := scaler.Resolve(e.settings.Request(e.current.Aspect(), scaler.FieldNone))
	return e.renderer.Render(e.current.Image(), res.OutWidth, res.OutHeight), res, nil
}

// Preview renders the current image and estimates its encoded size.
func (e *Editor) Preview() (Preview, error) {
	target, res, err := e.Render()
	if err != nil {
		return Preview{}, err
	}

	n, err := scaler.Estimate(target, e.settings.Format, e.settings.Quality)
	if err != nil {
		return Preview{}, err
	}

	p := Preview{
		Index:          e.shown,
		Count:          e.files.Len(),
		SourceWidth:    e.current.Width(),
		SourceHeight:   e.current.Height(),
		OutWidth:       res.OutWidth,
		OutHeight:      res.OutHeight,
		EstimatedBytes: n,
	}
	if e.shown < e.files.Len() {
		p.Name = e.files.items[e.shown].Name()
	}
	return p, nil
}

// Download renders and encodes the current image.
func (e *Editor) Download() (scaler.Output, error) {
	target, _, err := e.Render()
	if err != nil {
		return scaler.Output{}, err
	}
	return scaler.Export(target, e.settings.Format, e.settings.Quality, e.current.NameBase())
}

// ExportAll freezes the live settings and exports every opened input with
// them, in order, on the editor's renderer.
func (e *Editor) ExportAll(ctx context.Context, opts ...scaler.BatchOption) ([]scaler.Result, error) {
	if e.files.Len() == 0 {
		return nil, ErrEmptyCollection
	}

	snap := e.settings.Snapshot()
	e.logger.Info("exporting all images",
		zap.Int("count", e.files.Len()),
		zap.Int("width", e.settings.Width),
		zap.Int("height", e.settings.Height),
		zap.Float64("scale", e.settings.ScalePercent),
		zap.String("format", string(e.settings.Format)),
	)

	batchOpts := append([]scaler.BatchOption{
		scaler.WithRenderer(e.renderer),
		scaler.WithLogger(e.logger),
	}, opts...)
	return scaler.NewBatch(batchOpts...).Run(ctx, e.files.Items(), snap)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
