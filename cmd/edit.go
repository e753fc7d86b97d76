package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rescale/internal/output"
	"rescale/internal/scaler"
	"rescale/internal/session"
)

// editFlags override the configuration for a single run. Only flags set on
// the command line take effect.
type editFlags struct {
	width     int
	height    int
	scale     float64
	lock      bool
	format    string
	quality   float64
	outputDir string
	overwrite bool
}

func addEditFlags(cmd *cobra.Command, f *editFlags) {
	cmd.Flags().IntVarP(&f.width, "width", "W", 0, "output width in pixels")
	cmd.Flags().IntVarP(&f.height, "height", "H", 0, "output height in pixels")
	cmd.Flags().Float64VarP(&f.scale, "scale", "s", scaler.DefaultScalePercent, "scale percentage (10-200)")
	cmd.Flags().BoolVar(&f.lock, "lock", true, "keep the aspect ratio when one side is given")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "output format: jpeg, png or webp")
	cmd.Flags().Float64VarP(&f.quality, "quality", "q", scaler.DefaultQuality, "encoder quality (0.01-1) for jpeg and webp")
}

func addOutputFlags(cmd *cobra.Command, f *editFlags) {
	cmd.Flags().StringVarP(&f.outputDir, "output", "o", "", "destination folder (default from config)")
	cmd.Flags().BoolVar(&f.overwrite, "overwrite", false, "replace existing files instead of numbering")
}

func newEditor() (*session.Editor, error) {
	s, err := cfg.Settings()
	if err != nil {
		return nil, err
	}
	return session.New(session.WithSettings(s), session.WithLogger(logger)), nil
}

// openEditor opens inputs and, if the first image cannot be decoded, moves
// on until one can.
func openEditor(ctx context.Context, e *session.Editor, inputs []scaler.Input) error {
	err := e.Open(ctx, inputs)
	if err == nil || errors.Is(err, session.ErrNoImages) {
		return err
	}
	for i := 1; i < e.Files().Len(); i++ {
		logger.Warn("skipping unreadable image", zap.Error(err))
		if err = e.Next(ctx); err == nil {
			return nil
		}
	}
	return err
}

// apply layers the config and then the changed flags onto the editor.
func (f *editFlags) apply(cmd *cobra.Command, e *session.Editor) error {
	changed := cmd.Flags().Changed

	lock := e.Settings().LockAspect
	if changed("lock") {
		lock = f.lock
	}
	width, height := cfg.Width, cfg.Height
	if changed("width") {
		width = f.width
	}
	if changed("height") {
		height = f.height
	}
	if width < 0 || height < 0 {
		return fmt.Errorf("--width and --height must be positive")
	}
	if width > 0 && height > 0 && lock {
		if !changed("width") && !changed("height") {
			return fmt.Errorf("config keys width and height together require lock_aspect: false")
		}
		return fmt.Errorf("--width and --height together require --lock=false")
	}

	e.SetLockAspect(lock)
	if width > 0 {
		e.SetWidth(width)
	}
	if height > 0 {
		e.SetHeight(height)
	}

	scale := cfg.Scale
	if changed("scale") {
		scale = f.scale
	}
	e.SetScale(scale)

	if changed("format") {
		format, err := scaler.ParseFormat(f.format)
		if err != nil {
			return err
		}
		if err := e.SetFormat(format); err != nil {
			return err
		}
	}
	if changed("quality") {
		e.SetQuality(f.quality)
	}
	return nil
}

func (f *editFlags) saver(cmd *cobra.Command) output.Saver {
	s := output.Saver{Dir: cfg.OutputDir, Overwrite: cfg.Overwrite}
	if cmd.Flags().Changed("output") {
		s.Dir = f.outputDir
	}
	if cmd.Flags().Changed("overwrite") {
		s.Overwrite = f.overwrite
	}
	return s
}
