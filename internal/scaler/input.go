package scaler

import (
	"bytes"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// Input is a named byte source with a declared media type.
type Input interface {
	Name() string
	MIMEType() string
	Open() (io.ReadCloser, error)
}

func init() {
	// The builtin table has no entries for these on some platforms.
	for ext, typ := range map[string]string{
		".bmp":  "image/bmp",
		".tif":  "image/tiff",
		".tiff": "image/tiff",
	} {
		if mime.TypeByExtension(ext) == "" {
			_ = mime.AddExtensionType(ext, typ)
		}
	}
}

type fileInput struct {
	path string
}

// FileInput returns an Input reading path. Its media type is derived from
// the file extension, not the content.
func FileInput(path string) Input {
	return fileInput{path: path}
}

func (f fileInput) Name() string { return filepath.Base(f.path) }

func (f fileInput) MIMEType() string {
	return mime.TypeByExtension(strings.ToLower(filepath.Ext(f.path)))
}

func (f fileInput) Open() (io.ReadCloser, error) { return os.Open(f.path) }

type bytesInput struct {
	name     string
	mimeType string
	data     []byte
}

// BytesInput returns an in-memory Input.
func BytesInput(name, mimeType string, data []byte) Input {
	return bytesInput{name: name, mimeType: mimeType, data: data}
}

func (b bytesInput) Name() string     { return b.name }
func (b bytesInput) MIMEType() string { return b.mimeType }

func (b bytesInput) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

// FilterImages keeps the inputs whose declared media type is image/*,
// preserving order.
func FilterImages(inputs []Input) []Input {
	images := make([]Input, 0, len(inputs))
	for _, in := range inputs {
		if strings.HasPrefix(in.MIMEType(), "image/") {
			images = append(images, in)
		}
	}
	return images
}

// CollectInputs expands paths into file inputs. Directories are walked
// recursively in lexical order; other arguments are taken as files.
func CollectInputs(paths []string) ([]Input, error) {
	var inputs []Input
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			inputs = append(inputs, FileInput(root))
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			inputs = append(inputs, FileInput(path))
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return inputs, nil
}

// NameBase strips the final extension from name: "photo.final.png"
// becomes "photo.final".
func NameBase(name string) string {
	name = filepath.Base(name)
	if i := strings.LastIndex(name, "."); i >= 0 && i < len(name)-1 {
		return name[:i]
	}
	return name
}
