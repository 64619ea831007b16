package render

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/flowchart/pkg/flowchart"
)

// DefaultDir is the output directory used when FileRenderer.Dir is empty.
const DefaultDir = "static"

// FileRenderer encodes graphs into uniquely named files.
type FileRenderer struct {
	// Dir is created on first use.
	Dir     string
	Encoder Encoder

	// now is swapped in tests.
	now func() time.Time
}

// NewFileRenderer returns a renderer writing enc output into dir.
func NewFileRenderer(dir string, enc Encoder) *FileRenderer {
	return &FileRenderer{Dir: dir, Encoder: enc}
}

// Render writes g to a new file named flowchart_<unix>_<uuid>.<format> and
// returns its path. A file that fails half way is removed; failures are
// returned as *flowchart.RenderError unless the context was cancelled.
func (r *FileRenderer) Render(ctx context.Context, g *flowchart.Graph) (string, error) {
	if r.Encoder == nil {
		return "", &flowchart.RenderError{Op: "init", Err: errors.New("no encoder configured")}
	}
	dir := r.Dir
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &flowchart.RenderError{Op: "mkdir", Err: err}
	}

	path := filepath.Join(dir, r.fileName())
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", &flowchart.RenderError{Op: "create", Err: err}
	}

	if err := r.write(ctx, f, g); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", &flowchart.RenderError{Op: "write", Err: err}
	}
	return path, nil
}

func (r *FileRenderer) write(ctx context.Context, f *os.File, g *flowchart.Graph) error {
	w := bufio.NewWriter(f)
	if err := r.Encoder.Encode(ctx, g, w); err != nil {
		var renderErr *flowchart.RenderError
		if errors.As(err, &renderErr) || ctx.Err() != nil {
			return err
		}
		return &flowchart.RenderError{Op: "encode", Err: err}
	}
	if err := w.Flush(); err != nil {
		return &flowchart.RenderError{Op: "write", Err: err}
	}
	return nil
}

func (r *FileRenderer) fileName() string {
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	return fmt.Sprintf("flowchart_%d_%s.%s", now().Unix(), uuid.NewString(), r.Encoder.Format())
}
