package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

const rsvgBinary = "rsvg-convert"

// Converter converts SVG documents with rsvg-convert.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
type Converter struct {
	// Binary is the rsvg-convert executable. Empty means "rsvg-convert"
	// looked up in PATH.
	Binary string
}

// Available reports whether the converter binary can be found.
func (c Converter) Available() bool {
	_, err := exec.LookPath(c.binary())
	return err == nil
}

// ToPNG rasterizes svg to a width×height PNG.
func (c Converter) ToPNG(ctx context.Context, svg []byte, width, height int) ([]byte, error) {
	return c.run(ctx, svg, "png", "-w", strconv.Itoa(width), "-h", strconv.Itoa(height))
}

// ToPDF converts svg to a single-page PDF.
func (c Converter) ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return c.run(ctx, svg, "pdf")
}

func (c Converter) binary() string {
	if c.Binary != "" {
		return c.Binary
	}
	return rsvgBinary
}

func (c Converter) run(ctx context.Context, svg []byte, format string, extraArgs ...string) ([]byte, error) {
	bin := c.binary()
	if _, err := exec.LookPath(bin); err != nil {
		return nil, fmt.Errorf("%s export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("rsvg-convert: %v: %s", err, errBuf.String())
	}
	return out.Bytes(), nil
}
