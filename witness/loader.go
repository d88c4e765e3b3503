package witness

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Reader supplies a witness to the verifier.
type Reader interface {
	Read(ctx context.Context) (*Witness, error)
}

// Format identifies a witness file encoding.
type Format string

const (
	FormatAuto   Format = "auto"
	FormatJSON   Format = "json"
	FormatBorsh  Format = "borsh"
	FormatBase64 Format = "base64"
)

// FileReader implements Reader by reading a witness file from disk.
type FileReader struct {
	Path string
	// Format defaults to FormatAuto, which picks JSON for .json files,
	// base64 Borsh for .b64 and .base64 files and raw Borsh otherwise.
	Format Format
}

// Read loads the witness from f.Path
func (f *FileReader) Read(ctx context.Context) (*Witness, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFromFile(f.Path, f.Format)
}

// LoadFromFile loads a witness file in the given format.
func LoadFromFile(path string, format Format) (*Witness, error) {
	if format == "" || format == FormatAuto {
		format = DetectFormat(path)
	}

	switch format {
	case FormatJSON:
		return DecodeJSONFromFile(path)
	case FormatBorsh:
		return DecodeFromFile(path)
	case FormatBase64:
		return decodeBase64File(path)
	default:
		return nil, fmt.Errorf("unsupported witness format: %s", format)
	}
}

// DetectFormat guesses the witness format from the file extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".b64", ".base64":
		return FormatBase64
	default:
		return FormatBorsh
	}
}
