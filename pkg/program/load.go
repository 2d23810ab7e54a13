package program

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tagvm/pkg/asm"
)

const AsmExt = ".asm"

// Load reads the program at path, choosing the format by extension: images
// for .tvmi, mnemonics for .asm and numeric text otherwise. The returned
// source is the text the words came from, or the source embedded in an image.
func Load(path string) (Program, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("cannot read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ImageExt:
		img, err := DecodeImage(data)
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", path, err)
		}
		return Program(img.Words), img.Source, nil

	case AsmExt:
		words, err := asm.Assemble(string(data))
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", path, err)
		}
		return Program(words), string(data), nil

	default:
		p, err := Parse(string(data))
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", path, err)
		}
		return p, string(data), nil
	}
}
