package program

import (
	"errors"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
)

const (
	ImageMagic   = "TVMI"
	ImageVersion = 1
	ImageExt     = ".tvmi"
)

var (
	ErrInvalidMagic   = errors.New("invalid image magic")
	ErrInvalidVersion = errors.New("unsupported image version")
)

// Image is the binary container for a program. Source optionally keeps the
// text the words were produced from.
type Image struct {
	Magic   string  `cbor:"magic"`
	Version int     `cbor:"version"`
	Words   []int32 `cbor:"words"`
	Source  string  `cbor:"source,omitempty"`
}

// canonical encoding keeps images byte-for-byte reproducible
var imageEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("program: failed to create CBOR enc mode: %v", err))
	}
	imageEncMode = em
}

// EncodeImage serializes a program to CBOR bytes.
func EncodeImage(p Program, source string) ([]byte, error) {
	img := Image{
		Magic:   ImageMagic,
		Version: ImageVersion,
		Words:   append([]int32{}, p...),
		Source:  source,
	}
	return imageEncMode.Marshal(&img)
}

// DecodeImage deserializes CBOR bytes produced by EncodeImage.
func DecodeImage(data []byte) (*Image, error) {
	var img Image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("program: unmarshal image: %w", err)
	}
	if img.Magic != ImageMagic {
		return nil, ErrInvalidMagic
	}
	if img.Version != ImageVersion {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVersion, img.Version)
	}
	return &img, nil
}

// WriteImage encodes p and writes it to path.
func WriteImage(path string, p Program, source string) error {
	data, err := EncodeImage(p, source)
	if err != nil {
		return fmt.Errorf("encoding image: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing image: %w", err)
	}
	return nil
}

// ReadImage reads and decodes the image stored at path.
func ReadImage(path string) (Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	img, err := DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Program(img.Words), nil
}
