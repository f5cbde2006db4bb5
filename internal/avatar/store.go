package avatar

import (
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// ErrUnsupportedFormat is returned when the uploaded bytes cannot be decoded
// as an image.
var ErrUnsupportedFormat = errors.New("unsupported image format")

const thumbnailSize = 250

// Store persists resized avatar images on local disk, keyed by user ID.
type Store struct {
	dir string
}

func NewStore(dir string) *Store { return &Store{dir: dir} }

// Save decodes the upload, resizes it to a fixed square thumbnail and writes
// it under the store directory as <userID>_<filename>. The write goes through
// a temp file that is renamed on success and removed on failure, so a crashed
// upload never leaves a partial avatar behind. Returns the relative URL path
// of the stored image.
func (s *Store) Save(userID, filename string, r io.Reader) (string, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return "", ErrUnsupportedFormat
	}
	img = imaging.Resize(img, thumbnailSize, thumbnailSize, imaging.Lanczos)

	format, err := imaging.FormatFromFilename(filename)
	if err != nil {
		format = imaging.JPEG
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(s.dir, ".avatar-*")
	if err != nil {
		return "", err
	}
	if err := imaging.Encode(tmp, img, format); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	name := userID + "_" + filepath.Base(filename)
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return path.Join("avatars", name), nil
}
