package fbxview

import (
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/chai2010/tiff"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
)

func writeImage(w io.Writer, img image.Image, ft string) error {
	switch ft {
	case "jpeg", "jpg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	case "png":
		return png.Encode(w, img)
	case "gif":
		return gif.Encode(w, img, nil)
	case "bmp":
		return bmp.Encode(w, img)
	case "tif", "tiff":
		return tiff.Encode(w, img, nil)
	default:
		return errors.Wrapf(ErrUnknownFormat, "image format %q", ft)
	}
}

func readImage(rd io.Reader, ft string) (image.Image, error) {
	switch ft {
	case "jpeg", "jpg":
		return jpeg.Decode(rd)
	case "png":
		return png.Decode(rd)
	case "gif":
		return gif.Decode(rd)
	case "bmp":
		return bmp.Decode(rd)
	case "tif", "tiff":
		return tiff.Decode(rd)
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "image format %q", ft)
	}
}
