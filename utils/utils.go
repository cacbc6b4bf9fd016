package utils

import (
	"bytes"
	"image/jpeg"
	"io"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

type ImageThumbConverted struct {
	ThumbSize int64
	NewX      uint16
	NewY      uint16
	OldX      uint16
	OldY      uint16
}

// CreateThumb fits the image into a size x size box, honouring EXIF orientation, and writes a JPEG
func CreateThumb(size uint, reader io.Reader, writer io.Writer) (result ImageThumbConverted, err error) {
	image, err := imaging.Decode(reader, imaging.AutoOrientation(true))
	if err != nil {
		return result, err
	}
	var newBuf bytes.Buffer
	newImage := resize.Thumbnail(size, size, image, resize.Lanczos3)
	if err = jpeg.Encode(&newBuf, newImage, &jpeg.Options{Quality: 90}); err != nil {
		return
	}
	imageRect := newImage.Bounds().Size()
	result.NewX = uint16(imageRect.X)
	result.NewY = uint16(imageRect.Y)

	imageRect = image.Bounds().Size()
	result.OldX = uint16(imageRect.X)
	result.OldY = uint16(imageRect.Y)

	result.ThumbSize, err = io.Copy(writer, &newBuf)
	return
}

// StringToInt returns def when in is empty or not a number
func StringToInt(in string, def int) int {
	v, err := strconv.Atoi(in)
	if err != nil {
		return def
	}
	return v
}
