package services

import (
  "bytes"
  "fmt"
  "io"

  "github.com/disintegration/imaging"
)

const (
  productImageMaxSide   = 800
  productImageQuality   = 85
)

// ProcessProductImage decodes an upload, applies its EXIF orientation, fits it
// inside 800x800 and re-encodes it as JPEG.
func ProcessProductImage(r io.Reader) (*bytes.Buffer, error) {
  img, err := imaging.Decode(r, imaging.AutoOrientation(true))
  if err != nil {
    return nil, fmt.Errorf("failed to decode image: %w", err)
  }
  img = imaging.Fit(img, productImageMaxSide, productImageMaxSide, imaging.Lanczos)

  var buf bytes.Buffer
  if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(productImageQuality)); err != nil {
    return nil, fmt.Errorf("failed to encode image: %w", err)
  }
  return &buf, nil
}
