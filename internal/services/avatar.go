package services

import (
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "image/color"
  "math/rand"
  "os"
  "strings"

  "github.com/fogleman/gg"
  "github.com/golang/freetype/truetype"
  "golang.org/x/image/font"

  "github.com/medicare-pharmacy/medicare-backend/internal/logger"
  "github.com/medicare-pharmacy/medicare-backend/internal/types"
)

const avatarSize = 512

var defaultAvatarColors = []color.NRGBA{
  {R: 0x1E, G: 0x88, B: 0xE5, A: 0xFF},
  {R: 0x43, G: 0xA0, B: 0x47, A: 0xFF},
  {R: 0x8E, G: 0x24, B: 0xAA, A: 0xFF},
  {R: 0xF4, G: 0x51, B: 0x1E, A: 0xFF},
  {R: 0x00, G: 0x89, B: 0x7B, A: 0xFF},
}

type AvatarService interface {
  CreateAndUploadDoctorAvatar(ctx context.Context, doctor *types.Doctor) error
  GenerateDoctorAvatar(ctx context.Context, doctor *types.Doctor) (bytes.Buffer, error)
}

type avatarService struct {
  log             *logger.Logger
  bucketService   BucketService
  bgColors        []color.NRGBA
  fontFace        font.Face
}

// NewAvatarService renders initials avatars. Empty paths fall back to a built-in
// palette and gg's default font.
func NewAvatarService(log *logger.Logger, bucketService BucketService, colorsJSONPath, fontPath string) (AvatarService, error) {
  serviceLog := log.With("service", "AvatarService")

  bgColors := defaultAvatarColors
  if colorsJSONPath != "" {
    serviceLog.Info("Loading avatar colors from JSON file", "path", colorsJSONPath)
    loaded, err := loadColorsFromFile(colorsJSONPath)
    if err != nil {
      return nil, fmt.Errorf("could not load avatar colors: %w", err)
    }
    if len(loaded) > 0 {
      bgColors = loaded
    }
  }

  var face font.Face
  if fontPath != "" {
    serviceLog.Info("Loading avatar font from TTF file", "font", fontPath)
    f, err := loadFontFace(fontPath, 206)
    if err != nil {
      return nil, fmt.Errorf("could not load avatar font: %w", err)
    }
    face = f
  }

  return &avatarService{
    log:            serviceLog,
    bucketService:  bucketService,
    bgColors:       bgColors,
    fontFace:       face,
  }, nil
}

func (as *avatarService) CreateAndUploadDoctorAvatar(ctx context.Context, doctor *types.Doctor) error {
  if as.bucketService == nil {
    as.log.Debug("No bucket configured, skipping doctor avatar")
    return nil
  }
  buf, err := as.GenerateDoctorAvatar(ctx, doctor)
  if err != nil {
    return err
  }
  bucketKey := fmt.Sprintf("doctor_avatars/%d.png", doctor.ID)
  if err := as.bucketService.UploadFile(ctx, bucketKey, bytes.NewReader(buf.Bytes()), "image/png"); err != nil {
    return fmt.Errorf("failed to upload doctor avatar: %w", err)
  }
  doctor.AvatarBucketKey = bucketKey
  doctor.AvatarURL = as.bucketService.GetPublicURL(bucketKey)
  return nil
}

func (as *avatarService) GenerateDoctorAvatar(ctx context.Context, doctor *types.Doctor) (bytes.Buffer, error) {
  dc := gg.NewContext(avatarSize, avatarSize)

  dc.DrawCircle(avatarSize/2, avatarSize/2, avatarSize/2)
  dc.Clip()

  dc.SetColor(as.bgColors[rand.Intn(len(as.bgColors))])
  dc.DrawRectangle(0, 0, avatarSize, avatarSize)
  dc.Fill()

  if as.fontFace != nil {
    dc.SetFontFace(as.fontFace)
  }
  dc.SetColor(color.White)
  dc.DrawStringAnchored(computeInitials(doctor.Name), avatarSize/2, avatarSize/2, 0.5, 0.5)

  var buf bytes.Buffer
  if err := dc.EncodePNG(&buf); err != nil {
    return buf, fmt.Errorf("failed to encode PNG: %w", err)
  }
  return buf, nil
}

//----------------------------------------------------------------------------------------
// Helpers
//----------------------------------------------------------------------------------------

// computeInitials skips a leading "Dr." title, e.g. "Dr. Asha Rao" -> "AR".
func computeInitials(name string) string {
  parts := strings.Fields(name)
  if len(parts) > 1 && strings.EqualFold(strings.TrimSuffix(parts[0], "."), "dr") {
    parts = parts[1:]
  }
  if len(parts) == 0 {
    return "?"
  }
  initials := strings.ToUpper(parts[0][:1])
  if len(parts) > 1 {
    initials += strings.ToUpper(parts[len(parts)-1][:1])
  }
  return initials
}

func loadColorsFromFile(jsonPath string) ([]color.NRGBA, error) {
  data, err := os.ReadFile(jsonPath)
  if err != nil {
    return nil, fmt.Errorf("read file error: %w", err)
  }
  var colors []color.NRGBA
  if err := json.Unmarshal(data, &colors); err != nil {
    return nil, fmt.Errorf("json unmarshal error: %w", err)
  }
  return colors, nil
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
  fontBytes, err := os.ReadFile(fontPath)
  if err != nil {
    return nil, fmt.Errorf("failed to read font file: %w", err)
  }
  parsedFont, err := truetype.Parse(fontBytes)
  if err != nil {
    return nil, fmt.Errorf("failed to parse TTF: %w", err)
  }
  return truetype.NewFace(parsedFont, &truetype.Options{
    Size:     size,
    DPI:      72,
    Hinting:  font.HintingNone,
  }), nil
}

