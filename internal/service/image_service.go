package service

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultImageMaxDimension 发送给协作方前图片的最长边
	DefaultImageMaxDimension = 800
	// AvatarMaxDimension 头像的最长边
	AvatarMaxDimension = 400

	jpegQuality     = 70
	maxUploadBytes  = 20 << 20
	maxImagePixels  = 40_000_000
	dataURLJPEGHead = "data:image/jpeg;base64,"
)

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// PreparedImage 压缩后的 JPEG 图片
type PreparedImage struct {
	DataURL string
	Width   int
	Height  int
}

// ImageService 负责上传图片的识别、缩放与重新编码。
type ImageService struct {
	maxDimension int
}

// NewImageService 构造 ImageService，maxDimension<=0 时使用 800。
func NewImageService(maxDimension int) *ImageService {
	if maxDimension <= 0 {
		maxDimension = DefaultImageMaxDimension
	}
	return &ImageService{maxDimension: maxDimension}
}

// PrepareMeal 将餐食照片压缩到配置的尺寸以内。
func (s *ImageService) PrepareMeal(r io.Reader) (PreparedImage, error) {
	return s.Prepare(r, s.maxDimension)
}

// PrepareAvatar 将头像压缩到 400px 以内。
func (s *ImageService) PrepareAvatar(r io.Reader) (PreparedImage, error) {
	return s.Prepare(r, AvatarMaxDimension)
}

// Prepare 识别图片类型并解码，按比例缩放到 maxDimension 以内，再编码为质量 70 的 JPEG data URL。
func (s *ImageService) Prepare(r io.Reader, maxDimension int) (PreparedImage, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxUploadBytes+1))
	if err != nil {
		return PreparedImage{}, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return PreparedImage{}, newValidationError("image", "Envie uma imagem da refeição.")
	}
	if len(data) > maxUploadBytes {
		return PreparedImage{}, newValidationError("image", "Imagem muito grande.")
	}

	detected := mimetype.Detect(data)
	if _, ok := allowedImageTypes[detected.String()]; !ok {
		return PreparedImage{}, newValidationError("image", "Formato de imagem não suportado.")
	}

	// 先读头部尺寸，避免小文件声明超大画布
	config, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return PreparedImage{}, newValidationError("image", "Não foi possível ler a imagem.")
	}
	if config.Width <= 0 || config.Height <= 0 || int64(config.Width)*int64(config.Height) > maxImagePixels {
		return PreparedImage{}, newValidationError("image", "Imagem muito grande.")
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return PreparedImage{}, newValidationError("image", "Formato de imagem não suportado.")
		}
		return PreparedImage{}, newValidationError("image", "Não foi possível ler a imagem.")
	}

	width, height := FitWithin(src.Bounds().Dx(), src.Bounds().Dy(), maxDimension)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	// JPEG 不支持透明通道，先铺白底
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return PreparedImage{}, fmt.Errorf("encode image: %w", err)
	}

	return PreparedImage{
		DataURL: dataURLJPEGHead + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:   width,
		Height:  height,
	}, nil
}

// FitWithin 按比例缩小 width×height 使两边都不超过 limit，不放大。
func FitWithin(width, height, limit int) (int, int) {
	if width <= 0 || height <= 0 {
		return 1, 1
	}
	if limit <= 0 || (width <= limit && height <= limit) {
		return width, height
	}
	if width >= height {
		scaled := height * limit / width
		if scaled < 1 {
			scaled = 1
		}
		return limit, scaled
	}
	scaled := width * limit / height
	if scaled < 1 {
		scaled = 1
	}
	return scaled, limit
}
