package entity

import "errors"

var (
	// ErrNoImage возвращается, если в сессии нет загруженного снимка.
	ErrNoImage = errors.New("no image loaded")
	// ErrInvalidParams возвращается для параметров вне допустимых диапазонов.
	ErrInvalidParams = errors.New("invalid display parameters")
	// ErrUnsupportedType загружен файл не JPEG/PNG.
	ErrUnsupportedType = errors.New("unsupported image type")
)
