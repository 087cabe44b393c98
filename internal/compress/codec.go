package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
)

var ErrUnknownCodec = errors.New("unknown codec")

// Codec losslessly and deterministically compresses a byte sequence.
type Codec interface {
	Name() string
	Compress(data []byte) ([]byte, error)
}

// Decompressor is implemented by codecs that can invert their own output.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

const (
	DeflateName = "deflate"
	ZstdName    = "zstd"
)

// DefaultCodec is the raw deflate stream at its best compression level.
func DefaultCodec() Codec { return Deflate{} }

// CodecNames lists the accepted codec names.
func CodecNames() []string { return []string{DeflateName, ZstdName} }

func CodecByName(name string) (Codec, error) {
	switch name {
	case "", DeflateName:
		return Deflate{}, nil
	case ZstdName:
		return Zstd{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, name)
	}
}

// Deflate is a raw DEFLATE stream (no zlib/gzip framing).
type Deflate struct{}

func (Deflate) Name() string { return DeflateName }

func (Deflate) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("create deflate writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("deflate write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("deflate close: %w", err)
	}
	return buf.Bytes(), nil
}

func (Deflate) Decompress(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	return out, nil
}

// Zstd is a single-frame zstd stream at the best compression level.
type Zstd struct{}

func (Zstd) Name() string { return ZstdName }

func (Zstd) Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedBestCompression),
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderCRC(false),
	)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, make([]byte, 0, len(data))), nil
}

func (Zstd) Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	return out, nil
}
