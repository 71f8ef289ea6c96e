package coloring

import (
	"encoding/binary"
	"fmt"
	"image"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Snapshot layout: "CFSN" | version (1 byte) | width (u32 BE) | height (u32 BE) | zstd(Pix).
const (
	snapshotMagic     = "CFSN"
	snapshotVersion   = 1
	snapshotHeaderLen = 4 + 1 + 4 + 4
	// maxSnapshotPixels bounds the allocation a hostile header can request.
	maxSnapshotPixels = 1 << 26
)

type sharedZstdEncoder struct {
	once sync.Once
	mu   sync.Mutex
	enc  *zstd.Encoder
	err  error
}

func (p *sharedZstdEncoder) use(fn func(*zstd.Encoder) error) error {
	p.once.Do(func() {
		p.enc, p.err = zstd.NewWriter(nil,
			zstd.WithEncoderConcurrency(1),
			zstd.WithEncoderLevel(zstd.SpeedDefault))
	})
	if p.err != nil {
		return p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return fn(p.enc)
}

type sharedZstdDecoder struct {
	once sync.Once
	mu   sync.Mutex
	dec  *zstd.Decoder
	err  error
}

func (p *sharedZstdDecoder) use(fn func(*zstd.Decoder) error) error {
	p.once.Do(func() {
		p.dec, p.err = zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxMemory(uint64(maxSnapshotPixels)*4))
	})
	if p.err != nil {
		return p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return fn(p.dec)
}

var (
	snapshotEncoder sharedZstdEncoder
	snapshotDecoder sharedZstdDecoder
)

// EncodeSnapshot serializes a canvas buffer for save points and the
// history persistence hook.
func EncodeSnapshot(buf *image.NRGBA) ([]byte, error) {
	if buf == nil {
		return nil, fmt.Errorf("encode snapshot: nil buffer")
	}
	w, h := buf.Rect.Dx(), buf.Rect.Dy()
	pix := buf.Pix
	if buf.Stride != w*4 {
		pix = ToNRGBA(buf).Pix
	}
	out := make([]byte, snapshotHeaderLen, snapshotHeaderLen+len(pix)/4)
	copy(out, snapshotMagic)
	out[4] = snapshotVersion
	binary.BigEndian.PutUint32(out[5:9], uint32(w))
	binary.BigEndian.PutUint32(out[9:13], uint32(h))
	err := snapshotEncoder.use(func(enc *zstd.Encoder) error {
		out = enc.EncodeAll(pix[:w*h*4], out)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("zstd encode: %w", err)
	}
	return out, nil
}

// RestoreSnapshot rehydrates a serialized canvas. It returns (nil, nil) when
// data is empty so the caller falls back to the freshly decoded image.
func RestoreSnapshot(data []byte) (*image.NRGBA, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) < snapshotHeaderLen || string(data[:4]) != snapshotMagic {
		return nil, fmt.Errorf("%w: bad header", ErrCorruptSnapshot)
	}
	if data[4] != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptSnapshot, data[4])
	}
	w := int(binary.BigEndian.Uint32(data[5:9]))
	h := int(binary.BigEndian.Uint32(data[9:13]))
	if w <= 0 || h <= 0 || w > maxSnapshotPixels || h > maxSnapshotPixels || w*h > maxSnapshotPixels {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrCorruptSnapshot, w, h)
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	err := snapshotDecoder.use(func(dec *zstd.Decoder) error {
		pix, derr := dec.DecodeAll(data[snapshotHeaderLen:], img.Pix[:0])
		if derr != nil {
			return derr
		}
		if len(pix) != w*h*4 {
			return fmt.Errorf("payload is %d bytes, want %d", len(pix), w*h*4)
		}
		img.Pix = pix
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return img, nil
}
