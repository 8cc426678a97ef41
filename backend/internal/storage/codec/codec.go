// Package codec turns a snapshot into the bytes every store persists.
//
// Layout of an encoded snapshot:
//
//	magic    4 bytes  "PRLY"
//	version  1 byte
//	compress 1 byte   CompressionTag
//	checksum 32 bytes blake3 of the payload as stored
//	payload  CBOR (Core Deterministic Encoding), optionally zstd-compressed
//
// The checksum is verified before decompression so a torn write is reported
// as corruption instead of a decoder panic deep inside zstd or cbor.
package codec

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"github.com/parley-chat/parley/shared/domain"
)

var magic = []byte("PRLY")

const (
	version    = 1
	headerSize = 4 + 1 + 1 + 32
)

var ErrCorrupt = errors.New("snapshot corrupt")

// CompressionTag identifies how the payload is compressed. Values are stored
// on disk, do not renumber.
type CompressionTag uint8

const (
	CompressionNone CompressionTag = 0
	CompressionZstd CompressionTag = 1
)

func (tag CompressionTag) String() string {
	switch tag {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", tag)
	}
}

func ParseCompressionTag(name string) (CompressionTag, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "zstd", "":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression: %q", name)
	}
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode

	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
	// EncodeAll/DecodeAll are safe for concurrent use on a shared instance.
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("codec: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("codec: zstd decoder initialization failed: " + err.Error())
	}
}

type Codec struct {
	compression CompressionTag
}

func New(compression CompressionTag) *Codec {
	return &Codec{compression: compression}
}

func (c *Codec) Encode(s *domain.Snapshot) ([]byte, error) {
	payload, err := encMode.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if c.compression == CompressionZstd {
		payload = zstdEncoder.EncodeAll(payload, make([]byte, 0, len(payload)/2))
	}
	sum := blake3.Sum256(payload)

	out := make([]byte, 0, headerSize+len(payload))
	out = append(out, magic...)
	out = append(out, version, byte(c.compression))
	out = append(out, sum[:]...)
	out = append(out, payload...)
	return out, nil
}

// Decode accepts data written with any compression setting.
func (c *Codec) Decode(data []byte) (*domain.Snapshot, error) {
	if len(data) < headerSize || !bytes.Equal(data[:4], magic) {
		return nil, fmt.Errorf("%w: bad header", ErrCorrupt)
	}
	if data[4] != version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, data[4])
	}
	tag := CompressionTag(data[5])
	payload := data[headerSize:]
	sum := blake3.Sum256(payload)
	if !bytes.Equal(sum[:], data[6:headerSize]) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}

	switch tag {
	case CompressionNone:
	case CompressionZstd:
		raw, err := zstdDecoder.DecodeAll(payload, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		payload = raw
	default:
		return nil, fmt.Errorf("%w: compression %s", ErrCorrupt, tag)
	}

	s := &domain.Snapshot{}
	if err := decMode.Unmarshal(payload, s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	s.Normalize()
	return s, nil
}

// Clone deep-copies a snapshot through the encoder.
func (c *Codec) Clone(s *domain.Snapshot) (*domain.Snapshot, error) {
	data, err := c.Encode(s)
	if err != nil {
		return nil, err
	}
	return c.Decode(data)
}
