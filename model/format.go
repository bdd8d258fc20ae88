package model

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/ngramfeat/codec"
	"github.com/hupe1980/ngramfeat/features"
	"github.com/hupe1980/ngramfeat/internal/conv"
	"github.com/hupe1980/ngramfeat/internal/hash"
	"github.com/hupe1980/ngramfeat/spec"
)

const (
	// Magic opens every model file.
	Magic = "NGFM"
	// Version is the file format version written by Encode.
	Version uint16 = 1
)

var (
	// ErrBadMagic is returned when data does not start with Magic.
	ErrBadMagic = errors.New("model: not a model file")
	// ErrUnsupportedVersion is returned for files of a newer format version.
	ErrUnsupportedVersion = errors.New("model: unsupported format version")
	// ErrUnsupportedCompression is returned for unknown compression ids.
	ErrUnsupportedCompression = errors.New("model: unsupported compression")
	// ErrUnknownCodec is returned when the header codec is not built in.
	ErrUnknownCodec = errors.New("model: unknown header codec")
	// ErrChecksum is returned when the trailing crc32c does not match.
	ErrChecksum = errors.New("model: checksum mismatch")
	// ErrCorrupt is returned for structurally invalid files.
	ErrCorrupt = errors.New("model: corrupt file")
)

// header is the codec-encoded part of a model file.
type header struct {
	Name       string           `json:"name" msgpack:"name"`
	Spec       spec.FeatureSpec `json:"spec" msgpack:"spec"`
	Required   []string         `json:"required" msgpack:"required"`
	NumWeights uint32           `json:"num_weights" msgpack:"num_weights"`
}

type encodeOptions struct {
	compression Compression
	codec       codec.Codec
}

// EncodeOption configures Encode and Save.
type EncodeOption func(*encodeOptions)

// WithCompression selects the weight block compression. Default is zstd.
func WithCompression(c Compression) EncodeOption {
	return func(o *encodeOptions) { o.compression = c }
}

// WithCodec selects the header codec. Default is codec.Default.
func WithCodec(c codec.Codec) EncodeOption {
	return func(o *encodeOptions) { o.codec = c }
}

// Encode writes m to w.
func Encode(w io.Writer, m *Model, opts ...EncodeOption) error {
	o := encodeOptions{compression: CompressionZstd, codec: codec.Default}
	for _, opt := range opts {
		opt(&o)
	}
	if _, ok := codec.ByName(o.codec.Name()); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCodec, o.codec.Name())
	}
	if len(o.codec.Name()) > math.MaxUint8 {
		return fmt.Errorf("%w: codec name too long", ErrUnknownCodec)
	}

	numWeights, err := conv.IntToUint32(len(m.Weights))
	if err != nil {
		return err
	}
	h := header{Name: m.Name, Spec: m.Spec, NumWeights: numWeights}
	for _, c := range m.required {
		h.Required = append(h.Required, c.String())
	}
	hdr, err := o.codec.Marshal(&h)
	if err != nil {
		return fmt.Errorf("model: encode header: %w", err)
	}

	raw := make([]byte, 4*len(m.Weights))
	for i, v := range m.Weights {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(v))
	}
	body, err := compressBlock(raw, o.compression)
	if err != nil {
		return err
	}

	hdrLen, err := conv.IntToUint32(len(hdr))
	if err != nil {
		return err
	}
	bodyLen, err := conv.IntToUint32(len(body))
	if err != nil {
		return err
	}

	buf := make([]byte, 0, len(Magic)+4+len(o.codec.Name())+8+len(hdr)+len(body)+4)
	buf = append(buf, Magic...)
	buf = binary.LittleEndian.AppendUint16(buf, Version)
	buf = append(buf, byte(o.compression), byte(len(o.codec.Name())))
	buf = append(buf, o.codec.Name()...)
	buf = binary.LittleEndian.AppendUint32(buf, hdrLen)
	buf = append(buf, hdr...)
	buf = binary.LittleEndian.AppendUint32(buf, bodyLen)
	buf = append(buf, body...)
	buf = binary.LittleEndian.AppendUint32(buf, hash.CRC32C(buf))

	_, err = w.Write(buf)
	return err
}

// Decode parses a model file. data is not retained.
func Decode(data []byte) (*Model, error) {
	if len(data) < len(Magic) || string(data[:len(Magic)]) != Magic {
		return nil, ErrBadMagic
	}
	if len(data) < len(Magic)+4+4 {
		return nil, fmt.Errorf("%w: truncated preamble", ErrCorrupt)
	}

	payload := data[:len(data)-4]
	if got, want := hash.CRC32C(payload), binary.LittleEndian.Uint32(data[len(data)-4:]); got != want {
		return nil, fmt.Errorf("%w: got %08x, want %08x", ErrChecksum, got, want)
	}

	r := reader{buf: payload, off: len(Magic)}
	version := r.u16()
	if r.err == nil && version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	compression := Compression(r.u8())
	codecName := string(r.bytes(int(r.u8())))
	hdr := r.bytes(int(r.u32()))
	body := r.bytes(int(r.u32()))
	if r.err != nil {
		return nil, r.err
	}
	if r.off != len(payload) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(payload)-r.off)
	}

	c, ok := codec.ByName(codecName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, codecName)
	}
	var h header
	if err := c.Unmarshal(hdr, &h); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrCorrupt, err)
	}

	raw, err := decompressBlock(body, compression)
	if err != nil {
		return nil, err
	}
	if uint64(len(raw)) != 4*uint64(h.NumWeights) {
		return nil, fmt.Errorf("%w: %d weight bytes for %d weights", ErrCorrupt, len(raw), h.NumWeights)
	}
	weights := make([]float32, h.NumWeights)
	for i := range weights {
		weights[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}

	required := make([]features.Capability, 0, len(h.Required))
	for _, s := range h.Required {
		capability, err := features.ParseCapability(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		required = append(required, capability)
	}
	if len(required) == 0 {
		return nil, fmt.Errorf("%w: no required capabilities", ErrCorrupt)
	}

	return New(h.Name, h.Spec, weights, required...)
}

// reader is a bounds-checked cursor. The first failure sticks and later
// reads return zero values.
type reader struct {
	buf []byte
	off int
	err error
}

func (r *reader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > len(r.buf)-r.off {
		r.err = fmt.Errorf("%w: truncated at offset %d", ErrCorrupt, r.off)
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) u8() uint8 {
	b := r.bytes(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) u16() uint16 {
	b := r.bytes(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *reader) u32() uint32 {
	b := r.bytes(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}
