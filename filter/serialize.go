package filter

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/alecthomas/binary"
)

// serializeVersion is the current wire format version.
const serializeVersion uint8 = 1

var (
	// ErrInvalidData signals corrupted or truncated serialized data.
	ErrInvalidData = errors.New("invalid serialized filter data")

	// ErrUnsupportedVersion signals an unknown wire format version.
	ErrUnsupportedVersion = errors.New("unsupported serialization version")
)

// envelope is the on-wire form of a filter. The key digests are not
// part of it, the reader restores them via construction options.
type envelope struct {
	Version     uint8
	SubFilters  uint64
	PatternBits uint32
	Count       uint64
	Words       []uint64
}

// MarshalBinary serializes the filter. The filter must be quiescent,
// pending asynchronous operations have to be synced first.
func (f *Filter[K]) MarshalBinary() ([]byte, error) {
	env := envelope{
		Version:     serializeVersion,
		SubFilters:  uint64(f.NumSubFilters()),
		PatternBits: uint32(f.k),
		Count:       f.count.Load(),
		Words:       f.ref.Data(),
	}

	var buf bytes.Buffer
	if err := binary.NewEncoder(&buf).Encode(&env); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal deserializes a filter. Options are applied as in New, so a
// caller that built the original with custom hashers passes the same
// ones here; the pattern bit count is always taken from the data.
func Unmarshal[K any](data []byte, opts ...Option[K]) (*Filter[K], error) {
	var env envelope
	if err := binary.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if env.Version != serializeVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, env.Version, serializeVersion)
	}
	if env.SubFilters == 0 || uint64(len(env.Words)) != env.SubFilters*WordsPerSubFilter {
		return nil, fmt.Errorf("%w: %d words for %d sub-filters", ErrInvalidData, len(env.Words), env.SubFilters)
	}

	opts = append(opts, WithPatternBits[K](int(env.PatternBits)))
	f := New[K](int(env.SubFilters), opts...)
	copy(f.storage.Data(), env.Words)
	f.count.Store(env.Count)
	return f, nil
}
