package filter

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"unsafe"

	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"
)

// HashFn is a function that digests 't' into 64 bits.
type HashFn[T any] func(t T) uint64

// GetHashers returns the default digest pair for the golang default
// types. The route digest (xxh3) selects the sub-filter, the pattern
// digest (murmur3) seeds the bit pattern; using two independent hash
// families keeps the two decisions uncorrelated.
func GetHashers[Key any]() (route, pattern HashFn[Key]) {
	var key Key
	kind := reflect.ValueOf(&key).Elem().Type().Kind()

	switch kind {
	case reflect.Int, reflect.Uint, reflect.Uintptr:
		switch unsafe.Sizeof(key) {
		case 4:
			return *(*HashFn[Key])(unsafe.Pointer(&routeDword)),
				*(*HashFn[Key])(unsafe.Pointer(&patternDword))
		case 8:
			return *(*HashFn[Key])(unsafe.Pointer(&routeQword)),
				*(*HashFn[Key])(unsafe.Pointer(&patternQword))

		default:
			panic("unsupported integer byte size")
		}

	case reflect.Int8, reflect.Uint8:
		return *(*HashFn[Key])(unsafe.Pointer(&routeByte)),
			*(*HashFn[Key])(unsafe.Pointer(&patternByte))
	case reflect.Int16, reflect.Uint16:
		return *(*HashFn[Key])(unsafe.Pointer(&routeWord)),
			*(*HashFn[Key])(unsafe.Pointer(&patternWord))
	case reflect.Int32, reflect.Uint32:
		return *(*HashFn[Key])(unsafe.Pointer(&routeDword)),
			*(*HashFn[Key])(unsafe.Pointer(&patternDword))
	case reflect.Int64, reflect.Uint64:
		return *(*HashFn[Key])(unsafe.Pointer(&routeQword)),
			*(*HashFn[Key])(unsafe.Pointer(&patternQword))
	case reflect.Float32:
		return *(*HashFn[Key])(unsafe.Pointer(&routeFloat32)),
			*(*HashFn[Key])(unsafe.Pointer(&patternFloat32))
	case reflect.Float64:
		return *(*HashFn[Key])(unsafe.Pointer(&routeFloat64)),
			*(*HashFn[Key])(unsafe.Pointer(&patternFloat64))
	case reflect.String:
		return *(*HashFn[Key])(unsafe.Pointer(&routeString)),
			*(*HashFn[Key])(unsafe.Pointer(&patternString))

	default:
		panic(fmt.Sprintf("unsupported key type %T of kind %v", key, kind))
	}
}

// go:inline
func routeBits(key uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], key)
	return xxh3.Hash(b[:])
}

// go:inline
func patternBits(key uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], key)
	return murmur3.Sum64(b[:])
}

var routeByte = func(key uint8) uint64 { return routeBits(uint64(key)) }
var routeWord = func(key uint16) uint64 { return routeBits(uint64(key)) }
var routeDword = func(key uint32) uint64 { return routeBits(uint64(key)) }
var routeQword = func(key uint64) uint64 { return routeBits(key) }
var routeFloat32 = func(key float32) uint64 { return routeBits(uint64(math.Float32bits(key))) }
var routeFloat64 = func(key float64) uint64 { return routeBits(math.Float64bits(key)) }
var routeString = func(key string) uint64 { return xxh3.HashString(key) }

var patternByte = func(key uint8) uint64 { return patternBits(uint64(key)) }
var patternWord = func(key uint16) uint64 { return patternBits(uint64(key)) }
var patternDword = func(key uint32) uint64 { return patternBits(uint64(key)) }
var patternQword = func(key uint64) uint64 { return patternBits(key) }
var patternFloat32 = func(key float32) uint64 { return patternBits(uint64(math.Float32bits(key))) }
var patternFloat64 = func(key float64) uint64 { return patternBits(math.Float64bits(key)) }
var patternString = func(key string) uint64 { return murmur3.Sum64([]byte(key)) }
