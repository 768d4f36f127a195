package wire

import (
	"errors"
	"fmt"
)

// ErrNotEnoughData is returned when a read runs past the end of a Message's
// buffer.
var ErrNotEnoughData = errors.New("wire: not enough data in message buffer")

// ErrSequenceTooLong is returned when a sequence count exceeds 0x3FFF on
// encode, or the decoded count-prefix byte uses the reserved 0b11 pattern.
var ErrSequenceTooLong = errors.New("wire: sequence length exceeds 0x3FFF")

// ErrFrameTooLong is returned when a Message's serialized payload would
// exceed the 16-bit frame length field.
var ErrFrameTooLong = errors.New("wire: frame payload exceeds 65535 bytes")

func unsupportedValueError(v any) error {
	return fmt.Errorf("wire: unsupported value type %T", v)
}
