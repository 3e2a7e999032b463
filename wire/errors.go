package wire

import "github.com/pkg/errors"

func errNameTooLarge(n int) error    { return errors.Errorf("name length %d exceeds %d", n, MaxNameLen) }
func errPayloadTooLarge(n int) error { return errors.Errorf("payload length %d exceeds %d", n, MaxPayloadLen) }
func errBufferTooSmall(need, got int) error {
	return errors.Errorf("buffer too small: need %d, got %d", need, got)
}
func simpleErr(msg string) error { return errors.New(msg) }
