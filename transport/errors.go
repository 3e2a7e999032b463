package transport

import "github.com/pkg/errors"

func errNoReceiver(dst int) error {
	return errors.Errorf("no receiver registered for rank %d", dst)
}
