package dispatch

import "github.com/pkg/errors"

func srcDstMismatch(frameSrc, carrierSrc, frameDst, localRank int) error {
	return errors.Errorf("frame src/dst mismatch: frame says %d->%d, carrier/local says %d->%d",
		frameSrc, frameDst, carrierSrc, localRank)
}
