package shuffle

import "github.com/pkg/errors"

func errMissingPLFSRoot() error {
	return errors.New("SHUFFLE_Plfsdir_root must be set before a ShuffleCtx can be built")
}

func errMissingNexus() error {
	return errors.New("3H topology selected but no Nexus was supplied")
}

func errAlreadyInitialized() error {
	return errors.New("shuffle.Init called twice without an intervening Finalize")
}
