package ngramfeat

import (
	"errors"
	"fmt"

	"github.com/hupe1980/ngramfeat/analysis"
	"github.com/hupe1980/ngramfeat/blobstore"
	"github.com/hupe1980/ngramfeat/features"
	"github.com/hupe1980/ngramfeat/model"
	"github.com/hupe1980/ngramfeat/spec"
)

var (
	// ErrModelNotFound is returned when the model blob does not exist.
	ErrModelNotFound = errors.New("model not found")

	// ErrCorruptModel is returned when a model file cannot be decoded.
	ErrCorruptModel = errors.New("corrupt model")

	// ErrClosed is returned by an Engine after Close.
	ErrClosed = errors.New("engine closed")

	// ErrMissingCapability is returned when a model requires a capability
	// that neither static nor dynamic features provide.
	ErrMissingCapability = features.ErrMissingCapability

	// ErrInvalidSpec is returned for feature specs that fail validation.
	ErrInvalidSpec = spec.ErrInvalidSpec

	// ErrInvalidLattice is returned for lattices that do not fit the model.
	ErrInvalidLattice = analysis.ErrInvalidLattice

	// ErrNoPath is returned when a lattice has no complete path.
	ErrNoPath = analysis.ErrNoPath
)

// ErrCapability reports the capability that could not be resolved.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrCapability struct {
	Capability features.Capability
	cause      error
}

func (e *ErrCapability) Error() string {
	return fmt.Sprintf("capability %s unavailable: %v", e.Capability, e.cause)
}

func (e *ErrCapability) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, blobstore.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrModelNotFound, err)
	}

	for _, corrupt := range []error{
		model.ErrBadMagic,
		model.ErrChecksum,
		model.ErrCorrupt,
		model.ErrUnsupportedVersion,
		model.ErrUnsupportedCompression,
		model.ErrUnknownCodec,
	} {
		if errors.Is(err, corrupt) {
			return fmt.Errorf("%w: %w", ErrCorruptModel, err)
		}
	}

	var mce *features.MissingCapabilityError
	if errors.As(err, &mce) {
		return &ErrCapability{Capability: mce.Capability, cause: err}
	}

	return err
}
