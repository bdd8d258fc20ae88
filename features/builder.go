package features

import (
	"errors"
	"log/slog"

	"github.com/hupe1980/ngramfeat/spec"
)

var errNoSpec = errors.New("model carries no feature spec")

type buildOptions struct {
	logger *slog.Logger
}

// BuildOption configures MakeFeatures.
type BuildOption func(*buildOptions)

// WithLogger logs the resolution of every capability to l.
func WithLogger(l *slog.Logger) BuildOption {
	return func(o *buildOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// MakeFeatures resolves the feature set of c.
//
// Per capability the static implementation of sff is active when sff is
// non-nil (a nil *StaticSet counts as nil), provides it, and its RuntimeHash equals c.RuntimeHash(). Otherwise
// the dynamic implementation built from c.FeatureSpec() is active. The
// holder is validated against c.Required(); on failure MakeFeatures returns
// nil and a *MissingCapabilityError.
func MakeFeatures(c Container, sff StaticFactory, opts ...BuildOption) (*Holder, error) {
	o := buildOptions{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	if st, ok := sff.(*StaticSet); ok && st == nil {
		sff = nil
	}

	useStatic := false
	if sff != nil {
		useStatic = sff.RuntimeHash() == c.RuntimeHash()
		if !useStatic {
			o.logger.Warn("static features do not match model, using dynamic features",
				"static_hash", sff.RuntimeHash(), "model_hash", c.RuntimeHash())
		}
	}

	fs := c.FeatureSpec()
	dynErr := errNoSpec
	if fs != nil {
		dynErr = fs.Validate()
	}
	if dynErr != nil && fs != nil {
		o.logger.Warn("feature spec rejected, dynamic features unavailable", "error", dynErr)
	}

	h := &Holder{}
	dyn := dynamicSet{}
	if dynErr == nil {
		dyn = newDynamicSet(fs)
	}

	var st StaticSet
	if sff != nil {
		st = StaticSet{
			PrimitiveImpl:    sff.Primitive(),
			ComputeImpl:      sff.Compute(),
			PatternImpl:      sff.Pattern(),
			NgramImpl:        sff.Ngram(),
			PartialNgramImpl: sff.PartialNgram(),
		}
	}

	h.Primitive.resolve(st.PrimitiveImpl, dyn.primitive, useStatic, st.PrimitiveImpl != nil, dyn.primitive != nil)
	h.Compute.resolve(st.ComputeImpl, dyn.compute, useStatic, st.ComputeImpl != nil, dyn.compute != nil)
	h.Pattern.resolve(st.PatternImpl, dyn.pattern, useStatic, st.PatternImpl != nil, dyn.pattern != nil)
	h.Ngram.resolve(st.NgramImpl, dyn.ngram, useStatic, st.NgramImpl != nil, dyn.ngram != nil)
	h.PartialNgram.resolve(st.PartialNgramImpl, dyn.partial, useStatic, st.PartialNgramImpl != nil, dyn.partial != nil)

	for _, capability := range AllCapabilities {
		o.logger.Debug("feature capability resolved", "capability", capability.String(), "selection", h.Selection(capability).String())
	}

	if err := h.Validate(c.Required()); err != nil {
		var mce *MissingCapabilityError
		if errors.As(err, &mce) {
			mce.Cause = dynErr
		}
		o.logger.Error("feature resolution failed", "error", err)
		return nil, err
	}
	return h, nil
}

// dynamicSet holds typed dynamic implementations. Nil fields stay nil
// interfaces so that resolution sees them as absent.
type dynamicSet struct {
	primitive PrimitiveApply
	compute   ComputeApply
	pattern   PatternApply
	ngram     NgramApply
	partial   PartialNgramApply
}

func newDynamicSet(fs *spec.FeatureSpec) dynamicSet {
	return dynamicSet{
		primitive: NewDynamicPrimitive(fs),
		compute:   NewDynamicCompute(fs),
		pattern:   NewDynamicPattern(fs),
		ngram:     NewDynamicNgram(fs),
		partial:   NewDynamicPartialNgram(fs),
	}
}
