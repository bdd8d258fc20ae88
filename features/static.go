package features

// StaticFactory supplies implementations generated for one feature spec.
// Accessors return nil for capabilities that were not generated.
type StaticFactory interface {
	RuntimeHash() uint64
	Primitive() PrimitiveApply
	Compute() ComputeApply
	Pattern() PatternApply
	Ngram() NgramApply
	PartialNgram() PartialNgramApply
}

// StaticSet is a StaticFactory backed by plain fields.
type StaticSet struct {
	Hash             uint64
	PrimitiveImpl    PrimitiveApply
	ComputeImpl      ComputeApply
	PatternImpl      PatternApply
	NgramImpl        NgramApply
	PartialNgramImpl PartialNgramApply
}

var _ StaticFactory = (*StaticSet)(nil)

// The accessors accept a nil receiver, which provides nothing.

func (s *StaticSet) RuntimeHash() uint64 {
	if s == nil {
		return 0
	}
	return s.Hash
}

func (s *StaticSet) Primitive() PrimitiveApply {
	if s == nil {
		return nil
	}
	return s.PrimitiveImpl
}

func (s *StaticSet) Compute() ComputeApply {
	if s == nil {
		return nil
	}
	return s.ComputeImpl
}

func (s *StaticSet) Pattern() PatternApply {
	if s == nil {
		return nil
	}
	return s.PatternImpl
}

func (s *StaticSet) Ngram() NgramApply {
	if s == nil {
		return nil
	}
	return s.NgramImpl
}

func (s *StaticSet) PartialNgram() PartialNgramApply {
	if s == nil {
		return nil
	}
	return s.PartialNgramImpl
}
