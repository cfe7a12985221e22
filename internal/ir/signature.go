package ir

// Signature is a function's parameter and return types.
type Signature struct {
	Params  []Type
	Returns []Type
}

// NewSignature builds a Signature from explicit param/return types.
func NewSignature(params, returns []Type) Signature {
	return Signature{Params: params, Returns: returns}
}

// EmptySignature returns a signature with no parameters and no returns.
func EmptySignature() Signature {
	return Signature{}
}

// ParamCount returns the number of parameters.
func (s Signature) ParamCount() int { return len(s.Params) }

// ReturnCount returns the number of return values.
func (s Signature) ReturnCount() int { return len(s.Returns) }
