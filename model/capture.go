package model

import "go/ast"

// CaptureKind enumerates the four ways a resumable lambda can pull state
// from its enclosing scope, the Go realization of spec §3's capture kinds.
type CaptureKind int

const (
	// ByValue captures a name from the enclosing scope by copy into the
	// capture record. Go closures capture by reference implicitly; a
	// by-value capture is modeled as an explicit copy taken at
	// construction time.
	ByValue CaptureKind = iota
	// ByReference captures a name by reference (a pointer field in the
	// capture record).
	ByReference
	// InitCapture captures the value of an initializer expression,
	// evaluated once at construction, independent of any enclosing name.
	InitCapture
	// ThisCapture captures the enclosing method's receiver, referenced
	// in the lambda body via resume.This.
	ThisCapture
)

func (k CaptureKind) String() string {
	switch k {
	case ByValue:
		return "by-value"
	case ByReference:
		return "by-reference"
	case InitCapture:
		return "init-capture"
	case ThisCapture:
		return "this-capture"
	default:
		return "unknown"
	}
}

// Capture is one entry of a lambda's ordered capture sequence.
type Capture struct {
	Kind     CaptureKind `yaml:"kind"`
	Name     string      `yaml:"name,omitempty"`
	TypeText string      `yaml:"type"`
	InitText string      `yaml:"init,omitempty"`
	Expr     ast.Expr    `yaml:"-"`
}

// FieldName returns the capture record field name for this capture.
func (c Capture) FieldName() string {
	if c.Kind == ThisCapture {
		return "capturedThis"
	}
	return c.Name
}

// Param is one parameter of a lambda's call signature.
type Param struct {
	Name     string `yaml:"name"`
	TypeText string `yaml:"type"`
}

// Signature is a resumable lambda's call operator signature. ReturnType
// is empty when the user did not write an explicit return type and the
// yield sites must be consulted (deduced).
type Signature struct {
	Params     []Param `yaml:"params"`
	ReturnType string  `yaml:"returnType,omitempty"`
}
