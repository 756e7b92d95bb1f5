package config

// DumpFileExtensions are the recognized parser tree dump extensions.
var DumpFileExtensions = []string{".yaml", ".yml"}

// IsTestMode indicates if the checker is running under `go test`-driven tooling.
// It disables terminal styling in report output.
var IsTestMode = false

// Built-in type names
const (
	NilTypeName     = "nil"
	BooleanTypeName = "boolean"
	NumberTypeName  = "number"
	IntegerTypeName = "integer"
	StringTypeName  = "string"
	UnknownTypeName = "unknown"
	AnyTypeName     = "any"
	NeverTypeName   = "never"
	VoidTypeName    = "void"
	TableTypeName   = "table"
)

// Receiver keywords
const (
	SelfName        = "self"
	SuperName       = "super"
	ConstructorName = "constructor"
)

// Utility type names
const (
	PartialTypeName    = "Partial"
	RequiredTypeName   = "Required"
	ReadonlyTypeName   = "Readonly"
	RecordTypeName     = "Record"
	PickTypeName       = "Pick"
	OmitTypeName       = "Omit"
	ExcludeTypeName    = "Exclude"
	ExtractTypeName    = "Extract"
	NonNilableTypeName = "NonNilable"
	NilableTypeName    = "Nilable"
	ReturnTypeTypeName = "ReturnType"
	ParametersTypeName = "Parameters"
	KeyOfTypeName      = "KeyOf"
)

// Built-in function names
const (
	TypeFuncName     = "type"
	PrintFuncName    = "print"
	ToStringFuncName = "tostring"
	ToNumberFuncName = "tonumber"
	ErrorFuncName    = "error"
	AssertFuncName   = "assert"
	PairsFuncName    = "pairs"
	IPairsFuncName   = "ipairs"
	SelectFuncName   = "select"
)

// Runtime type names returned by type(x)
const (
	RuntimeNil      = "nil"
	RuntimeBoolean  = "boolean"
	RuntimeNumber   = "number"
	RuntimeString   = "string"
	RuntimeTable    = "table"
	RuntimeFunction = "function"
)
