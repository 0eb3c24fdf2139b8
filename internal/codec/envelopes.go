// file: internal/codec/envelopes.go
package codec

// Discriminator values for the __tywrap__ field of a typed value envelope.
const (
	DiscNDArray   = "ndarray"
	DiscDataFrame = "dataframe"
	DiscSeries    = "series"
	DiscSparse    = "scipy.sparse"
	DiscTensor    = "torch.tensor"
	DiscEstimator = "sklearn.estimator"
)

// EnvelopeVersion is the codecVersion carried by every typed envelope.
const EnvelopeVersion = 1

// NDArray is a multi-dimensional numeric array value. Data holds the
// flattened (row-major) elements; Shape records the original dimensions.
type NDArray struct {
	Data  []float64
	Shape []int
	Dtype string
}

// Column is one named column of a DataFrame, holding its values in row
// order. Values are any JSON-representable scalar.
type Column struct {
	Name   string
	Values []any
}

// DataFrame is a tabular frame: an ordered set of equal-length columns.
type DataFrame struct {
	Columns []Column
}

// Series is a one-dimensional labeled vector.
type Series struct {
	Name   string
	Values []any
}

// SparseFormat is one of the three supported scipy.sparse storage layouts.
type SparseFormat string

// Supported sparse matrix formats.
const (
	SparseCSR SparseFormat = "csr"
	SparseCSC SparseFormat = "csc"
	SparseCOO SparseFormat = "coo"
)

// SparseMatrix is a two-dimensional sparse numeric matrix in CSR, CSC, or
// COO storage.
type SparseMatrix struct {
	Format SparseFormat
	Shape  [2]int
	Dtype  string

	// CSR/CSC fields.
	Data    []float64
	Indices []int
	Indptr  []int

	// COO fields.
	Row []int
	Col []int
}

// Tensor is a numeric, potentially GPU-resident tensor. The codec's
// Settings.TensorAllowCopy, set from startup configuration, governs whether
// a non-CPU or non-contiguous tensor may be copied to encode rather than
// failing outright.
type Tensor struct {
	Data       []float64
	Shape      []int
	Dtype      string
	Device     string
	Contiguous bool
}

// Estimator is a shallow parameter-map description of a fitted model
// object: its class name, defining module, and (optionally) the library
// version that produced it.
type Estimator struct {
	ClassName string
	Module    string
	Params    map[string]any
	Version   string
}

// ValidatedRecord is implemented by host values that carry their own
// structural-dump capability (the Go analogue of a Pydantic model's
// model_dump). DumpJSON requests alias-preserving, JSON-mode output.
type ValidatedRecord interface {
	DumpJSON(byAlias, jsonMode bool) (map[string]any, error)
}

// AliasOnlyRecord is the fallback interface for a ValidatedRecord-like type
// that predates the two-argument DumpJSON form, mirroring the Python
// bridge's TypeError fallback on older Pydantic versions.
type AliasOnlyRecord interface {
	DumpAliased() (map[string]any, error)
}
