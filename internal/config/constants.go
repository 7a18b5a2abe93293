package config

// ManifestFileExt is the extension of declaration manifests read by the CLI.
const ManifestFileExt = ".yaml"

// ManifestFileExtensions are all recognized manifest extensions
var ManifestFileExtensions = []string{".yaml", ".yml"}

// Built-in trait names
const (
	DifferentiableTraitName     = "Differentiable"
	AdditiveArithmeticTraitName = "AdditiveArithmetic"
)

// Associated type names
const (
	TangentVectorName = "TangentVector"
)

// Reserved identifiers
const (
	SelfParamName = "self"
	SelfTypeName  = "Self"
	WildcardLabel = "_"
)

// Result tuple labels used by the differentiating attribute family.
const (
	ValueLabel        = "value"
	PullbackLabel     = "pullback"
	DifferentialLabel = "differential"
)

// Attribute families that produce registration requests.
const (
	DifferentiatingAttr = "differentiating"
	TransposingAttr     = "transposing"
)

// OriginalVarPrefix marks generic parameters of an original declaration once
// they are renamed apart from the candidate's own parameters.
const OriginalVarPrefix = "$orig_"
