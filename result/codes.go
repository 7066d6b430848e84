package result

// Stable diagnostic codes. Entries starting with 'E' are hard errors;
// entries starting with 'W' are warnings. The numbers below are otherwise
// arbitrary but stable identifiers, matching the taxonomy chigraph's
// original implementation shipped (preserved so tooling built against this
// repo can match on code, not message text).
const (
	// CodeOutputSlotRange is returned when a data or exec output index is
	// out of range for the node's declared arity.
	CodeOutputSlotRange = "E22"
	// CodeInputSlotRange is returned when a data or exec input index is out
	// of range for the node's declared arity.
	CodeInputSlotRange = "E23"
	// CodeTypeMismatch is returned when a data edge connects slots whose
	// declared types disagree.
	CodeTypeMismatch = "E24"

	// CodeParseError and CodeIOError cover module-loading failures.
	CodeParseError = "E37"
	CodeIOError    = "E38"

	// CodeNoWorkspace is returned when a module load is attempted outside
	// any workspace (no .chigraphworkspace marker found in any ancestor).
	CodeNoWorkspace = "E52"

	// Validation codes (section 4.2).
	CodeMissingEntry     = "E45"
	CodeMultipleEntries  = "E45"
	CodeExitMismatch     = "E45"
	CodeDanglingInput    = "E45"
	CodeDanglingOutput   = "E45"
	CodeUnresolvedLocal  = "E45"
	CodePureExecCycle    = "E45"
	CodePureHasExecSlots = "E45"

	// Lowering codes (section 4.3 node-type callback failures).
	CodeLoweringFailed = "E46"

	// CodeExternalToolFailed covers subprocess collaborators (the C compiler
	// shim, the interpreter) failing or producing unparseable output.
	CodeExternalToolFailed = "E60"

	// CodeUnclassified covers logical errors with no more specific code:
	// connection asymmetry, a duplicate or unknown module, node or type, a
	// missing connection to disconnect, and compiler calls made out of
	// order.
	CodeUnclassified = "EUKN"
)
