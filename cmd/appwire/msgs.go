package appwire

// User-facing messages, collected here so commands stay readable.
const (
	MsgRootShort = "Inspect and validate appwire definition files"
	MsgRootLong = `appwire wires declarative applications together: actions, stores, and
widgets declared in definition files (JSON, YAML, TOML) or markup are
registered into one identity space and constructed lazily on first use.

This tool loads definition files without constructing anything, so a
definition can be checked and inspected before an application ships it.`

	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"

	MsgValidateShort = "Check definition files for structural problems"
	MsgValidateLong = `Validate parses each file and loads it into a scratch application,
reporting duplicate identifiers, cross-kind collisions, malformed
entries, and invalid custom element names. Files ending in .html or
.xml are scanned as markup; everything else is parsed by extension.`

	MsgListShort = "List the entries declared in a definition file"

	MsgVersionShort = "Print version information"
)
