// Package constants defines shared constant values used throughout terminate.
// Centralizing these magic strings keeps the CLI, config defaults, and log
// output consistent.
package constants

// Argument keys recognized on the command line. Keys are matched
// case-insensitively as KEY=value tokens.
const (
	ArgTarget   = "target"
	ArgTTL      = "ttl"
	ArgContract = "contract"
	ArgLog      = "log"
)

// Argument values with special meaning.
const (
	// TargetUnset is the sentinel target name used when no TARGET token is given.
	TargetUnset = "NA"

	// ExeSuffix is appended to process names that lack it before comparison.
	ExeSuffix = ".exe"

	// ContractKill selects the kill disposition.
	ContractKill = "KILL"

	// ContractTag selects the tag disposition.
	ContractTag = "TAG"

	// LogDebug raises diagnostics verbosity when passed as LOG=DEBUG.
	LogDebug = "DEBUG"
)

// Reporter defaults for the LANDesk inventory agent.
const (
	// ReporterRegistryKey is the HKLM subkey holding the agent install path.
	ReporterRegistryKey = `SOFTWARE\LANDesk\ManagementSuite\WinClient`

	// ReporterRegistryValue is the value name under ReporterRegistryKey.
	ReporterRegistryValue = "Path"

	// ReporterExecutable is the inventory scanner invoked to send custom data.
	ReporterExecutable = "miniscan.exe"

	// FieldProcessName is the custom data path for the tagged process name.
	FieldProcessName = "Custom Data - Support - ProcessName"

	// FieldProcessAge is the custom data path for the tagged process age.
	FieldProcessAge = "Custom Data - Support - ProcessAgeMinutes"
)

// File names written under the log directory.
const (
	// FileDiagLog is the diagnostics log.
	FileDiagLog = "terminate.log"

	// FileEventLog is the disposition event log read by `terminate history`.
	FileEventLog = "terminate-events.log"

	// FileRunLock is the flock target that serializes scheduled runs.
	FileRunLock = "terminate.lock"

	// FileRunOwner records which process holds the run lock.
	FileRunOwner = "terminate.owner"
)

// Environment variables.
const (
	EnvConfig   = "TERMINATE_CONFIG"
	EnvLogDir   = "TERMINATE_LOG_DIR"
	EnvLogLevel = "TERMINATE_LOG_LEVEL"
)

// Windows process IDs with fixed captions.
const (
	PIDSystemIdle = 0
	PIDSystem     = 4

	PathSystemIdle = "System Idle Process"
	PathSystem     = "System"
)
