package ir

// Version constants for the data model and the engine.
const (
	// IRVersion is the data model schema version.
	IRVersion = "1"

	// EngineVersion is the tgis engine version.
	EngineVersion = "0.1.0"
)
