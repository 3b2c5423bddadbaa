package logger

import "strings"

// Category tags for filtering log output across the engine's subsystems.
const (
	TagRevision = "REVISION"
	TagMemo     = "MEMO"
	TagActive   = "ACTIVE"
	TagCycle    = "CYCLE"
	TagEvict    = "EVICT"
	TagStorage  = "STORAGE"
	TagEvent    = "EVENT"
	TagDatabase = "DATABASE"
)

var (
	// EngineGroup is every category emitted by the validation/execution
	// driver and its direct collaborators.
	EngineGroup = []string{TagRevision, TagMemo, TagActive, TagCycle, TagEvict}

	// MinimalGroup is just database-lifecycle logging.
	MinimalGroup = []string{TagDatabase}
)

// EnableGroup enables all tags in a group.
func EnableGroup(group []string) {
	for _, tag := range group {
		EnableCategory(tag)
	}
}

// DisableGroup disables all tags in a group.
func DisableGroup(group []string) {
	for _, tag := range group {
		DisableCategory(tag)
	}
}

// ParseDebugTags parses debug tags from a string like "memo,cycle".
func ParseDebugTags(tags string) []string {
	if tags == "" {
		return nil
	}

	switch tags {
	case "engine":
		return EngineGroup
	case "minimal":
		return MinimalGroup
	case "all":
		return append(append([]string{}, EngineGroup...), TagStorage, TagEvent, TagDatabase)
	}

	result := []string{}
	for _, tag := range strings.Split(strings.ToUpper(tags), ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			result = append(result, tag)
		}
	}
	return result
}
