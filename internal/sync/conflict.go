package sync

import "fmt"

// Strategy selects how conflicting paths are resolved.
type Strategy string

const (
	// StrategyBoth keeps both versions: the drive version under the original
	// name, the local version under a conflict-suffixed sibling, mirrored to
	// both sides.
	StrategyBoth      Strategy = "both"
	StrategyLocalWins Strategy = "local-wins"
	StrategyDriveWins Strategy = "drive-wins"
	StrategyNewerWins Strategy = "newer-wins"
	// StrategyAsk degrades to StrategyBoth; the CLI is non-interactive.
	StrategyAsk Strategy = "ask"
)

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyBoth, StrategyLocalWins, StrategyDriveWins, StrategyNewerWins, StrategyAsk:
		return Strategy(s), nil
	case "":
		return StrategyBoth, nil
	default:
		return "", fmt.Errorf("unknown conflict strategy %q", s)
	}
}
