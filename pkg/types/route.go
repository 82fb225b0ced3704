package types

import "fmt"

// RoutingStrategy is the policy used to pick a server among a tool's candidates.
type RoutingStrategy string

const (
	StrategyRoundRobin  RoutingStrategy = "round_robin"
	StrategyRandom      RoutingStrategy = "random"
	StrategyLeastLoaded RoutingStrategy = "least_loaded"
)

// RouteRequest asks the directory which server should handle a request for a tool.
type RouteRequest struct {
	Tool     string `json:"tool"`
	Strategy string `json:"strategy,omitempty"`
}

// RouteResult is the routing decision handed to the caller that performs the actual call.
type RouteResult struct {
	ServerID string `json:"server_id"`
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Address  string `json:"address"`
	Strategy string `json:"strategy"`
}

// CompleteRequest reports that a request routed to a server has finished.
type CompleteRequest struct {
	ServerID string `json:"server_id"`
}

// ValidateStrategy validates the input string and returns the corresponding RoutingStrategy.
// If the input is empty, it returns the default StrategyRoundRobin.
func ValidateStrategy(input string) (RoutingStrategy, error) {
	switch input {
	case string(StrategyRoundRobin), "":
		return StrategyRoundRobin, nil
	case string(StrategyRandom):
		return StrategyRandom, nil
	case string(StrategyLeastLoaded):
		return StrategyLeastLoaded, nil
	default:
		return "", fmt.Errorf(
			"unsupported routing strategy: %s (acceptable values: '%s', '%s', '%s')",
			input, StrategyRoundRobin, StrategyRandom, StrategyLeastLoaded,
		)
	}
}
