package model

// StrategyID is the dense index of a strategy in the engine registry.
type StrategyID int
