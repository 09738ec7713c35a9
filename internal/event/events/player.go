package events

// GoldChanged is published when the player's gold balance changes.
type GoldChanged struct {
	Current int
	Delta   int
}

// DiamondChanged is published when the player's diamond balance changes.
type DiamondChanged struct {
	Current int
	Delta   int
}

// HealthChanged is published when the player's health changes.
type HealthChanged struct {
	Current int
	Delta   int
}

// EnergyChanged is published when the player's energy changes.
type EnergyChanged struct {
	Current int
	Delta   int
}

// StaminaChanged is published when the player's stamina changes.
type StaminaChanged struct {
	Current int
	Delta   int
}

// LevelChanged is published when the player levels up.
type LevelChanged struct {
	Current int
	Delta   int
}

// ExpChanged is published when experience is gained.
// Max is the experience required for the next level.
type ExpChanged struct {
	Current int
	Max     int
	Delta   int
}
