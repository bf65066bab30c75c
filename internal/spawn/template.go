package spawn

// Template describes one enemy kind the arena can spawn.
type Template struct {
	Kind   string
	Health float64
	Damage float64
	Speed  float64 // units per second
	Armor  float64
	Shield float64
}

// DefaultTemplates is the built-in enemy roster.
var DefaultTemplates = []Template{
	{Kind: "whelp", Health: 60, Damage: 8, Speed: 120},
	{Kind: "golem", Health: 300, Damage: 25, Speed: 40, Armor: 45},
	{Kind: "wisp", Health: 40, Damage: 15, Speed: 180, Shield: 20},
	{Kind: "wraith", Health: 120, Damage: 40, Speed: 90, Armor: 10, Shield: 30},
	{Kind: "drake", Health: 200, Damage: 60, Speed: 70, Armor: 25},
}
