package domain

// MemoryPoint is one weighted fact the bot remembers about a person.
type MemoryPoint struct {
	Content string  `json:"content"`
	Weight  float64 `json:"weight"`
}

// Person is the bot's persistent impression of one user on one platform.
// The chatroom feature creates synthetic persons on the "webui" platform to
// test the bot's replies against controlled personas.
type Person struct {
	PersonID        string        `json:"person_id"`
	Platform        string        `json:"platform"`
	UserID          string        `json:"user_id"`
	Nickname        string        `json:"nickname"`
	Avatar          string        `json:"avatar"`
	Impression      string        `json:"impression"`
	ShortImpression string        `json:"short_impression"`
	Attitude        int           `json:"attitude"`
	MemoryPoints    []MemoryPoint `json:"memory_points"`
	CreatedAt       float64       `json:"created_at"`
	UpdatedAt       float64       `json:"updated_at"`
}
