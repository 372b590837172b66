package stats

import (
	"hash/fnv"
	"time"
)

// Quote is the dashboard's daily motto.
type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

var quotes = []Quote{
	{Text: "Talk is cheap. Show me the code.", Author: "Linus Torvalds"},
	{Text: "Simplicity is the ultimate sophistication.", Author: "Leonardo da Vinci"},
	{Text: "Programs must be written for people to read.", Author: "Harold Abelson"},
	{Text: "Premature optimization is the root of all evil.", Author: "Donald Knuth"},
	{Text: "The best way to predict the future is to invent it.", Author: "Alan Kay"},
	{Text: "First, solve the problem. Then, write the code.", Author: "John Johnson"},
	{Text: "Make it work, make it right, make it fast.", Author: "Kent Beck"},
	{Text: "Deleted code is debugged code.", Author: "Jeff Sickel"},
	{Text: "A language that doesn't affect the way you think about programming is not worth knowing.", Author: "Alan Perlis"},
	{Text: "The most disastrous thing that you can ever learn is your first programming language.", Author: "Alan Kay"},
	{Text: "Errors are values.", Author: "Rob Pike"},
	{Text: "Don't communicate by sharing memory, share memory by communicating.", Author: "Rob Pike"},
}

// DailyQuote picks the same quote for everyone on a given day.
func DailyQuote(day time.Time) Quote {
	h := fnv.New32a()
	h.Write([]byte(day.Format("2006-01-02")))
	return quotes[h.Sum32()%uint32(len(quotes))]
}
