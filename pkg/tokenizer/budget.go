package tokenizer

// Budget is the token window shared by a prompt and the completions it
// reserves room for.
type Budget struct {
	Total      int
	Completion int
	Selection  int
}

// Fits reports whether admitting size more tokens on top of used still leaves
// reserve tokens inside the window.
func (b Budget) Fits(used, size, reserve int) bool {
	return used+size+reserve <= b.Total
}

