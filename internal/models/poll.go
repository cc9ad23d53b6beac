package models

// Poll is the admin-authored question and option list for one door.
type Poll struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// VoteRecord tracks tallies and which user picked which option. A userId
// appears at most once in Voters: the first vote is binding.
type VoteRecord struct {
	Tally  map[string]int    `json:"tally"`
	Voters map[string]string `json:"voters"`
}

// NewVoteRecord returns a zeroed record covering the poll's options.
func NewVoteRecord(options []string) VoteRecord {
	record := VoteRecord{
		Tally:  make(map[string]int, len(options)),
		Voters: make(map[string]string),
	}
	for _, option := range options {
		record.Tally[option] = 0
	}
	return record
}

// HasOption reports whether the option is one of the poll's declared options.
func (p Poll) HasOption(option string) bool {
	for _, o := range p.Options {
		if o == option {
			return true
		}
	}
	return false
}
