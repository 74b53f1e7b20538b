package domain

// FastaEntry is one sequence record of an input file
type FastaEntry struct {
	Description string `json:"description"`
	Sequence    string `json:"sequence"`
}
