package importer

// Pack is the intermediate format produced by all Source implementations.
// Its YAML tags match the phrase-pack file schema exactly:
//
//	categories:
//	  Phrase:
//	    - GO FOR IT
//	    - BREAK A LEG
//	  Place:
//	    - NEW YORK CITY
type Pack struct {
	Categories map[string][]string `yaml:"categories"`
}

// Source loads a phrase pack from a format-specific file and produces a
// validated Pack ready to be inserted into a store.
//
// Precondition: path must name a readable file in the expected format.
// Postcondition: returns a Pack with at least one category and every phrase
// playable, or a non-nil error.
type Source interface {
	Load(path string) (*Pack, error)
}
