package model

// Template is a catalog entry. It has no identity beyond its field values.
type Template struct {
	Category string `json:"category" yaml:"category"`
	Title    string `json:"title" yaml:"title"`
	Menu     string `json:"menu" yaml:"menu"`
	Comment  string `json:"comment" yaml:"comment"`
	Hashtag  string `json:"hashtag" yaml:"hashtag"`
}

// IsZero reports whether every field is empty.
func (t Template) IsZero() bool {
	return t == Template{}
}

// Equal compares templates by value.
func (t Template) Equal(other Template) bool {
	return t == other
}
