package crawler

// PageInfo summarizes the page being filled
type PageInfo struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Forms  int    `json:"forms"`
	Inputs int    `json:"inputs"` // input, textarea and select elements, fillable or not
	IsSPA  bool   `json:"isSPA"`
}
