package domain

// SearchCategory is an advisory label used to diversify extractor input.
type SearchCategory string

const (
	SearchCategoryNews       SearchCategory = "news"
	SearchCategoryGovernment SearchCategory = "government"
	SearchCategoryAcademic   SearchCategory = "academic"
	SearchCategoryBusiness   SearchCategory = "business"
	SearchCategoryCriticism  SearchCategory = "criticism"
	SearchCategorySupport    SearchCategory = "support"
	SearchCategoryExpert     SearchCategory = "expert"
	SearchCategoryOther      SearchCategory = "other"
)

// SearchResult is a candidate page returned by a search provider.
type SearchResult struct {
	URL           string         `json:"url"`
	Title         string         `json:"title"`
	Content       string         `json:"content"`
	PublishedDate string         `json:"publishedDate,omitempty"`
	Category      SearchCategory `json:"category,omitempty"`
}

// ScrapedContent is the best-effort extraction of a single web page.
type ScrapedContent struct {
	URL           string   `json:"url"`
	Source        string   `json:"source"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Quotes        []string `json:"quotes"`
	Author        string   `json:"author,omitempty"`
	PublishedDate string   `json:"publishedDate,omitempty"`
}
