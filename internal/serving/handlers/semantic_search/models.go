package semantic_search

import "encoding/json"

type Request struct {
	Keyword    string      `json:"keyword"`
	ProductIds []ProductId `json:"productIds"`
	Limit      int         `json:"limit"`
}

// ProductId accepts both numeric and string JSON ids, since catalog ids are
// posted as plain numbers.
type ProductId string

func (p *ProductId) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = ProductId(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = ProductId(n.String())
	return nil
}

// candidateIds flattens the request ids for the vector store lookups.
func (r *Request) candidateIds() []string {
	ids := make([]string, 0, len(r.ProductIds))
	for _, id := range r.ProductIds {
		ids = append(ids, string(id))
	}
	return ids
}

type Response struct {
	Keyword  string       `json:"keyword"`
	Products []RankedItem `json:"products"`
}

type RankedItem struct {
	Id    string  `json:"id"`
	Score float32 `json:"score"`
}
