package edge

// ItemList is the envelope of the inbound *ItemList.json product file.
type ItemList struct {
	Items []Item `json:"Items"`
}

type Item struct {
	Key       string     `json:"Key"`
	PairValue ItemDetail `json:"PairValue"`
}

type ItemDetail struct {
	ItemDesc        string  `json:"ItemDesc"`
	ItemRetailPrice float64 `json:"ItemRetailPrice"`
	ItemImage       string  `json:"ItemImage"`
}
