package receipt

type Receipt struct {
	Name           string          `json:"name"`
	ReceiptVersion int             `json:"receiptVersion"`
	Session        string          `json:"session"`
	Feeds          map[string]Feed `json:"feeds"`
}

type Feed struct {
	Type             string             `json:"type"`
	Location         string             `json:"location"`
	Skipped          bool               `json:"skipped,omitempty"`
	AlreadyPublished int                `json:"alreadyPublished"`
	Packages         map[string]Package `json:"packages"`
}

type Package struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Views     []string `json:"views,omitempty"`
	Integrity string   `json:"integrity"`
}
