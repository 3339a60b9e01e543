package models

// WineType is the category of a wine as reported by the vision model or
// supplied by the client. Values outside the known set are kept as free text.
type WineType string

const (
	WineTypeRed       WineType = "red"
	WineTypeWhite     WineType = "white"
	WineTypeRose      WineType = "rosé"
	WineTypeSparkling WineType = "sparkling"
	WineTypeDessert   WineType = "dessert"
)

// Characteristics holds the 1-5 tasting scales extracted from a label
type Characteristics struct {
	Boldness int `json:"boldness"`
	Tannins  int `json:"tannins"`
	Acidity  int `json:"acidity"`
}

// WineRecord is the shape the label prompt asks the model for. Replies are
// returned to clients verbatim; this type only serves lenient reads for logging.
type WineRecord struct {
	Name            *string         `json:"name"`
	Producer        *string         `json:"producer"`
	Year            *int            `json:"year"`
	Region          string          `json:"region"`
	Grape           string          `json:"grape"`
	Type            WineType        `json:"type"`
	Characteristics Characteristics `json:"characteristics"`
	Notes           string          `json:"notes"`
	EstimatedPrice  string          `json:"estimatedPrice"`
}

// DisplayName returns the wine name or a placeholder for logging
func (w *WineRecord) DisplayName() string {
	if w == nil || w.Name == nil || *w.Name == "" {
		return "unknown"
	}
	return *w.Name
}
