package agent

// State flows through the three pipeline stages of one prediction. It is
// constructed per invocation and never shared or retained.
type State struct {
	UserID               string
	Emotions             map[string]float64
	PreviousInteractions []map[string]interface{}
	SessionContext       map[string]interface{}

	// EmotionsDefaulted records that the caller supplied no distribution and
	// Emotions was filled with the neutral placeholder for prompting only.
	EmotionsDefaulted bool

	RecommendedCategories []string
	Reasoning             string
	ConfidenceScore       float64
}

// Result is the public contract of Predict.
type Result struct {
	UserID                string   `json:"user_id"`
	RecommendedCategories []string `json:"recommended_categories"`
	Reasoning             string   `json:"reasoning"`
	ConfidenceScore       float64  `json:"confidence_score"`
}

// ProductCategories is the fixed candidate catalog embedded in every prompt.
// In a full deployment these would come from the product database.
var ProductCategories = []string{
	"Electronics", "Clothing", "Home & Kitchen", "Beauty & Personal Care",
	"Sports & Outdoors", "Books", "Toys & Games", "Health & Wellness",
	"Jewelry", "Handmade", "Automotive", "Pet Supplies", "Food & Grocery",
}

// Deterministic fallbacks used whenever the reasoning backend cannot be used.
var fallbackCategories = []string{"Electronics", "Clothing", "Home & Kitchen"}

const (
	fallbackReasoningParse = "Default recommendations based on general popularity."
	fallbackReasoningError = "Default recommendations due to processing error."
	defaultConfidence      = 0.5
)
