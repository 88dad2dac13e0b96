package dto

// PreferenceRequest is the body of predict-preferences and
// streaming-recommendations.
type PreferenceRequest struct {
	UserID               string                   `json:"user_id" validate:"required"`
	CurrentEmotion       map[string]float64       `json:"current_emotion,omitempty"`
	PreviousInteractions []map[string]interface{} `json:"previous_interactions,omitempty"`
	SessionContext       map[string]interface{}   `json:"session_context,omitempty"`
}

type PreferenceResponse struct {
	UserID                string   `json:"user_id"`
	RecommendedCategories []string `json:"recommended_categories"`
	Reasoning             string   `json:"reasoning"`
	ConfidenceScore       float64  `json:"confidence_score"`
}

// DetectionResult is the REST/WS payload for one detector pass.
type DetectionResult struct {
	Emotion          string             `json:"emotion"`
	Confidence       float64            `json:"confidence"`
	AllEmotions      map[string]float64 `json:"allEmotions"`
	NumFaces         int                `json:"num_faces"`
	FaceBox          map[string]int     `json:"face_box,omitempty"`
	ProcessingTimeMs int                `json:"processing_time_ms"`
	Timestamp        string             `json:"timestamp"`
	Source           string             `json:"source"`
	UserID           string             `json:"user_id,omitempty"`
	SessionID        string             `json:"session_id,omitempty"`
	DetectionMethod  string             `json:"detection_method,omitempty"`
	Filename         string             `json:"filename,omitempty"`
	SavedToDatabase  bool               `json:"saved_to_database"`
}

type EmotionHistoryItem struct {
	ID          string             `json:"id"`
	Emotion     string             `json:"emotion"`
	Confidence  float64            `json:"confidence"`
	AllEmotions map[string]float64 `json:"allEmotions,omitempty"`
	NumFaces    int                `json:"num_faces,omitempty"`
	Source      string             `json:"source"`
	Timestamp   string             `json:"timestamp"`
}

type EmotionDistributionEntry struct {
	Emotion       string  `json:"emotion"`
	Count         int64   `json:"count"`
	AvgConfidence float64 `json:"avg_confidence"`
}

type DailyTrendEntry struct {
	Date    string `json:"date"`
	Emotion string `json:"emotion"`
	Count   int64  `json:"count"`
}

type EmotionAnalytics struct {
	PeriodDays          int                        `json:"period_days"`
	TotalDetections     int64                      `json:"total_detections"`
	UniqueUsers         int64                      `json:"unique_users"`
	AvgConfidence       float64                    `json:"avg_confidence"`
	EmotionDistribution []EmotionDistributionEntry `json:"emotion_distribution"`
	DailyTrends         []DailyTrendEntry          `json:"daily_trends"`
	Source              string                     `json:"source"`
}

type ProductRecommendation struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Price        float64 `json:"price"`
	EmotionScore float64 `json:"emotion_score"`
	Reason       string  `json:"reason"`
}

type EmotionStats struct {
	UserID              string                   `json:"user_id"`
	Timeframe           string                   `json:"timeframe"`
	PeriodStart         string                   `json:"period_start"`
	PeriodEnd           string                   `json:"period_end"`
	EmotionDistribution map[string]float64       `json:"emotion_distribution"`
	ProductInteractions []ProductInteractionStat `json:"product_interactions"`
}

type ProductInteractionStat struct {
	Category               string `json:"category"`
	InteractionCount       int    `json:"interaction_count"`
	CorrelationWithEmotion string `json:"correlation_with_emotion"`
}
